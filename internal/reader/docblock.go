package reader

import (
	"regexp"
	"strings"

	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/symbol"
)

// TagKind discriminates docblock tag shapes as a sum type (a single
// struct with a discriminator field) rather than a parallel class
// hierarchy: a type-tag (@var, @return), a parameter tag (@param), a
// magic-member tag (@property, @property-read, @property-write), and a
// method tag (@method, which additionally carries a parameter list).
type TagKind string

const (
	TagParam         TagKind = "param"
	TagReturn        TagKind = "return"
	TagVar           TagKind = "var"
	TagProperty      TagKind = "property"
	TagPropertyRead  TagKind = "property-read"
	TagPropertyWrite TagKind = "property-write"
	TagMethod        TagKind = "method"
)

// MethodParam is one entry in an @method tag's parameter list.
type MethodParam struct {
	Type symbol.TypeString
	Name string
}

// Tag is one parsed docblock annotation.
type Tag struct {
	Kind        TagKind
	Type        symbol.TypeString
	Name        string // $var name for param/var/property*, bare name for method
	Params      []MethodParam
	Static      bool
	Description string
}

var (
	reParam    = regexp.MustCompile(`^@param\s+(\S+)(?:\s+(\$\w+))?(?:\s+(.*))?$`)
	reReturn   = regexp.MustCompile(`^@return\s+(\S+)(?:\s+(.*))?$`)
	reVar      = regexp.MustCompile(`^@var\s+(\S+)(?:\s+(\$\w+))?(?:\s+(.*))?$`)
	reProperty = regexp.MustCompile(`^@property(-read|-write)?\s+(\S+)\s+(\$\w+)(?:\s+(.*))?$`)
	reMethod   = regexp.MustCompile(`^@method\s+(?:(static)\s+)?(\S+)\s+(\w+)\s*\(([^)]*)\)(?:\s*(.*))?$`)
)

// ParseDocblock extracts the summary line and every recognized tag from a
// raw `/** ... */` comment's text. Unrecognized tags and malformed lines
// are silently skipped rather than surfaced as an error.
func ParseDocblock(raw string) (summary string, tags []Tag) {
	for _, line := range docblockLines(raw) {
		if !strings.HasPrefix(line, "@") {
			if summary == "" && line != "" {
				summary = line
			}
			continue
		}
		if tag, ok := parseTagLine(line); ok {
			tags = append(tags, tag)
		}
	}
	return summary, tags
}

// docblockLines strips the comment delimiters and leading "*" continuation
// markers, returning trimmed content lines.
func docblockLines(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimPrefix(raw, "/*")
	raw = strings.TrimSuffix(raw, "*/")

	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		out = append(out, line)
	}
	return out
}

func parseTagLine(line string) (Tag, bool) {
	switch {
	case strings.HasPrefix(line, "@param"):
		m := reParam.FindStringSubmatch(line)
		if m == nil {
			return Tag{}, false
		}
		return Tag{Kind: TagParam, Type: symbol.ParseTypeString(m[1]), Name: strings.TrimPrefix(m[2], "$"), Description: m[3]}, true

	case strings.HasPrefix(line, "@return"):
		m := reReturn.FindStringSubmatch(line)
		if m == nil {
			return Tag{}, false
		}
		return Tag{Kind: TagReturn, Type: symbol.ParseTypeString(m[1]), Description: m[2]}, true

	case strings.HasPrefix(line, "@var"):
		m := reVar.FindStringSubmatch(line)
		if m == nil {
			return Tag{}, false
		}
		return Tag{Kind: TagVar, Type: symbol.ParseTypeString(m[1]), Name: strings.TrimPrefix(m[2], "$"), Description: m[3]}, true

	case strings.HasPrefix(line, "@property"):
		m := reProperty.FindStringSubmatch(line)
		if m == nil {
			return Tag{}, false
		}
		kind := TagProperty
		switch m[1] {
		case "-read":
			kind = TagPropertyRead
		case "-write":
			kind = TagPropertyWrite
		}
		return Tag{Kind: kind, Type: symbol.ParseTypeString(m[2]), Name: strings.TrimPrefix(m[3], "$"), Description: m[4]}, true

	case strings.HasPrefix(line, "@method"):
		m := reMethod.FindStringSubmatch(line)
		if m == nil {
			return Tag{}, false
		}
		return Tag{
			Kind:        TagMethod,
			Static:      m[1] == "static",
			Type:        symbol.ParseTypeString(m[2]),
			Name:        m[3],
			Params:      parseMethodParams(m[4]),
			Description: m[5],
		}, true

	default:
		return Tag{}, false
	}
}

var reMethodParam = regexp.MustCompile(`^(\S+)?\s*(\$\w+)`)

func parseMethodParams(raw string) []MethodParam {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []MethodParam
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := reMethodParam.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		out = append(out, MethodParam{Type: symbol.ParseTypeString(m[1]), Name: strings.TrimPrefix(m[2], "$")})
	}
	return out
}

// precedingDocblock returns the text of the nearest preceding sibling
// comment node that looks like a PHPDoc block ("/**"), or "" if none
// immediately precedes n.
func precedingDocblock(n *phptree.Node) string {
	parent := n.Parent()
	if parent.IsNil() {
		return ""
	}
	siblings := parent.Children()
	target := n.Range()
	for i, s := range siblings {
		if s.Range() == target {
			if i == 0 {
				return ""
			}
			prev := siblings[i-1]
			if prev.Kind() == "comment" && strings.HasPrefix(strings.TrimSpace(prev.Text()), "/**") {
				return prev.Text()
			}
			return ""
		}
	}
	return ""
}
