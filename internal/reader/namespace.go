package reader

import (
	"strings"

	"github.com/oxhq/phpls/internal/symbol"
)

// parseUseStatement parses one `use ...;` statement's text into its import
// rules. A use group with prefix P and inner list [a\b as A, c] yields
// rules {A → P\a\b, c → P\c}. Kind comes from the statement flag
// (class/function/constant) or an element flag within a mixed group.
//
// This works directly off the statement's source text rather than walking
// individual grammar fields: the shapes involved (bare imports, aliasing,
// grouped imports, per-element kind overrides) are simple enough to parse
// textually and doing so keeps the reader resilient to minor grammar
// differences in how a given tree-sitter-php version breaks the statement
// into fields.
func parseUseStatement(text string) []symbol.ImportRule {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ";")
	text = strings.TrimPrefix(text, "use")
	text = strings.TrimSpace(text)

	stmtKind := symbol.ImportClass
	switch {
	case hasKeywordPrefix(text, "function"):
		stmtKind = symbol.ImportFunction
		text = strings.TrimSpace(text[len("function"):])
	case hasKeywordPrefix(text, "const"):
		stmtKind = symbol.ImportConstant
		text = strings.TrimSpace(text[len("const"):])
	}

	if prefix, inner, ok := splitGroup(text); ok {
		var rules []symbol.ImportRule
		for _, item := range splitTopLevel(inner, ',') {
			if rule, ok := parseUseItem(item, stmtKind); ok {
				rule.Target = joinPrefixed(prefix, rule.Target)
				rules = append(rules, rule)
			}
		}
		return rules
	}

	var rules []symbol.ImportRule
	for _, item := range splitTopLevel(text, ',') {
		if rule, ok := parseUseItem(item, stmtKind); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

func hasKeywordPrefix(text, kw string) bool {
	if !strings.HasPrefix(text, kw) {
		return false
	}
	rest := text[len(kw):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// splitGroup recognizes `Prefix\{inner}` (PHP 7.0+ group use) and returns
// the prefix (without trailing separator) and inner list text.
func splitGroup(text string) (prefix, inner string, ok bool) {
	open := strings.Index(text, "{")
	if open < 0 || !strings.HasSuffix(strings.TrimSpace(text), "}") {
		return "", "", false
	}
	prefix = strings.TrimSuffix(strings.TrimSpace(text[:open]), "\\")
	close := strings.LastIndex(text, "}")
	inner = text[open+1 : close]
	return prefix, inner, true
}

func joinPrefixed(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "\\" + name
}

// parseUseItem parses one comma-separated element of a use statement,
// e.g. "Foo\Bar as Baz" or "function baz".
func parseUseItem(item string, kind symbol.ImportKind) (symbol.ImportRule, bool) {
	item = strings.TrimSpace(item)
	if item == "" {
		return symbol.ImportRule{}, false
	}

	switch {
	case hasKeywordPrefix(item, "function"):
		kind = symbol.ImportFunction
		item = strings.TrimSpace(item[len("function"):])
	case hasKeywordPrefix(item, "const"):
		kind = symbol.ImportConstant
		item = strings.TrimSpace(item[len("const"):])
	}

	var target, alias string
	if idx := strings.Index(strings.ToLower(item), " as "); idx >= 0 {
		target = strings.TrimSpace(item[:idx])
		alias = strings.TrimSpace(item[idx+len(" as "):])
	} else {
		target = item
		segs := strings.Split(target, "\\")
		alias = segs[len(segs)-1]
	}

	target = strings.TrimPrefix(target, "\\")
	if target == "" {
		return symbol.ImportRule{}, false
	}
	return symbol.ImportRule{Alias: alias, Target: target, Kind: kind}, true
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside { }
// (group-use elements never nest braces themselves, but this keeps the
// splitter correct if a future grammar version surprises us).
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
