package reader

import (
	"strings"

	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/symbol"
)

// modifierTokens maps a modifier keyword's exact source text to the bit it
// sets. Tokens not found here (e.g. "class", "function") are ignored by
// decodeModifiers.
var modifierTokens = map[string]symbol.Modifiers{
	"public":    symbol.ModPublic,
	"protected": symbol.ModProtected,
	"private":   symbol.ModPrivate,
	"static":    symbol.ModStatic,
	"abstract":  symbol.ModAbstract,
	"final":     symbol.ModFinal,
	"readonly":  symbol.ModReadOnly,
}

// decodeModifiers scans decl's direct children (and the single token
// wrapped by a bare modifier node, one level deep) for modifier keywords
// and returns the corresponding bitset. Only members carry access
// modifiers in practice; scanning a top-level function/class declaration
// simply finds no visibility tokens.
func decodeModifiers(decl *phptree.Node) symbol.Modifiers {
	var m symbol.Modifiers
	for _, c := range decl.Children() {
		applyModifierToken(c.Text(), &m)
		for _, gc := range c.Children() {
			applyModifierToken(gc.Text(), &m)
		}
	}
	return m
}

func applyModifierToken(text string, m *symbol.Modifiers) {
	if bit, ok := modifierTokens[strings.ToLower(strings.TrimSpace(text))]; ok {
		*m |= bit
	}
}
