package symbol

// Modifiers is a bitset of the flags a Symbol's declaration carries. Only a
// subset applies to any given Kind; internal/reader is responsible for not setting
// modifiers that don't make sense for the kind it's building (e.g. access
// modifiers never apply to a top-level Function).
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
	ModMagic
	ModReadOnly
	ModWriteOnly
	ModAnonymous
	ModUse
)

// Has reports whether all bits in other are set.
func (m Modifiers) Has(other Modifiers) bool {
	return m&other == other
}

// Any reports whether any bit in other is set.
func (m Modifiers) Any(other Modifiers) bool {
	return m&other != 0
}

// Visibility returns the effective access modifier, defaulting to Public
// when none of the three visibility bits is set (PHP's implicit default).
func (m Modifiers) Visibility() Modifiers {
	switch {
	case m.Has(ModPrivate):
		return ModPrivate
	case m.Has(ModProtected):
		return ModProtected
	default:
		return ModPublic
	}
}
