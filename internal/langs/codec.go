package langs

// scalarCodec holds decode and encode expression templates for one scalar
// tag kind in one target language. Composite types (arrays, lists) are not
// in the tables; each generator handles them with a single recursive rule,
// so nesting depth never needs special-casing.
type scalarCodec struct {
	dec string
	enc string
}
