package domain

// RawRecord is an untyped row straight out of a legacy source: column or tag
// name to scalar. Shape and casing vary by source. Records are consumed
// immediately by the mapping package and never persisted; nothing outside
// that package should read the keys.
type RawRecord map[string]any
