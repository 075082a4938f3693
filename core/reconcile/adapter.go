package reconcile

// Adapter defines the model-specific part of a reconciliation.
// Each adapter knows how to name and compare the items of one model
// (e.g., basket lines).
type Adapter[T any] interface {
	// Name returns the unique name of this adapter (e.g., "basket").
	Name() string

	// ResolveName returns the display name for an entity given the available items.
	// Either item may be absent, which is reported by the matching flag.
	ResolveName(before T, hasBefore bool, after T, hasAfter bool) string

	// CompareFields compares mapped fields of the two items and returns
	// a list of change descriptions. Each string should include the field label and
	// both values (e.g., "quantity: before=1 after=3").
	// Both items are guaranteed to be present when this is called.
	CompareFields(before, after T) []string
}
