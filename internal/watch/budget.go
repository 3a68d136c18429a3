package watch

// Budget caps how many linked-work checks one run may perform. It is owned by
// the collector for the run's duration and never shared across runs, so
// concurrent or repeated runs cannot interfere.
type Budget struct {
	max  int
	used int
}

// NewBudget creates a budget allowing at most max checks.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// TrySpend consumes one unit if any remains and reports whether it did.
func (b *Budget) TrySpend() bool {
	if b.used >= b.max {
		return false
	}
	b.used++
	return true
}

// Used returns how many units have been consumed.
func (b *Budget) Used() int {
	return b.used
}

// Remaining returns how many units are left.
func (b *Budget) Remaining() int {
	if b.used >= b.max {
		return 0
	}
	return b.max - b.used
}
