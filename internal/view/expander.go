package view

// Expander tracks which result rows are expanded to their detail view.
// Each row toggles independently and toggling never touches the records
// themselves.
type Expander struct {
	open map[int]bool
}

// NewExpander returns an expander with every row collapsed.
func NewExpander() *Expander {
	return &Expander{open: make(map[int]bool)}
}

// Toggle flips one row and reports its new state.
func (e *Expander) Toggle(row int) bool {
	e.open[row] = !e.open[row]
	return e.open[row]
}

// Expanded reports whether a row is showing its detail view.
func (e *Expander) Expanded(row int) bool { return e.open[row] }

// Collapse closes every row, used when a fresh result set replaces the
// current one.
func (e *Expander) Collapse() {
	e.open = make(map[int]bool)
}
