package session

import "fmt"

// ColumnKind discriminates the storage type of a table column.
type ColumnKind int

const (
	// Float columns hold float64 samples and may contain NaN.
	Float ColumnKind = iota
	// Bool columns hold digital on/off channels.
	Bool
	// Int columns hold small integer state codes.
	Int
)

// String returns the column kind name used in error messages.
func (k ColumnKind) String() string {
	switch k {
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Int:
		return "int"
	default:
		return fmt.Sprintf("ColumnKind(%d)", int(k))
	}
}

// Column is a single named data column. Exactly one of the value slices is
// populated, selected by Kind.
type Column struct {
	Name   string
	Kind   ColumnKind
	floats []float64
	bools  []bool
	ints   []int16
}

// Len returns the number of samples in the column.
func (c Column) Len() int {
	switch c.Kind {
	case Bool:
		return len(c.bools)
	case Int:
		return len(c.ints)
	default:
		return len(c.floats)
	}
}

// Floats returns a numeric view of the column for statistics. Bool samples
// map to 0/1 and ints are widened; both allocate. Float columns return the
// backing slice, which callers must not modify.
func (c Column) Floats() []float64 {
	switch c.Kind {
	case Bool:
		vals := make([]float64, len(c.bools))
		for i, b := range c.bools {
			if b {
				vals[i] = 1
			}
		}
		return vals
	case Int:
		vals := make([]float64, len(c.ints))
		for i, v := range c.ints {
			vals[i] = float64(v)
		}
		return vals
	default:
		return c.floats
	}
}

// Bools returns the raw bool samples, or nil for non-bool columns.
func (c Column) Bools() []bool {
	return c.bools
}

// Ints returns the raw integer samples, or nil for non-int columns.
func (c Column) Ints() []int16 {
	return c.ints
}

// Table is an ordered collection of named columns sharing one sample count.
// Column order is the order columns were added, which extraction keeps equal
// to the product order inside the bundle.
type Table struct {
	columns []Column
	index   map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// AddFloat appends a float64 column.
func (t *Table) AddFloat(name string, values []float64) error {
	return t.add(Column{Name: name, Kind: Float, floats: values})
}

// AddBool appends a bool column.
func (t *Table) AddBool(name string, values []bool) error {
	return t.add(Column{Name: name, Kind: Bool, bools: values})
}

// AddInt appends an int16 column.
func (t *Table) AddInt(name string, values []int16) error {
	return t.add(Column{Name: name, Kind: Int, ints: values})
}

// add validates length and name uniqueness before appending the column.
func (t *Table) add(col Column) error {
	if _, exists := t.index[col.Name]; exists {
		return fmt.Errorf("duplicate column %q", col.Name)
	}
	if len(t.columns) > 0 && col.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d samples, table has %d rows", col.Name, col.Len(), t.NumRows())
	}
	t.index[col.Name] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// NumRows returns the shared sample count, 0 for an empty table.
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.columns)
}

// Columns returns the columns in order. The slice is shared; callers must
// not modify it.
func (t *Table) Columns() []Column {
	return t.columns
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column and whether it exists.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}
