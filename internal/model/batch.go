package model

// Column is a named vector of values, one per row
type Column struct {
	Name   string
	Values []Value
}

// Batch is a columnar table of typed, nullable values.
// Every column holds exactly Len() values.
type Batch struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewBatch creates an empty batch with the given row count
func NewBatch(rows int) *Batch {
	return &Batch{
		index: make(map[string]int),
		rows:  rows,
	}
}

// Len returns the number of rows
func (b *Batch) Len() int {
	return b.rows
}

// Columns returns the column names in order
func (b *Batch) Columns() []string {
	names := make([]string, len(b.columns))
	for i, c := range b.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil if absent
func (b *Batch) Column(name string) *Column {
	if i, ok := b.index[name]; ok {
		return b.columns[i]
	}
	return nil
}

// Has reports whether the batch has a column with this name
func (b *Batch) Has(name string) bool {
	_, ok := b.index[name]
	return ok
}

// AddColumn appends a column. Values are padded with nulls or truncated to Len().
// An existing column with the same name is replaced in place.
func (b *Batch) AddColumn(name string, values []Value) *Column {
	vals := make([]Value, b.rows)
	copy(vals, values)
	col := &Column{Name: name, Values: vals}
	if i, ok := b.index[name]; ok {
		b.columns[i] = col
		return col
	}
	b.index[name] = len(b.columns)
	b.columns = append(b.columns, col)
	return col
}

// AddNullColumn appends an all-null column
func (b *Batch) AddNullColumn(name string) *Column {
	return b.AddColumn(name, nil)
}

// Value returns the cell at (row, column); missing columns read as null
func (b *Batch) Value(row int, name string) Value {
	col := b.Column(name)
	if col == nil || row < 0 || row >= b.rows {
		return Null
	}
	return col.Values[row]
}

// Filter returns a new batch holding only rows where keep is true
func (b *Batch) Filter(keep []bool) *Batch {
	n := 0
	for i := 0; i < b.rows && i < len(keep); i++ {
		if keep[i] {
			n++
		}
	}
	out := NewBatch(n)
	for _, c := range b.columns {
		vals := make([]Value, 0, n)
		for i, v := range c.Values {
			if i < len(keep) && keep[i] {
				vals = append(vals, v)
			}
		}
		out.AddColumn(c.Name, vals)
	}
	return out
}

// Project returns a new batch with exactly the named columns in the given order.
// Names absent from b become all-null columns.
func (b *Batch) Project(names []string) *Batch {
	out := NewBatch(b.rows)
	for _, name := range names {
		if c := b.Column(name); c != nil {
			out.AddColumn(name, c.Values)
		} else {
			out.AddNullColumn(name)
		}
	}
	return out
}
