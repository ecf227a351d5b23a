// Package dataset provides the tabular container the preprocessing pipeline
// operates on: an ordered collection of named, null-aware columns of equal
// length, backed by Apache Arrow storage.
package dataset

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	jerrors "github.com/prepio/janitor/internal/errors"
	"github.com/prepio/janitor/internal/series"
)

// Dataset represents a table of data with typed, null-aware columns.
// Columns are immutable; every transformation swaps replacement columns in,
// so two invariants hold at every stage boundary: all columns share one
// length, and no column name appears twice.
type Dataset struct {
	columns map[string]*series.Series
	order   []string
}

// New creates a Dataset from columns, enforcing unique names and equal lengths.
func New(cols ...*series.Series) (*Dataset, error) {
	columns := make(map[string]*series.Series, len(cols))
	order := make([]string, 0, len(cols))

	length := -1
	for _, c := range cols {
		if _, exists := columns[c.Name()]; exists {
			return nil, &jerrors.PipelineError{Column: c.Name(), Message: "duplicate column name"}
		}
		if length >= 0 && c.Len() != length {
			return nil, jerrors.ErrMismatchedLength
		}
		length = c.Len()
		columns[c.Name()] = c
		order = append(order, c.Name())
	}

	return &Dataset{columns: columns, order: order}, nil
}

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.order...)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if len(d.order) == 0 {
		return 0
	}
	return d.columns[d.order[0]].Len()
}

// Width returns the number of columns.
func (d *Dataset) Width() int {
	return len(d.order)
}

// Column returns the column with the given name.
func (d *Dataset) Column(name string) (*series.Series, bool) {
	c, ok := d.columns[name]
	return c, ok
}

// HasColumn reports whether a column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// SetColumn returns a new Dataset with the column replaced in place (same
// position) when it already exists, or appended otherwise.
func (d *Dataset) SetColumn(c *series.Series) (*Dataset, error) {
	if d.Width() > 0 && c.Len() != d.Len() {
		return nil, jerrors.ErrMismatchedLength
	}
	columns := make(map[string]*series.Series, len(d.columns)+1)
	for name, col := range d.columns {
		columns[name] = col
	}
	order := append([]string(nil), d.order...)
	if _, exists := columns[c.Name()]; !exists {
		order = append(order, c.Name())
	}
	columns[c.Name()] = c
	return &Dataset{columns: columns, order: order}, nil
}

// Drop returns a new Dataset without the specified columns. Unknown names
// are ignored.
func (d *Dataset) Drop(names ...string) *Dataset {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}
	columns := make(map[string]*series.Series)
	order := make([]string, 0, len(d.order))
	for _, n := range d.order {
		if dropped[n] {
			continue
		}
		columns[n] = d.columns[n]
		order = append(order, n)
	}
	return &Dataset{columns: columns, order: order}
}

// Select returns a new Dataset with only the specified columns, in the
// requested order.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	columns := make(map[string]*series.Series, len(names))
	order := make([]string, 0, len(names))
	for _, n := range names {
		c, ok := d.columns[n]
		if !ok {
			return nil, &jerrors.PipelineError{Column: n, Message: "column does not exist"}
		}
		columns[n] = c
		order = append(order, n)
	}
	return &Dataset{columns: columns, order: order}, nil
}

// FilterRows returns a new Dataset keeping only rows where mask is true.
func (d *Dataset) FilterRows(mask []bool, mem memory.Allocator) (*Dataset, error) {
	if len(mask) != d.Len() {
		return nil, jerrors.ErrMismatchedLength
	}
	cols := make([]*series.Series, 0, len(d.order))
	for _, n := range d.order {
		cols = append(cols, d.columns[n].Filter(mask, mem))
	}
	return New(cols...)
}

// MissingCells returns the total count of null cells across all columns.
func (d *Dataset) MissingCells() int {
	total := 0
	for _, n := range d.order {
		total += d.columns[n].NullCount()
	}
	return total
}

// nullToken marks a null cell inside a row rendering so that a null never
// collides with an empty string.
const nullToken = "\x00"

// RowString renders row i as a single text tuple, the representation hashed
// for duplicate fingerprinting.
func (d *Dataset) RowString(i int) string {
	fields := make([]string, len(d.order))
	for j, n := range d.order {
		col := d.columns[n]
		if col.IsNull(i) {
			fields[j] = nullToken
			continue
		}
		fields[j] = col.ValueString(i)
	}
	return strings.Join(fields, "\x1f")
}

// DataTypes returns the dtype name of every column, keyed by column name.
func (d *Dataset) DataTypes() map[string]string {
	types := make(map[string]string, len(d.order))
	for _, n := range d.order {
		types[n] = d.columns[n].Kind().String()
	}
	return types
}

// Equal reports whether two Datasets have identical column order, kinds,
// and cell-for-cell values.
func (d *Dataset) Equal(other *Dataset) bool {
	if d.Width() != other.Width() || d.Len() != other.Len() {
		return false
	}
	for i, n := range d.order {
		if other.order[i] != n {
			return false
		}
		if !d.columns[n].Equal(other.columns[n]) {
			return false
		}
	}
	return true
}

// String returns a short description of the dataset shape.
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(%d rows x %d columns)", d.Len(), d.Width())
}

// Release releases the Arrow memory held by every column.
func (d *Dataset) Release() {
	for _, n := range d.order {
		d.columns[n].Release()
	}
}
