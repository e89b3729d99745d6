// Package tabular loads and writes delimited datasets while keeping the
// order of their columns and rows.
package tabular

import (
	"fmt"
	"slices"
)

// Record is one row of a dataset. Field order is owned by the dataset header.
type Record struct {
	fields map[string]string
}

func NewRecord() Record {
	return Record{fields: map[string]string{}}
}

func (r Record) Get(field string) (string, bool) {
	v, ok := r.fields[field]
	return v, ok
}

func (r Record) Has(field string) bool {
	_, ok := r.fields[field]
	return ok
}

func (r *Record) Set(field, value string) {
	if r.fields == nil {
		r.fields = map[string]string{}
	}
	r.fields[field] = value
}

func (r Record) Len() int {
	return len(r.fields)
}

// Dataset is an ordered list of records plus the ordered, unique list of
// column names. The header only ever grows by appending.
type Dataset struct {
	header  []string
	index   map[string]struct{}
	Records []Record
}

func NewDataset(header []string) (*Dataset, error) {
	ds := &Dataset{index: map[string]struct{}{}}
	for i, name := range header {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if _, dup := ds.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		ds.index[name] = struct{}{}
		ds.header = append(ds.header, name)
	}
	return ds, nil
}

// Header returns a copy of the column names in order.
func (d *Dataset) Header() []string {
	return slices.Clone(d.header)
}

func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// AppendColumns appends the names that are not already part of the header,
// in the order given. Calling it again with the same names is a no-op.
func (d *Dataset) AppendColumns(names ...string) {
	if d.index == nil {
		d.index = map[string]struct{}{}
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := d.index[name]; ok {
			continue
		}
		d.index[name] = struct{}{}
		d.header = append(d.header, name)
	}
}

// Append adds a record, columns it sets that are not in the header are
// appended to the header so the header stays a superset of every record.
func (d *Dataset) Append(r Record) {
	var extra []string
	for k := range r.fields {
		if !d.HasColumn(k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	d.AppendColumns(extra...)
	d.Records = append(d.Records, r)
}

// Row returns the values of a record in header order, missing fields are empty.
func (d *Dataset) Row(i int) []string {
	r := d.Records[i]
	row := make([]string, len(d.header))
	for j, name := range d.header {
		row[j] = r.fields[name]
	}
	return row
}

func (d *Dataset) Len() int {
	return len(d.Records)
}
