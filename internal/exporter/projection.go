package exporter

import (
	"errors"
	"fmt"

	"footlens/pkg/contracts/domain"
)

// ErrUnknownColumn is returned when a projection names a column the table does not have
var ErrUnknownColumn = errors.New("unknown column")

// Projection is a row and column subset of the augmented table
type Projection struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Project selects columns from records, keeping record order
func Project(records []domain.InjuryRecord, columns []string) (*Projection, error) {
	for _, c := range columns {
		if !domain.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}

	p := &Projection{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]interface{}, len(records)),
	}
	for i := range records {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			row[j], _ = records[i].Value(c)
		}
		p.Rows[i] = row
	}
	return p, nil
}

// Len returns the number of rows
func (p *Projection) Len() int {
	return len(p.Rows)
}

// Head returns the first n rows
func (p *Projection) Head(n int) *Projection {
	if n < 0 || n > len(p.Rows) {
		n = len(p.Rows)
	}
	return &Projection{Columns: p.Columns, Rows: p.Rows[:n]}
}

// Strings formats every cell for CSV output
func (p *Projection) Strings() [][]string {
	out := make([][]string, len(p.Rows))
	for i, row := range p.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatValue(v)
		}
		out[i] = cells
	}
	return out
}
