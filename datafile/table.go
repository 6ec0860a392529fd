package datafile

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

var (
	ErrNoColumn = errors.New("datafile: no such column")
	ErrText     = errors.New("datafile: table was read as text")
)

// Table holds named columns. Columns is nil when the file was read as text.
type Table struct {
	Names   []string
	Columns [][]float64
	Text    [][]string
}

// Len is the number of rows.
func (t *Table) Len() int {
	if len(t.Text) == 0 {
		return 0
	}
	return len(t.Text[0])
}

func (t *Table) index(name string) (int, error) {
	for i, n := range t.Names {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %q", ErrNoColumn, name)
}

// Column returns the numeric column called name.
func (t *Table) Column(name string) ([]float64, error) {
	i, err := t.index(name)
	if err != nil {
		return nil, err
	}
	if t.Columns == nil {
		return nil, ErrText
	}
	return t.Columns[i], nil
}

// TextColumn returns the raw cells of the column called name.
func (t *Table) TextColumn(name string) ([]string, error) {
	i, err := t.index(name)
	if err != nil {
		return nil, err
	}
	return t.Text[i], nil
}

// Summary describes one numeric column. NaN cells are left out.
type Summary struct {
	Name   string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Median float64
	Max    float64
}

// Describe summarises every numeric column.
func (t *Table) Describe() ([]Summary, error) {
	if t.Columns == nil {
		return nil, ErrText
	}
	out := make([]Summary, len(t.Columns))
	for i, col := range t.Columns {
		s, err := describe(col)
		if err != nil {
			return nil, fmt.Errorf("datafile: describe %q: %w", t.Names[i], err)
		}
		s.Name = t.Names[i]
		out[i] = s
	}
	return out, nil
}

func describe(col []float64) (Summary, error) {
	data := make(stats.Float64Data, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}
	nan := math.NaN()
	s := Summary{Count: len(data), Mean: nan, Std: nan, Min: nan, Median: nan, Max: nan}
	if len(data) == 0 {
		return s, nil
	}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if len(data) > 1 {
		if s.Std, err = stats.StandardDeviationSample(data); err != nil {
			return s, err
		}
	}
	return s, nil
}
