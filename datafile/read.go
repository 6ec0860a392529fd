// Package datafile reads tables of measurements from CSV, TSV, plain text,
// Markdown and XLSX files into named numeric columns.
package datafile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupported = errors.New("datafile: unsupported file type")
	ErrLayout      = errors.New("datafile: unknown layout")
	ErrDelim       = errors.New("datafile: unsupported delimiter")
	ErrEmptyFile   = errors.New("datafile: no header row")
)

// Options tunes the reader. The zero value reads a vertical table with an
// auto-detected delimiter, keeping numeric columns only.
type Options struct {
	// Layout is vertical (series in columns, names in the first row) or
	// horizontal (series in rows, names in the first column).
	Layout string
	// Delim is ",", ", ", "\t", ";", " " (any run of whitespace) or empty to
	// detect it from the header line.
	Delim     string
	Decimal   string
	Thousands string
	// NRows limits the number of data rows read; 0 reads all.
	NRows int
	// SkipRows lists zero-based data rows to ignore.
	SkipRows   []int
	SkipFooter int
	// Cols picks columns by name, or by Excel letters and ranges such as
	// "A:C" or "E".
	Cols []string
	// Sheet is an XLSX sheet name or zero-based index. Empty reads the first.
	Sheet string
	// KeepNA keeps columns in which no cell is a number.
	KeepNA bool
	// Text keeps every cell as a string and leaves Table.Columns nil.
	Text bool

	Logger *slog.Logger
}

// Read loads the table stored at path, choosing the reader from the file
// extension.
func Read(path string, opts Options) (*Table, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "xlsx" {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("datafile: open %s: %w", path, err)
		}
		defer f.Close()
		return fromWorkbook(f, opts)
	}

	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datafile: %w", err)
	}
	defer r.Close()
	t, err := ReadFrom(r, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return t, nil
}

// ReadFrom reads a table in the given format: csv, tsv, txt, dat, md or
// xlsx.
func ReadFrom(r io.Reader, format string, opts Options) (*Table, error) {
	var (
		grid [][]string
		err  error
	)
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "csv", "tsv", "txt", "dat":
		grid, err = readDelimited(r, opts.Delim)
	case "md":
		grid, err = readMarkdown(r)
	case "xlsx":
		f, ferr := excelize.OpenReader(r)
		if ferr != nil {
			return nil, fmt.Errorf("datafile: %w", ferr)
		}
		defer f.Close()
		return fromWorkbook(f, opts)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupported, format)
	}
	if err != nil {
		return nil, err
	}
	return build(grid, opts)
}

func fromWorkbook(f *excelize.File, opts Options) (*Table, error) {
	sheets := f.GetSheetList()
	sheet := opts.Sheet
	switch {
	case len(sheets) == 0:
		return nil, ErrEmptyFile
	case sheet == "":
		sheet = sheets[0]
	default:
		if i, err := strconv.Atoi(sheet); err == nil && !slices.Contains(sheets, sheet) {
			if i < 0 || i >= len(sheets) {
				return nil, fmt.Errorf("datafile: sheet index %d out of range (%d sheets)", i, len(sheets))
			}
			sheet = sheets[i]
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("datafile: sheet %q: %w", sheet, err)
	}
	return build(rows, opts)
}

// detectDelim tries ", ", tab, comma and semicolon on the header line, in
// that order, and falls back to whitespace.
func detectDelim(line string) string {
	for _, d := range []string{", ", "\t", ",", ";"} {
		if strings.Contains(line, d) {
			return d
		}
	}
	return " "
}

func readDelimited(r io.Reader, delim string) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("datafile: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	if delim == "" {
		for _, line := range strings.Split(string(raw), "\n") {
			if strings.TrimSpace(line) != "" {
				delim = detectDelim(line)
				break
			}
		}
		if delim == "" {
			delim = ","
		}
	}

	if delim == " " {
		var grid [][]string
		for _, line := range strings.Split(string(raw), "\n") {
			if fields := strings.Fields(line); len(fields) > 0 {
				grid = append(grid, fields)
			}
		}
		return grid, nil
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	switch delim {
	case ", ":
		cr.Comma = ','
		cr.TrimLeadingSpace = true
	case ",", "\t", ";", "|":
		cr.Comma = rune(delim[0])
	default:
		return nil, fmt.Errorf("%w %q", ErrDelim, delim)
	}
	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("datafile: %w", err)
	}
	return grid, nil
}

var mdRuleRe = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)

func readMarkdown(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("datafile: %w", err)
	}
	var grid [][]string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") || mdRuleRe.MatchString(line) {
			continue
		}
		line = strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
		cells := strings.Split(line, "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func transpose(grid [][]string) [][]string {
	width := 0
	for _, row := range grid {
		width = max(width, len(row))
	}
	out := make([][]string, width)
	for j := range out {
		out[j] = make([]string, len(grid))
		for i, row := range grid {
			if j < len(row) {
				out[j][i] = row[j]
			}
		}
	}
	return out
}

func vertical(layout string) (bool, error) {
	switch strings.ToLower(layout) {
	case "", "v", "ver", "vertical", "columns":
		return true, nil
	case "h", "hor", "horizontal", "rows":
		return false, nil
	}
	return false, fmt.Errorf("%w %q", ErrLayout, layout)
}

// build turns a grid of cells, header first, into a Table.
func build(grid [][]string, opts Options) (*Table, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	v, err := vertical(opts.Layout)
	if err != nil {
		return nil, err
	}
	if !v {
		grid = transpose(grid)
	}
	if len(grid) == 0 {
		return nil, ErrEmptyFile
	}

	header, rows := grid[0], grid[1:]
	rows = rows[:max(len(rows)-opts.SkipFooter, 0)]
	if len(opts.SkipRows) > 0 {
		kept := rows[:0:0]
		for i, row := range rows {
			if !slices.Contains(opts.SkipRows, i) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	if opts.NRows > 0 && len(rows) > opts.NRows {
		rows = rows[:opts.NRows]
	}

	width := len(header)
	for _, row := range rows {
		width = max(width, len(row))
	}
	names := make([]string, width)
	for j := range names {
		if j < len(header) {
			names[j] = strings.TrimSpace(header[j])
		}
		if names[j] == "" {
			names[j] = "Unnamed: " + strconv.Itoa(j)
		}
	}

	cols, err := selectColumns(names, opts.Cols)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for _, j := range cols {
		text := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				text[i] = strings.TrimSpace(row[j])
			}
		}
		if opts.Text {
			if !opts.KeepNA && allEmpty(text) {
				log.Debug("dropping empty column", "column", names[j])
				continue
			}
			t.Names = append(t.Names, names[j])
			t.Text = append(t.Text, text)
			continue
		}

		nums := make([]float64, len(text))
		valid := false
		for i, s := range text {
			nums[i] = parseNumber(s, opts.Decimal, opts.Thousands)
			valid = valid || !math.IsNaN(nums[i])
		}
		if !valid && !opts.KeepNA {
			log.Debug("dropping non-numeric column", "column", names[j])
			continue
		}
		t.Names = append(t.Names, names[j])
		t.Text = append(t.Text, text)
		t.Columns = append(t.Columns, nums)
	}
	if !opts.Text && t.Columns == nil {
		t.Columns = [][]float64{}
	}
	return t, nil
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// parseNumber reads s as a float, NaN when it is not a number.
func parseNumber(s, decimal, thousands string) float64 {
	if thousands != "" {
		s = strings.ReplaceAll(s, thousands, "")
	}
	if decimal != "" && decimal != "." {
		s = strings.ReplaceAll(s, decimal, ".")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

var lettersRe = regexp.MustCompile(`^([A-Za-z]{1,3})(?::([A-Za-z]{1,3}))?$`)

// selectColumns resolves names and Excel letter ranges to column indices.
// A token equal to a column name always means that column.
func selectColumns(names []string, sel []string) ([]int, error) {
	if len(sel) == 0 {
		idx := make([]int, len(names))
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	var idx []int
	for _, tok := range sel {
		for _, part := range strings.Split(tok, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if i := slices.Index(names, part); i >= 0 {
				idx = append(idx, i)
				continue
			}
			m := lettersRe.FindStringSubmatch(part)
			if m == nil {
				return nil, fmt.Errorf("%w %q", ErrNoColumn, part)
			}
			lo, err := excelize.ColumnNameToNumber(m[1])
			if err != nil {
				return nil, fmt.Errorf("datafile: %w", err)
			}
			hi := lo
			if m[2] != "" {
				if hi, err = excelize.ColumnNameToNumber(m[2]); err != nil {
					return nil, fmt.Errorf("datafile: %w", err)
				}
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			for c := lo; c <= hi; c++ {
				if c > len(names) {
					return nil, fmt.Errorf("%w %q: only %d columns", ErrNoColumn, part, len(names))
				}
				idx = append(idx, c-1)
			}
		}
	}
	return idx, nil
}
