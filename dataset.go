package seizureplot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const DefaultLabelColumn = "y"

// LoadOptions controls how the input file is split into records.
type LoadOptions struct {
	// Name of the column holding the 0/1 label. Defaults to DefaultLabelColumn.
	LabelColumn string

	// Split lines on commas or runs of spaces and tabs instead of parsing
	// strict CSV.
	Relaxed bool

	// Field delimiter for strict CSV. Defaults to ','.
	Comma rune
}

func (o LoadOptions) labelColumn() string {
	if o.LabelColumn == "" {
		return DefaultLabelColumn
	}
	return o.LabelColumn
}

type ColumnKind int

const (
	Numeric ColumnKind = iota
	Categorical
)

func (k ColumnKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("ColumnKind(%d)", int(k))
	}
}

// Row is one sample of the dataset.
type Row struct {
	// Position of the row in the source file, header excluded.
	Index int

	// Value of the label column, 0 or 1.
	Label int

	// Raw cells in column order.
	Fields []string

	// Parsed cells in column order. NaN where the cell is not a number.
	Values []float64

	columns         []string
	numericFeatures []int
}

// Get returns the raw cell of the named column and whether the column exists.
func (r Row) Get(name string) (string, bool) {
	for i, column := range r.columns {
		if column == name && i < len(r.Fields) {
			return r.Fields[i], true
		}
	}
	return "", false
}

// Features returns the values of the numeric, non-label columns in column
// order. These are the points drawn when the row is plotted.
func (r Row) Features() []float64 {
	features := make([]float64, len(r.numericFeatures))
	for i, column := range r.numericFeatures {
		features[i] = r.Values[column]
	}
	return features
}

func (r Row) clone() Row {
	c := r
	c.Fields = append([]string(nil), r.Fields...)
	c.Values = append([]float64(nil), r.Values...)
	return c
}

// Dataset is the whole input file held in memory. It is not modified after
// Load returns.
type Dataset struct {
	Columns     []string
	Kinds       []ColumnKind
	LabelColumn string
	Rows        []Row

	labelIndex int
}

func (d *Dataset) Len() int {
	return len(d.Rows)
}

// FeatureColumns names the columns returned by Row.Features.
func (d *Dataset) FeatureColumns() []string {
	columns := make([]string, 0, len(d.Columns))
	for i, column := range d.Columns {
		if i != d.labelIndex && d.Kinds[i] == Numeric {
			columns = append(columns, column)
		}
	}
	return columns
}

// Load reads a delimited file with a header row into memory.
//
// A missing or unreadable file yields a *FileAccessError. Malformed input,
// including a row whose column count differs from the header, a missing label
// column or a label other than 0 or 1, yields a *ParseError.
func Load(ctx context.Context, path string, opts LoadOptions) (*Dataset, error) {
	logger := logrus.WithFields(logrus.Fields{
		"tag":  "Load",
		"path": path,
	})

	f, err := os.Open(path)
	if err != nil {
		logger.WithError(err).Debug("unable to open input")
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := ReadDataset(ctx, f, opts)
	if err != nil {
		var parseErr *ParseError
		if !errors.As(err, &parseErr) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			// Anything that is neither a parse problem nor a cancellation came
			// from the file itself.
			return nil, &FileAccessError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.WithFields(logrus.Fields{
		"rows":    ds.Len(),
		"columns": len(ds.Columns),
	}).Info("dataset loaded")

	return ds, nil
}

// ReadDataset is Load over an arbitrary reader.
func ReadDataset(ctx context.Context, input io.Reader, opts LoadOptions) (*Dataset, error) {
	var records RecordReader
	if opts.Relaxed {
		records = NewRelaxedRecordReader(input)
	} else {
		records = NewCsvRecordReader(input, opts.Comma)
	}

	header, err := records.Read(ctx)
	if err == io.EOF {
		return nil, &ParseError{Err: errors.New("missing header row")}
	} else if err != nil {
		return nil, err
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}
	// Spreadsheet exports often start with a byte order mark.
	if len(columns) > 0 {
		columns[0] = strings.TrimSpace(strings.TrimPrefix(columns[0], "\ufeff"))
	}

	labelColumn := opts.labelColumn()
	labelIndex := -1
	for i, name := range columns {
		if name == labelColumn {
			labelIndex = i
			break
		}
	}
	if labelIndex < 0 {
		return nil, &ParseError{Line: records.Line(), Err: fmt.Errorf("label column %q not found in header %v", labelColumn, columns)}
	}

	ds := &Dataset{
		Columns:     columns,
		LabelColumn: labelColumn,
		Rows:        make([]Row, 0),
		labelIndex:  labelIndex,
	}
	var lines []int

	for {
		record, err := records.Read(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		logger := logrus.WithFields(logrus.Fields{
			"tag":     "ReadDataset",
			"lineNum": records.Line(),
		})

		if len(record) != len(columns) {
			logger.WithField("line", record).Warnf("expected %d columns, found %d", len(columns), len(record))
			return nil, &ParseError{
				Line: records.Line(),
				Err:  fmt.Errorf("expected %d columns, found %d", len(columns), len(record)),
			}
		}

		row := Row{
			Index:  len(ds.Rows),
			Fields: make([]string, len(record)),
			Values: make([]float64, len(record)),
		}
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			row.Fields[i] = cell

			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				value = math.NaN()
			}
			row.Values[i] = value
		}

		switch row.Values[labelIndex] {
		case 0:
			row.Label = 0
		case 1:
			row.Label = 1
		default:
			logger.WithField("label", row.Fields[labelIndex]).Warn("label is not 0 or 1")
			return nil, &ParseError{
				Line: records.Line(),
				Err:  fmt.Errorf("label column %q has value %q, want 0 or 1", labelColumn, row.Fields[labelIndex]),
			}
		}

		ds.Rows = append(ds.Rows, row)
		lines = append(lines, records.Line())
	}

	ds.Kinds = columnKinds(ds)

	var numericFeatures []int
	for i, kind := range ds.Kinds {
		if i != labelIndex && kind == Numeric {
			numericFeatures = append(numericFeatures, i)
		}
	}
	for i := range ds.Rows {
		for _, column := range numericFeatures {
			if value := ds.Rows[i].Values[column]; math.IsNaN(value) || math.IsInf(value, 0) {
				return nil, &ParseError{
					Line: lines[i],
					Err:  fmt.Errorf("column %q has non-finite value %q", columns[column], ds.Rows[i].Fields[column]),
				}
			}
		}
		ds.Rows[i].columns = columns
		ds.Rows[i].numericFeatures = numericFeatures
	}

	return ds, nil
}

// A column is numeric when every one of its cells parses as a float. With no
// rows every column counts as numeric. Literal nan cells keep a column numeric
// so ReadDataset can reject them with their line.
func columnKinds(ds *Dataset) []ColumnKind {
	kinds := make([]ColumnKind, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, value := range row.Values {
			if math.IsNaN(value) && !strings.EqualFold(row.Fields[i], "nan") {
				kinds[i] = Categorical
			}
		}
	}
	return kinds
}
