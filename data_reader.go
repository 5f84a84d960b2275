package seizureplot

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"regexp"

	"github.com/sirupsen/logrus"
)

// The loading pipeline starts with an io.Reader (the input file), which a
// RecordReader splits into string fields one line at a time. The loader turns
// those into Rows. Unlike a streaming plotter, nothing here is skipped: the
// first bad line ends the load with a ParseError.

// When Read is called, return the fields of the next non-empty line, or
// io.EOF once the input is exhausted.
type RecordReader interface {
	Read(context.Context) ([]string, error)

	// Line returns the 1-based line number of the record most recently
	// returned by Read.
	Line() int
}

// This implements a RecordReader and reads an io.Reader using the Golang csv
// module. The input must strictly conform to CSV. If the input is separated
// by one or more spaces, use the RelaxedRecordReader.
type CsvRecordReader struct {
	input     io.Reader
	csvReader *csv.Reader

	line int
}

func NewCsvRecordReader(input io.Reader, comma rune) *CsvRecordReader {
	csvReader := csv.NewReader(input)
	if comma != 0 {
		csvReader.Comma = comma
	}
	// Field count is validated by the loader against the header so both
	// readers report it the same way.
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	return &CsvRecordReader{
		input:     input,
		csvReader: csvReader,
	}
}

func (r *CsvRecordReader) Read(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record, err := r.csvReader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}

	if err != nil {
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			r.line = csvErr.Line
			logrus.WithFields(logrus.Fields{
				"tag":     "CsvRecord",
				"lineNum": csvErr.Line,
			}).WithError(err).Debug("unable to parse CSV")
			return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
		}

		logrus.WithField("tag", "CsvRecord").WithError(err).Error("unable to read CSV")
		return nil, err
	}

	r.line, _ = r.csvReader.FieldPos(0)
	return record, nil
}

func (r *CsvRecordReader) Line() int {
	return r.line
}

// This is a more relaxed reader that can split on spaces or commas. However,
// it does not follow CSV quoting rules.
type RelaxedRecordReader struct {
	input   io.Reader
	scanner *bufio.Scanner

	line int
}

func NewRelaxedRecordReader(input io.Reader) *RelaxedRecordReader {
	scanner := bufio.NewScanner(input)
	// Rows of a few thousand samples overflow the default 64KiB token.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	return &RelaxedRecordReader{
		input:   input,
		scanner: scanner,
	}
}

// Split on either comma or any number of spaces or tabs
var relaxedSplitter = regexp.MustCompile("[ \t]+|,")

func (r *RelaxedRecordReader) Read(ctx context.Context) ([]string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					return nil, &ParseError{Line: r.line + 1, Err: err}
				}
				logrus.WithField("tag", "RelaxedRecord").WithError(err).Error("unable to read line")
				return nil, err
			}
			return nil, io.EOF
		}
		r.line++

		fields := Filter(relaxedSplitter.Split(r.scanner.Text(), -1), func(value string) bool {
			return len(value) > 0
		})

		if len(fields) > 0 {
			return fields, nil
		}
	}
}

func (r *RelaxedRecordReader) Line() int {
	return r.line
}
