package seizureplot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// Name of the leading column carrying Row.Index when rows are printed.
const indexColumn = "#"

// RowsFrame converts rows into a gota DataFrame, with the source row index as the
// first column so selections can be traced back to the input file.
func RowsFrame(columns []string, rows []Row) dataframe.DataFrame {
	records := make([][]string, 0, len(rows)+1)

	header := make([]string, 0, len(columns)+1)
	header = append(header, indexColumn)
	header = append(header, columns...)
	records = append(records, header)

	for _, row := range rows {
		record := make([]string, 0, len(row.Fields)+1)
		record = append(record, strconv.Itoa(row.Index))
		record = append(record, row.Fields...)
		records = append(records, record)
	}

	return dataframe.LoadRecords(records, dataframe.HasHeader(true), dataframe.DetectTypes(true))
}

// PrintRows writes rows as a table. Long tables are shortened the way gota
// shortens them.
func PrintRows(w io.Writer, columns []string, rows []Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "Empty DataFrame\nColumns: [%s]\n", strings.Join(columns, ", "))
		return err
	}

	df := RowsFrame(columns, rows)
	if df.Err != nil {
		return fmt.Errorf("build table: %w", df.Err)
	}

	_, err := fmt.Fprintln(w, df.String())
	return err
}

func PrintDataset(w io.Writer, ds *Dataset) error {
	return PrintRows(w, ds.Columns, ds.Rows)
}
