package seizureplot

const (
	NegativeLabel = 0
	PositiveLabel = 1
)

// Partition is the order-preserving subsequence of a Dataset whose rows share
// one label. Its rows are copies and never alias the Dataset.
type Partition struct {
	Label   int
	Columns []string
	Rows    []Row
}

func (p Partition) Len() int {
	return len(p.Rows)
}

// FilterByLabel returns the rows of ds whose label equals value, in their
// original order.
func FilterByLabel(ds *Dataset, value int) Partition {
	matching := Filter(ds.Rows, func(row Row) bool {
		return row.Label == value
	})

	for i := range matching {
		matching[i] = matching[i].clone()
	}

	return Partition{
		Label:   value,
		Columns: append([]string(nil), ds.Columns...),
		Rows:    matching,
	}
}

// Split partitions ds into its positive and negative rows. Every row of ds
// lands in exactly one of the two.
func Split(ds *Dataset) (positive Partition, negative Partition) {
	return FilterByLabel(ds, PositiveLabel), FilterByLabel(ds, NegativeLabel)
}

// SelectRows returns the rows at the given ordinal positions of p, in the
// order the positions were given. If any position is outside p, no rows are
// returned and the error is an *IndexOutOfRangeError.
func SelectRows(p Partition, indices ...int) ([]Row, error) {
	selected := make([]Row, 0, len(indices))
	for _, index := range indices {
		if index < 0 || index >= len(p.Rows) {
			return nil, &IndexOutOfRangeError{Index: index, Len: len(p.Rows)}
		}
		selected = append(selected, p.Rows[index])
	}
	return selected, nil
}
