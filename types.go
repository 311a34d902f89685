package bigtable

// RowKey uniquely identifies a row within a table. Keys are opaque bytes;
// the stream order of commit markers defines row emission order.
type RowKey []byte

// CellName names a cell (column qualifier) within a row.
type CellName []byte

// CellValue is the content of one cell version, opaque end to end.
type CellValue []byte

// Cell is a named value within a row. Only the winning version of a cell
// survives decoding, so names are unique within a decoded row.
type Cell struct {
	Name  CellName
	Value CellValue
}

// Row is a decoded row: its key and its cells in qualifier-arrival order.
type Row struct {
	Key   RowKey
	Cells []Cell
}

// Cell returns the value for the named cell and whether it was present.
func (r *Row) Cell(name string) (CellValue, bool) {
	for _, c := range r.Cells {
		if string(c.Name) == name {
			return c.Value, true
		}
	}
	return nil, false
}
