package bigtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRow_Cell(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	row := &Row{
		Key: RowKey("r1"),
		Cells: []Cell{
			{Name: CellName("a"), Value: CellValue("1")},
			{Name: CellName("b"), Value: CellValue("2")},
		},
	}

	value, ok := row.Cell("b")
	req.True(ok)
	req.Equal(CellValue("2"), value)

	value, ok = row.Cell("missing")
	req.False(ok)
	req.Nil(value)
}
