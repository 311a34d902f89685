package bigtable

import (
	"testing"

	btpb "cloud.google.com/go/bigtable/apiv2/bigtablepb"
	"github.com/stretchr/testify/require"
)

func TestClient_NewReadRequest(t *testing.T) {
	t.Parallel()
	client := &Client{tablePrefix: "projects/p/instances/i/tables/"}

	tests := map[string]struct {
		sel  *RowSelector
		want func(req *require.Assertions, got *btpb.ReadRowsRequest)
	}{
		"nil selector scans the table": {
			sel: nil,
			want: func(req *require.Assertions, got *btpb.ReadRowsRequest) {
				req.Nil(got.GetRows())
				req.Zero(got.GetRowsLimit())
			},
		},
		"keys and limit": {
			sel: &RowSelector{
				Keys:  []RowKey{RowKey("a"), RowKey("b")},
				Limit: 10,
			},
			want: func(req *require.Assertions, got *btpb.ReadRowsRequest) {
				req.Equal([][]byte{[]byte("a"), []byte("b")}, got.GetRows().GetRowKeys())
				req.Equal(int64(10), got.GetRowsLimit())
			},
		},
		"prefix becomes a half-open range": {
			sel: &RowSelector{Prefix: RowKey("ab")},
			want: func(req *require.Assertions, got *btpb.ReadRowsRequest) {
				ranges := got.GetRows().GetRowRanges()
				req.Len(ranges, 1)
				req.Equal([]byte("ab"), ranges[0].GetStartKeyClosed())
				req.Equal([]byte("ac"), ranges[0].GetEndKeyOpen())
			},
		},
		"all-0xff prefix is unbounded above": {
			sel: &RowSelector{Prefix: RowKey{0xff, 0xff}},
			want: func(req *require.Assertions, got *btpb.ReadRowsRequest) {
				ranges := got.GetRows().GetRowRanges()
				req.Len(ranges, 1)
				req.Equal([]byte{0xff, 0xff}, ranges[0].GetStartKeyClosed())
				req.Nil(ranges[0].GetEndKey())
			},
		},
		"explicit range": {
			sel: &RowSelector{Start: RowKey("a"), End: RowKey("m")},
			want: func(req *require.Assertions, got *btpb.ReadRowsRequest) {
				ranges := got.GetRows().GetRowRanges()
				req.Len(ranges, 1)
				req.Equal([]byte("a"), ranges[0].GetStartKeyClosed())
				req.Equal([]byte("m"), ranges[0].GetEndKeyOpen())
			},
		},
		"open-ended range": {
			sel: &RowSelector{Start: RowKey("a")},
			want: func(req *require.Assertions, got *btpb.ReadRowsRequest) {
				ranges := got.GetRows().GetRowRanges()
				req.Len(ranges, 1)
				req.Equal([]byte("a"), ranges[0].GetStartKeyClosed())
				req.Nil(ranges[0].GetEndKey())
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			req := require.New(t)

			got := client.NewReadRequest("tbl", tc.sel)
			req.Equal("projects/p/instances/i/tables/tbl", got.GetTableName())
			tc.want(req, got)
		})
	}
}

func TestPrefixSuccessor(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		prefix RowKey
		want   RowKey
	}{
		"simple":                {prefix: RowKey("abc"), want: RowKey("abd")},
		"trailing 0xff carries": {prefix: RowKey{'a', 0xff}, want: RowKey("b")},
		"all 0xff has none":     {prefix: RowKey{0xff, 0xff}, want: nil},
		"empty has none":        {prefix: nil, want: nil},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, prefixSuccessor(tc.prefix))
		})
	}
}
