package bigtable

import (
	btpb "cloud.google.com/go/bigtable/apiv2/bigtablepb"
)

// RowSelector describes which rows a read should return. Zero value means
// a full table scan. Keys, Prefix and Range may be combined; the server
// unions them.
type RowSelector struct {
	// Keys selects individual rows.
	Keys []RowKey
	// Prefix selects the half-open range of keys starting with it.
	Prefix RowKey
	// Start (inclusive) and End (exclusive) select a key range. A nil End
	// leaves the range unbounded.
	Start RowKey
	End   RowKey
	// Limit caps the number of rows returned; 0 means no cap.
	Limit int64
}

// NewReadRequest builds a fully-addressed ReadRowsRequest for table. A nil
// selector scans the whole table.
func (c *Client) NewReadRequest(table string, sel *RowSelector) *btpb.ReadRowsRequest {
	req := &btpb.ReadRowsRequest{
		TableName: c.TableName(table),
	}
	if sel == nil {
		return req
	}

	req.RowsLimit = sel.Limit

	set := &btpb.RowSet{}
	for _, k := range sel.Keys {
		set.RowKeys = append(set.RowKeys, k)
	}
	if len(sel.Prefix) > 0 {
		set.RowRanges = append(set.RowRanges, prefixRange(sel.Prefix))
	}
	if len(sel.Start) > 0 || len(sel.End) > 0 {
		rr := &btpb.RowRange{}
		if len(sel.Start) > 0 {
			rr.StartKey = &btpb.RowRange_StartKeyClosed{StartKeyClosed: sel.Start}
		}
		if len(sel.End) > 0 {
			rr.EndKey = &btpb.RowRange_EndKeyOpen{EndKeyOpen: sel.End}
		}
		set.RowRanges = append(set.RowRanges, rr)
	}
	if len(set.RowKeys) > 0 || len(set.RowRanges) > 0 {
		req.Rows = set
	}
	return req
}

// prefixRange converts a key prefix into the equivalent half-open range.
func prefixRange(prefix RowKey) *btpb.RowRange {
	rr := &btpb.RowRange{
		StartKey: &btpb.RowRange_StartKeyClosed{StartKeyClosed: prefix},
	}
	if end := prefixSuccessor(prefix); end != nil {
		rr.EndKey = &btpb.RowRange_EndKeyOpen{EndKeyOpen: end}
	}
	return rr
}

// prefixSuccessor returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists (all 0xff), in which case
// the range is unbounded above.
func prefixSuccessor(prefix RowKey) RowKey {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xff {
			succ := make(RowKey, i+1)
			copy(succ, prefix[:i+1])
			succ[i]++
			return succ
		}
	}
	return nil
}
