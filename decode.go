package bigtable

import (
	"errors"
	"io"
	"time"

	btpb "cloud.google.com/go/bigtable/apiv2/bigtablepb"
	"github.com/rs/zerolog/log"
)

// fragmentStream is the receive side of one streaming ReadRows call. The
// gRPC client stream satisfies it; tests feed canned responses through it.
type fragmentStream interface {
	Recv() (*btpb.ReadRowsResponse, error)
}

// rowDecoder reassembles complete rows from the ordered cell chunks of a
// single ReadRows call. It holds at most one row and one cell at a time, so
// memory is bounded by the largest single cell value regardless of row or
// table size. State lives for one call and is never shared.
type rowDecoder struct {
	rows []Row

	// row under construction
	rowKey RowKey
	cells  []Cell

	// cell under construction
	cellOpen  bool
	cellName  CellName
	cellTS    int64
	cellValue CellValue

	// keep is false while the bytes arriving belong to a stale version of
	// the open cell; they are read off the stream but never retained.
	keep bool
}

func newRowDecoder() *rowDecoder {
	return &rowDecoder{keep: true}
}

// chunk consumes one fragment, strictly in stream order.
func (d *rowDecoder) chunk(c *btpb.ReadRowsResponse_CellChunk) {
	// The server asks us to throw away everything buffered for the current
	// row; it will resend the row from scratch.
	if c.GetResetRow() {
		d.reset()
		return
	}

	// Starting a new row? The key is set once per construction cycle, by
	// the first chunk that carries one.
	if len(c.GetRowKey()) > 0 && d.rowKey == nil {
		d.rowKey = c.GetRowKey()
	}

	if q := c.GetQualifier(); q != nil {
		// Starting a new cell: flush the previous one first.
		d.flushCell()
		d.cellOpen = true
		d.cellName = q.GetValue()
		d.cellTS = c.GetTimestampMicros()
		d.keep = true
	} else if ts := c.GetTimestampMicros(); ts != 0 {
		// Continuing the open cell, but with a timestamp: another version
		// of the same cell is arriving in-stream.
		if ts < d.cellTS {
			// Older version, drop its bytes until the next cell starts.
			d.keep = false
		} else {
			// Newer (or equal, last-writer-wins) version supersedes
			// whatever was buffered so far.
			d.keep = true
			d.cellValue = nil
			d.cellTS = ts
		}
	}

	if d.keep {
		d.cellValue = append(d.cellValue, c.GetValue()...)
	}

	// End of the row? Emit and start a fresh construction cycle. This is
	// the only place state is reset; chunks between commits keep
	// accumulating into the same row.
	if c.GetCommitRow() {
		d.flushCell()
		if d.rowKey != nil {
			d.rows = append(d.rows, Row{Key: d.rowKey, Cells: d.cells})
		}
		d.reset()
	}
}

// flushCell appends the open cell, if any, to the row under construction.
func (d *rowDecoder) flushCell() {
	if !d.cellOpen {
		return
	}
	d.cells = append(d.cells, Cell{Name: d.cellName, Value: d.cellValue})
	d.cellOpen = false
	d.cellName = nil
	d.cellValue = nil
}

func (d *rowDecoder) reset() {
	d.rowKey = nil
	d.cells = nil
	d.cellOpen = false
	d.cellName = nil
	d.cellTS = 0
	d.cellValue = nil
	d.keep = true
}

// decodeReadRows drives the decoder message by message until the stream
// ends. The timeout is wall-clock for the whole exchange, checked after
// each received message; on expiry everything is discarded, including rows
// already completed in this call. Recv errors propagate unchanged.
func decodeReadRows(stream fragmentStream, timeout time.Duration) ([]Row, error) {
	d := newRowDecoder()
	started := time.Now()

	for {
		res, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return d.rows, nil
		}
		if err != nil {
			return nil, err
		}

		if timeout > 0 && time.Since(started) > timeout {
			return nil, newError(ErrTimeout, "no stream end after %s", timeout)
		}

		for i, c := range res.GetChunks() {
			log.Trace().Int("chunk", i).Msgf("cell chunk: %v", c)
			d.chunk(c)
		}
	}
}
