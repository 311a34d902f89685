package bigtable

import (
	"context"
	"time"

	btpb "cloud.google.com/go/bigtable/apiv2/bigtablepb"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// readRowsService is the slice of the generated Bigtable data client the
// read path uses.
type readRowsService interface {
	ReadRows(ctx context.Context, in *btpb.ReadRowsRequest, opts ...grpc.CallOption) (btpb.Bigtable_ReadRowsClient, error)
}

func newBigtableService(cc grpc.ClientConnInterface) readRowsService {
	return btpb.NewBigtableClient(cc)
}

// Client issues streaming reads over one pooled endpoint. Create one per
// call site via Conn.Client.
type Client struct {
	service     readRowsService
	tokens      TokenSource
	tablePrefix string
	timeout     time.Duration
}

// ReadRows issues one streaming read and returns the decoded rows in
// commit order. The token source is refreshed synchronously before the
// call; cancelling ctx closes the stream so the remote side stops sending.
func (c *Client) ReadRows(ctx context.Context, req *btpb.ReadRowsRequest) ([]Row, error) {
	now := time.Now()
	callID := uuid.NewString()
	log.Debug().Str("call_id", callID).Msgf("ReadRows request: %s", req.GetTableName())

	// Abandoning the stream before EOF (timeout, decode error) only stops
	// the remote sender once the call context ends.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctx, err := c.authorize(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := c.service.ReadRows(ctx, req)
	if err != nil {
		return nil, err
	}

	rows, err := decodeReadRows(stream, c.timeout)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("call_id", callID).Int("rows", len(rows)).
		Msgf("ReadRows latency: %v", time.Since(now))
	return rows, nil
}

// ReadRow reads a single row by key. It returns ErrRowNotFound when the
// row does not exist.
func (c *Client) ReadRow(ctx context.Context, table string, key RowKey) (*Row, error) {
	req := c.NewReadRequest(table, &RowSelector{Keys: []RowKey{key}, Limit: 1})
	rows, err := c.ReadRows(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, newError(ErrRowNotFound, "table %q key %q", table, key)
	}
	return &rows[0], nil
}

// TableName returns the fully-addressed resource name for table.
func (c *Client) TableName(table string) string {
	return c.tablePrefix + table
}

// authorize refreshes the token source and attaches the bearer token as
// call metadata. A nil token source (emulator) is a no-op.
func (c *Client) authorize(ctx context.Context) (context.Context, error) {
	if c.tokens == nil {
		return ctx, nil
	}
	if err := c.tokens.Refresh(ctx); err != nil {
		return nil, newError(ErrCredential, "refresh failed: %v", err)
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.tokens.Token()), nil
}
