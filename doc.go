// Package bigtable is a small read-path client for the Bigtable v2 data
// API. It speaks the streaming ReadRows protocol directly over gRPC and
// reassembles the chunked response into complete rows of opaque byte-string
// cells.
//
// A Conn owns a pool of endpoints to the service (or to an emulator when
// BIGTABLE_EMULATOR_HOST is set). Clients are created per call site from a
// Conn and are cheap:
//
//	conn, err := bigtable.New(&bigtable.Config{
//		ProjectID: "my-project",
//		Instance:  "my-instance",
//		Tokens:    tokens,
//	})
//	...
//	client := conn.Client()
//	rows, err := client.ReadRows(ctx, client.NewReadRequest("my-table", &bigtable.RowSelector{
//		Prefix: bigtable.RowKey("user:"),
//	}))
//
// Cell values are never interpreted; anything structured built on top of a
// row belongs to the caller.
package bigtable
