// btread scans a Bigtable table and prints the decoded rows. It respects
// BIGTABLE_EMULATOR_HOST for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	bigtable "github.com/litetable/bigtable-go"
	"github.com/litetable/bigtable-go/internal/creds"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		project  = flag.String("project", "", "project id")
		instance = flag.String("instance", "", "instance name")
		table    = flag.String("table", "", "table to read")
		key      = flag.String("key", "", "read a single row by key")
		prefix   = flag.String("prefix", "", "read rows whose key starts with prefix")
		limit    = flag.Int64("limit", 0, "max rows to return (0 = no cap)")
		pool     = flag.Int("pool", 1, "connection pool size")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall read timeout")
		readOnly = flag.Bool("read-only", true, "request a read-only token scope")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *table == "" {
		log.Fatal().Msg("-table is required")
	}

	ctx := context.Background()

	// The emulator needs no credentials; production does.
	var tokens bigtable.TokenSource
	if os.Getenv("BIGTABLE_EMULATOR_HOST") == "" {
		scope := creds.ScopeData
		if *readOnly {
			scope = creds.ScopeDataReadOnly
		}
		src, err := creds.New(ctx, &creds.Config{Scope: scope})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to resolve credentials")
		}
		tokens = src
	}

	conn, err := bigtable.New(&bigtable.Config{
		ProjectID: *project,
		Instance:  *instance,
		Tokens:    tokens,
		PoolSize:  *pool,
		Timeout:   *timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer func() {
		_ = conn.Close()
	}()

	client := conn.Client()
	sel := &bigtable.RowSelector{Limit: *limit}
	if *key != "" {
		sel.Keys = append(sel.Keys, bigtable.RowKey(*key))
	}
	if *prefix != "" {
		sel.Prefix = bigtable.RowKey(*prefix)
	}

	rows, err := client.ReadRows(ctx, client.NewReadRequest(*table, sel))
	if err != nil {
		log.Fatal().Err(err).Msg("read failed")
	}

	for _, row := range rows {
		fmt.Printf("%s\n", row.Key)
		for _, cell := range row.Cells {
			fmt.Printf("  %s = %q\n", cell.Name, cell.Value)
		}
	}
	log.Info().Int("rows", len(rows)).Msg("scan complete")
}
