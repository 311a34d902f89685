package bigtable

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

const (
	defaultEndpoint  = "bigtable.googleapis.com:443"
	defaultAuthority = "bigtable.googleapis.com"

	// emulatorHostEnv points the pool at a local emulator instead of the
	// production service, and switches the resource prefix accordingly.
	emulatorHostEnv = "BIGTABLE_EMULATOR_HOST"
)

// Conn is a logical connection to one Bigtable instance: a pool of
// equivalent gRPC endpoints plus the resource prefix used to address its
// tables. Conns are safe for concurrent use; each read call owns its own
// stream and decoder state.
type Conn struct {
	pool        []*grpc.ClientConn
	next        atomic.Uint32
	tablePrefix string
	tokens      TokenSource
	timeout     time.Duration
}

type Config struct {
	ProjectID string
	Instance  string
	// Tokens supplies authorization for every call. Required unless the
	// emulator override is in effect.
	Tokens TokenSource
	// PoolSize is the number of pooled endpoints; 0 means 1.
	PoolSize int
	// Timeout bounds the wall-clock duration of each streaming read.
	// 0 means no bound.
	Timeout time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.ProjectID == "" {
		errGrp = append(errGrp, fmt.Errorf("project id required"))
	}
	if c.Instance == "" {
		errGrp = append(errGrp, fmt.Errorf("instance required"))
	}
	if c.Tokens == nil && os.Getenv(emulatorHostEnv) == "" {
		errGrp = append(errGrp, fmt.Errorf("token source required"))
	}

	return errors.Join(errGrp...)
}

// New establishes a connection pool to the instance named in cfg. When
// BIGTABLE_EMULATOR_HOST is set the pool points at the emulator over an
// insecure channel and no token source is needed.
func New(cfg *Config) (*Conn, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	size := cfg.PoolSize
	if size < 1 {
		size = 1
	}

	// Keep idle channels alive so a burst of reads after a quiet period
	// does not pay reconnection latency.
	kal := grpc.WithKeepaliveParams(keepalive.ClientParameters{
		Time:                30 * time.Second,
		Timeout:             20 * time.Second,
		PermitWithoutStream: true,
	})

	target := defaultEndpoint
	prefix := fmt.Sprintf("projects/%s/instances/%s/tables/", cfg.ProjectID, cfg.Instance)
	tokens := cfg.Tokens

	opts := []grpc.DialOption{kal}
	if emulator := os.Getenv(emulatorHostEnv); emulator != "" {
		log.Info().Msgf("Connecting to bigtable emulator at %s", emulator)
		target = emulator
		prefix = fmt.Sprintf("projects/emulator/instances/%s/tables/", cfg.Instance)
		tokens = nil
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		tlsCreds := credentials.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: defaultAuthority,
		})
		opts = append(opts, grpc.WithTransportCredentials(tlsCreds))
	}

	pool := make([]*grpc.ClientConn, 0, size)
	for i := 0; i < size; i++ {
		cc, err := grpc.NewClient(target, opts...)
		if err != nil {
			for _, open := range pool {
				_ = open.Close()
			}
			return nil, newError(ErrTransport, "failed to create channel to %s: %v", target, err)
		}
		pool = append(pool, cc)
	}

	return &Conn{
		pool:        pool,
		tablePrefix: prefix,
		tokens:      tokens,
		timeout:     cfg.Timeout,
	}, nil
}

// Client returns a client bound to the next pooled endpoint. Clients are
// cheap; create one per call site.
func (c *Conn) Client() *Client {
	return &Client{
		service:     newBigtableService(c.pick()),
		tokens:      c.tokens,
		tablePrefix: c.tablePrefix,
		timeout:     c.timeout,
	}
}

// pick selects a pooled endpoint round-robin.
func (c *Conn) pick() *grpc.ClientConn {
	n := c.next.Add(1) - 1
	return c.pool[int(n)%len(c.pool)]
}

// TablePrefix is the resource-name prefix tables of this instance live
// under, e.g. "projects/p/instances/i/tables/".
func (c *Conn) TablePrefix() string {
	return c.tablePrefix
}

// Close tears down every pooled channel.
func (c *Conn) Close() error {
	log.Info().Msg("Closing bigtable connection pool")
	var errGrp []error
	for _, cc := range c.pool {
		if err := cc.Close(); err != nil {
			errGrp = append(errGrp, err)
		}
	}
	return errors.Join(errGrp...)
}
