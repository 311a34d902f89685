package bigtable

import "context"

//go:generate mockgen -destination=token_mock.go -package=bigtable -source=token.go

// TokenSource supplies the bearer token attached as authorization metadata
// to every outbound call. It is shared process-wide across concurrent reads
// and is expected to serialize its own refresh; see internal/creds for the
// Application-Default-Credentials implementation.
type TokenSource interface {
	// Token returns the current token without blocking.
	Token() string
	// Refresh brings the token up to date. It is called synchronously
	// before every read; an error aborts the call before any network I/O.
	Refresh(ctx context.Context) error
}
