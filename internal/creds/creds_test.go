package creds

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// countingSource hands out sequenced tokens and counts fetches. An open
// gate blocks Token until released, for exercising coalescing.
type countingSource struct {
	calls  atomic.Int32
	expiry time.Time
	err    error
	gate   chan struct{}
}

func (s *countingSource) Token() (*oauth2.Token, error) {
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	n := s.calls.Add(1)
	return &oauth2.Token{
		AccessToken: "token-" + string(rune('0'+n)),
		Expiry:      s.expiry,
	}, nil
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	_, err := New(context.Background(), &Config{})
	req.Error(err)
	req.Equal("scope required", err.Error())
}

func TestSource_Refresh(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	base := &countingSource{expiry: time.Now().Add(time.Hour)}
	src, err := New(context.Background(), &Config{
		Scope:       ScopeDataReadOnly,
		TokenSource: base,
	})
	req.NoError(err)

	// no token until the first refresh
	req.Empty(src.Token())

	req.NoError(src.Refresh(context.Background()))
	req.Equal("token-1", src.Token())
	req.Equal(int32(1), base.calls.Load())

	// still fresh, no second fetch
	req.NoError(src.Refresh(context.Background()))
	req.Equal("token-1", src.Token())
	req.Equal(int32(1), base.calls.Load())
}

func TestSource_Refresh_Expired(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	// expires inside the renewal margin
	base := &countingSource{expiry: time.Now().Add(time.Second)}
	src, err := New(context.Background(), &Config{
		Scope:       ScopeData,
		TokenSource: base,
	})
	req.NoError(err)

	req.NoError(src.Refresh(context.Background()))
	req.NoError(src.Refresh(context.Background()))
	req.Equal(int32(2), base.calls.Load())
	req.Equal("token-2", src.Token())
}

func TestSource_Refresh_Error(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	base := &countingSource{err: errors.New("metadata server unreachable")}
	src, err := New(context.Background(), &Config{
		Scope:       ScopeData,
		TokenSource: base,
	})
	req.NoError(err)

	err = src.Refresh(context.Background())
	req.Error(err)
	req.Contains(err.Error(), "metadata server unreachable")
	req.Empty(src.Token())
}

func TestSource_Refresh_Coalesces(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	gate := make(chan struct{})
	base := &countingSource{expiry: time.Now().Add(time.Hour), gate: gate}
	src, err := New(context.Background(), &Config{
		Scope:       ScopeData,
		TokenSource: base,
	})
	req.NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req.NoError(src.Refresh(context.Background()))
		}()
	}

	// let every goroutine pile up behind the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	req.Equal(int32(1), base.calls.Load())
	req.Equal("token-1", src.Token())
}
