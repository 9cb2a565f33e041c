package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsAppliesTimeouts(t *testing.T) {
	cfg := Config{
		URL:          "redis://localhost:6379/2",
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 4 * time.Second,
	}
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
	assert.Equal(t, 4*time.Second, opts.WriteTimeout)
}

func TestOptionsRejectsBadURL(t *testing.T) {
	cfg := Config{URL: "http://not-redis"}
	_, err := cfg.Options()
	assert.Error(t, err)
}

func TestNewPings(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := Config{URL: "redis://" + mr.Addr()}

	client, err := cfg.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	_, err = (&Config{URL: "redis://" + mr.Addr(), DialTimeout: 100 * time.Millisecond}).New(context.Background())
	assert.Error(t, err)
}
