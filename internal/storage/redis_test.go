package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ddextract/internal/logging"
)

func TestNewRedisClient_Disabled(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		url  string
	}{
		{"empty url", ""},
		{"bad url", "not-a-redis-url"},
		{"unreachable", "redis://127.0.0.1:1/0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRedisClient(ctx, tt.url, time.Hour, logging.Discard())
			assert.False(t, r.Enabled())

			val, err := r.Get(ctx, "champion.json")
			assert.NoError(t, err)
			assert.Empty(t, val)

			assert.NoError(t, r.Set(ctx, "champion.json", "{}"))
			assert.NoError(t, r.Delete(ctx, "champion.json"))
			assert.NoError(t, r.Close())
		})
	}
}

func TestRedisClient_NilIsDisabled(t *testing.T) {
	var r *RedisClient
	assert.False(t, r.Enabled())

	val, err := r.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.Empty(t, val)
}
