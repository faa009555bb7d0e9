package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowFallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before))
}

func TestPinnedValues(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := WithTime(context.Background(), fixed)
	ctx = WithActorID(ctx, "scout-7")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithClientMetadata(ctx, "10.1.2.3", "curl/8.0")

	assert.Equal(t, fixed, Now(ctx))
	assert.Equal(t, "scout-7", ActorID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "10.1.2.3", ClientIP(ctx))
	assert.Equal(t, "curl/8.0", UserAgent(ctx))
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ActorID(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, UserAgent(ctx))
}
