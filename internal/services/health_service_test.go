package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	mr, rdb := newTestRedis(t)
	svc := NewHealthService(newTestDB(t), rdb, "test")

	got := svc.Check(context.Background())
	assert.True(t, got.OK)
	assert.Equal(t, "ok", got.DB)
	assert.Equal(t, "ok", got.Redis)
	assert.Equal(t, "test", got.Version)

	mr.Close()
	got = svc.Check(context.Background())
	assert.False(t, got.OK)
	assert.Equal(t, "ok", got.DB)
	assert.NotEqual(t, "ok", got.Redis)
}
