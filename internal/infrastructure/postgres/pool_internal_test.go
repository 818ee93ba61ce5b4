package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/estoque-api/pkg/config"
)

func TestLockTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, lockTimeout(config.DBConfig{}))
	assert.Equal(t, 250*time.Millisecond, lockTimeout(config.DBConfig{LockTimeout: 250 * time.Millisecond}))
}

func TestFirstIPv4_Literals(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "10.0.0.7", firstIPv4(ctx, "10.0.0.7"))
	assert.Equal(t, "", firstIPv4(ctx, "::1"))
}
