package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, Config{Level: "debug", App: "estoque-api"})

	c := l.Component("ledger")
	c.Info().Int64("quantity", 5).Msg("entrada registrada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "estoque-api", line["app"])
	assert.Equal(t, "entrada registrada", line["message"])
	assert.EqualValues(t, 5, line["quantity"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, Config{Level: "WARN"})
	l.Info().Msg("oculto")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error().Msg("nada")
	c := l.Component("x")
	c.Error().Msg("nada")
}
