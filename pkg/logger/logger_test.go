package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jhoicas/bodega-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Service: "bodega-api", Out: &buf})

	l.Info().Str("invoice_id", "inv-1").Msg("factura creada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "bodega-api", line["service"])
	assert.Equal(t, "inv-1", line["invoice_id"])
	assert.Equal(t, "factura creada", line["message"])
}

func TestNew_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Out: &buf})

	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	stockLog := l.Component("stock")
	stockLog.Warn().Msg("sale")
	assert.Contains(t, buf.String(), `"component":"stock"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.ErrorLevel, logger.ParseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("cualquiera"))
}
