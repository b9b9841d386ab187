package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LogConfig{Level: "warn"}, &buf)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l = New(config.LogConfig{Level: "bogus"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(AccessLog(New(config.LogConfig{Level: "info"}, &buf)))
	r.GET("/tours/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tours/7", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "http", line[COMPONENT])
	assert.Equal(t, "/tours/:id", line[ROUTE])
	assert.Equal(t, float64(404), line[STATUS])
}
