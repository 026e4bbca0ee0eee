package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	original := Log
	defer func() { Log = original }()

	t.Run("development config", func(t *testing.T) {
		require.NoError(t, Initialize("development", "debug"))
		assert.True(t, Log.Core().Enabled(zap.DebugLevel))
	})

	t.Run("production config honours level", func(t *testing.T) {
		require.NoError(t, Initialize("production", "warn"))
		assert.False(t, Log.Core().Enabled(zap.InfoLevel))
		assert.True(t, Log.Core().Enabled(zap.WarnLevel))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := Initialize("development", "loud")
		assert.Error(t, err)
	})
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	original := Log
	defer func() { Log = original }()

	core, logs := observer.New(zap.InfoLevel)
	Log = zap.New(core)

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping?x=1", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "/ping", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}
