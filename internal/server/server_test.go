package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestConfig_Address(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ":8080", DefaultConfig().Address())
	assert.Equal(t, "127.0.0.1:9000", Config{Host: "127.0.0.1", Port: 9000}.Address())
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	engine := gin.New()
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = freePort(t)
	srv := New(cfg, engine, nil)
	assert.Same(t, engine, srv.Engine())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	url := "http://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)) + "/ping"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test helper
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, srv.IsRunning())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, <-errCh)
	assert.False(t, srv.IsRunning())
}

func TestServer_StopWhenNotRunning(t *testing.T) {
	t.Parallel()

	assert.NoError(t, New(DefaultConfig(), gin.New(), nil).Stop(context.Background()))
}

func TestMaxRequestBodySize(t *testing.T) {
	t.Parallel()

	engine := gin.New()
	engine.Use(maxRequestBodySize(4))
	engine.POST("/x", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	small := httptest.NewRecorder()
	engine.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("abc")))
	assert.Equal(t, http.StatusOK, small.Code)

	large := httptest.NewRecorder()
	engine.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("abcdefgh")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, large.Code)
}
