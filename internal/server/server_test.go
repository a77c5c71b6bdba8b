package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	t.Run("zero config falls back to defaults", func(t *testing.T) {
		srv := New(Config{}, nil)

		assert.Equal(t, defaultAddr, srv.httpServer.Addr)
		assert.Equal(t, defaultReadTimeout, srv.httpServer.ReadTimeout)
		assert.Equal(t, defaultWriteTimeout, srv.httpServer.WriteTimeout)
		assert.Equal(t, defaultIdleTimeout, srv.httpServer.IdleTimeout)
	})

	t.Run("explicit settings are kept", func(t *testing.T) {
		srv := New(Config{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  15 * time.Second,
		}, nil)

		assert.Equal(t, ":8080", srv.httpServer.Addr)
		assert.Equal(t, 5*time.Second, srv.httpServer.ReadTimeout)
		assert.Equal(t, 10*time.Second, srv.httpServer.WriteTimeout)
		assert.Equal(t, 15*time.Second, srv.httpServer.IdleTimeout)
	})
}
