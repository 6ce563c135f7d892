package httpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesGatewayTimeouts(t *testing.T) {
	srv := New(":8080", nil)

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
	assert.Greater(t, srv.WriteTimeout, 30*time.Second,
		"the handler timeout must fire before the connection is severed")
}
