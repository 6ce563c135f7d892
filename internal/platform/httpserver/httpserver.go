package httpserver

import (
	"net/http"
	"time"
)

// Gateway requests are small JSON bodies in and out; the slow part is always
// the upstream round trip, which the handler middleware caps at 30s. The
// write timeout sits above that cap so a timed-out handler still gets to
// render its error response instead of a severed connection.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 45 * time.Second
	idleTimeout       = 60 * time.Second
)

// New builds the gateway's HTTP server.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
