// Package http builds the shared HTTP client used for API calls and file
// transfers.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
)

const (
	idleConnTimeout       = 90 * time.Second
	tlsHandshakeTimeout   = 30 * time.Second
	expectContinueTimeout = 5 * time.Second
)

// NewPooledClient creates an HTTP client tuned for mixed use: small JSON
// calls and large file transfers over the same host.
//
// Key properties:
//   - connection reuse across repeated API calls and transfers
//   - no client-level timeout; operations bound themselves via context
//   - compression disabled, transferred payloads are opaque bytes
//   - HTTP/2 enabled, with a DISABLE_HTTP2 env toggle for debugging
func NewPooledClient() *nethttp.Client {
	tr := &nethttp.Transport{
		Proxy:                 nethttp.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		MaxConnsPerHost:       16,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
		DisableCompression:    true,
		ForceAttemptHTTP2:     true,
	}

	_ = http2.ConfigureTransport(tr)

	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	return &nethttp.Client{Transport: tr}
}
