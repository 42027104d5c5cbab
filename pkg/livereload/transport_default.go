//go:build !zmq && !nng
// +build !zmq,!nng

package livereload

// NewSocketFactory returns the transport selected at build time.
func NewSocketFactory() (SocketFactory, error) {
	return nil, ErrNoTransport
}
