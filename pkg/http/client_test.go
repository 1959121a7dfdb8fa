package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Options(t *testing.T) {
	c := newClient(
		WithRequestTimeout(5*time.Second),
		WithMaxIdleConnsPerHost(200),
		WithTLSHandshakeTimeout(0),
	)

	assert.Equal(t, 5*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 200, tr.MaxIdleConnsPerHost)
	assert.Equal(t, 200, tr.MaxIdleConns)
	assert.Equal(t, 10*time.Second, tr.TLSHandshakeTimeout)
}

func TestNewClient_TransportOrder(t *testing.T) {
	var order []string
	wrap := func(name string) TransportFunc {
		return func(next http.RoundTripper) http.RoundTripper {
			order = append(order, name)
			return next
		}
	}

	newClient(WithTransport(wrap("first")), WithTransport(wrap("second")))
	assert.Equal(t, []string{"first", "second"}, order)
}
