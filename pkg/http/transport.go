package http

import "net/http"

// headerTransport sets static headers (auth token, user agent) on every request
type headerTransport struct {
	headers   map[string]string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	for key, value := range t.headers {
		if reqCopy.Header.Get(key) == "" {
			reqCopy.Header.Set(key, value)
		}
	}

	return t.transport.RoundTrip(reqCopy)
}

func withHeader(key, value string) Option {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			headers:   map[string]string{key: value},
			transport: rt,
		}
	})
}

// WithAuthToken adds a bearer token; an empty token is a no-op
func WithAuthToken(token string) Option {
	if token == "" {
		return func(*clientConfig) {}
	}
	return withHeader("Authorization", "Bearer "+token)
}

func WithUserAgent(userAgent string) Option {
	return withHeader("User-Agent", userAgent)
}
