package asr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(url string) *Connector {
	return NewConnector(config.ASRConnectorConfig{
		HTTPClientConfig:   config.HTTPClientConfig{Url: url},
		TranscribeEndpoint: "/transcribe",
	}, zap.NewNop())
}

func TestTranscribeBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "voice.ogg", header.Filename)
		assert.Equal(t, "OggS", string(data))
		assert.Len(t, r.FormValue("checksum"), 64)

		w.Write([]byte(`{"transcriptions":"  hello world \n"}`))
	}))
	defer srv.Close()

	text, err := newTestConnector(srv.URL).TranscribeBytes(context.Background(), []byte("OggS"), "voice.ogg")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestTranscribeBytes_Empty(t *testing.T) {
	_, err := newTestConnector("http://unused.invalid").TranscribeBytes(context.Background(), nil, "voice.ogg")
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestTranscribeBytes_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"model is loading"}`))
	}))
	defer srv.Close()

	_, err := newTestConnector(srv.URL).TranscribeBytes(context.Background(), []byte("OggS"), "voice.ogg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrTransportFailure))
	assert.Equal(t, "model is loading", entity.RawMessage(err))
}
