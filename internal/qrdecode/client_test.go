package qrdecode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestDecodeSuccess(t *testing.T) {
	srv := serve(t, http.StatusOK,
		`[{"type":"qrcode","symbol":[{"seq":0,"data":"S1001|Jane Doe|jane@example.com","error":null}]}]`)
	defer srv.Close()

	got, err := New(srv.URL).Decode(context.Background(), strings.NewReader("png-bytes"), "id.png")
	require.NoError(t, err)
	assert.Equal(t, "S1001|Jane Doe|jane@example.com", got)
}

func TestDecodeNoQRCode(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"symbol error", `[{"type":"qrcode","symbol":[{"seq":0,"data":null,"error":"could not find QR code"}]}]`},
		{"empty symbols", `[{"type":"qrcode","symbol":[]}]`},
		{"empty response", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)
			defer srv.Close()
			_, err := New(srv.URL).Decode(context.Background(), strings.NewReader("img"), "id.png")
			assert.ErrorIs(t, err, ErrNoQRCode)
		})
	}
}

func TestDecodeTransportFailureIsNotNoQRCode(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, "upstream broken")
	defer srv.Close()

	_, err := New(srv.URL).Decode(context.Background(), strings.NewReader("img"), "id.png")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoQRCode)
}

func TestNewDefaultsEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, New("").Endpoint)
}
