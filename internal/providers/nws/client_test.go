package nws

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"medi-forecast/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingBody records how often the response body is closed
type countingBody struct {
	io.Reader
	closes *atomic.Int32
}

func (b countingBody) Close() error {
	b.closes.Add(1)
	return nil
}

// failingReader returns its error on the first read
type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

// stubTransport answers every request with a fixed status and body
type stubTransport struct {
	status int
	body   io.Reader
	closes *atomic.Int32
	last   *http.Request
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.last = req
	return &http.Response{
		StatusCode: s.status,
		Header:     http.Header{"Content-Type": []string{"application/geo+json"}},
		Body:       countingBody{Reader: s.body, closes: s.closes},
		Request:    req,
	}, nil
}

func TestClient_GetJSON(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{
			name:   "object",
			status: http.StatusOK,
			body:   `{"properties":{"periods":[{"temperature":60}]}}`,
			want:   `{"properties":{"periods":[{"temperature":60}]}}`,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>oops</html>`,
			wantErr: ErrDecode,
		},
		{
			name:    "json array",
			status:  http.StatusOK,
			body:    `[1,2,3]`,
			wantErr: ErrDecode,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"title":"Not Found"}`,
			wantErr: ErrStatus,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"title":"Unexpected Problem"}`,
			wantErr: ErrStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closes := &atomic.Int32{}
			transport := &stubTransport{status: tt.status, body: strings.NewReader(tt.body), closes: closes}
			client := NewClient(newTestLogger(), WithHTTPClient(&http.Client{Transport: transport}))

			doc, err := client.GetJSON(context.Background(), "https://api.weather.gov/anything")

			assert.Equal(t, int32(1), closes.Load(), "body must be closed exactly once")
			require.NotNil(t, transport.last)
			assert.Equal(t, "application/json", transport.last.Header.Get("Accept"))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.JSON())
		})
	}
}

func TestClient_GetJSON_ReadFailureClosesBody(t *testing.T) {
	closes := &atomic.Int32{}
	readErr := errors.New("connection reset by peer")
	transport := &stubTransport{status: http.StatusOK, body: failingReader{err: readErr}, closes: closes}
	client := NewClient(newTestLogger(), WithHTTPClient(&http.Client{Transport: transport}))

	doc, err := client.GetJSON(context.Background(), "https://api.weather.gov/anything")

	require.ErrorIs(t, err, ErrRead)
	require.ErrorIs(t, err, readErr)
	assert.True(t, IsIOError(err))
	assert.Nil(t, doc)
	assert.Equal(t, int32(1), closes.Load())
}

func TestClient_GetJSON_StatusErrorDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("x", 4*maxErrorBody)))
	}))
	defer server.Close()

	client := NewClient(newTestLogger())
	_, err := client.GetJSON(context.Background(), server.URL+"/gridpoints/MTR/84,126/forecast/hourly")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Len(t, statusErr.Body, maxErrorBody)
	assert.True(t, IsIOError(err))
}

func TestClient_GetJSON_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	unreachable := server.URL
	server.Close()

	client := NewClient(newTestLogger())
	doc, err := client.GetJSON(context.Background(), unreachable+"/points/37.8,-122.47")

	require.ErrorIs(t, err, ErrTransport)
	assert.True(t, IsIOError(err))
	assert.Nil(t, doc)
}

func TestClient_GetJSON_MalformedURL(t *testing.T) {
	client := NewClient(newTestLogger())

	_, err := client.GetJSON(context.Background(), "://no-scheme")

	require.ErrorIs(t, err, ErrTransport)
}

func TestClient_GetJSON_DecodeIsNotIOError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(newTestLogger())
	_, err := client.GetJSON(context.Background(), server.URL)

	require.ErrorIs(t, err, ErrDecode)
	assert.False(t, IsIOError(err))
}

func TestClient_GetPoint(t *testing.T) {
	var gotPath, gotAccept, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(`{"properties":{"gridId":"MTR","forecastHourly":"https://api.weather.gov/gridpoints/MTR/84,126/forecast/hourly"}}`))
	}))
	defer server.Close()

	client := NewClient(newTestLogger(), WithBaseURL(server.URL), WithUserAgent("test-agent (test@example.com)"))

	doc, err := client.GetPoint(context.Background(), types.NewCoords(37.80, -122.47))
	require.NoError(t, err)

	assert.Equal(t, "/points/37.8,-122.47", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "test-agent (test@example.com)", gotUserAgent)

	hourly, err := doc.String("properties", "forecastHourly")
	require.NoError(t, err)
	assert.Equal(t, "https://api.weather.gov/gridpoints/MTR/84,126/forecast/hourly", hourly)
}

func TestClient_GetPoint_BaseURLWithPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(newTestLogger(), WithBaseURL(server.URL+"/proxy/nws/"))

	_, err := client.GetPoint(context.Background(), types.NewCoords(39.11539, -107.6584))
	require.NoError(t, err)
	assert.Equal(t, "/proxy/nws/points/39.11539,-107.6584", gotPath)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(newTestLogger(), WithBaseURL(""), WithUserAgent(""), WithHTTPClient(nil))

	assert.Equal(t, baseURL, client.baseURL)
	assert.Equal(t, defaultUserAgent, client.userAgent)
	assert.NotNil(t, client.httpClient)
	assert.Zero(t, client.httpClient.Timeout)
}
