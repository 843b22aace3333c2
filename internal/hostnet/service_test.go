package hostnet

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulselogic/internal/domain"
)

func testConfig() Config {
	return Config{
		Timeout:      2 * time.Second,
		RetryMax:     0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
		MaxBodyBytes: 1024,
	}
}

func TestInitReturnsNetworkModule(t *testing.T) {
	module, err := Init(testConfig(), nil)()
	require.NoError(t, err)
	assert.Equal(t, domain.CapabilityNetwork, module.Kind())
}

func TestFetchSendsMethodHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "token", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "PulseLogic/"))
		assert.Equal(t, `{"a":1}`, string(body))

		w.Header().Set("X-Trace", "abc")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer srv.Close()

	resp, err := New(testConfig(), nil).Fetch(FetchRequest{
		Method:  "post",
		URL:     srv.URL + "/cases",
		Headers: map[string]string{"Authorization": "token"},
		Body:    `{"a":1}`,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "Created", resp.StatusText)
	assert.Equal(t, "abc", resp.Headers["X-Trace"])
	assert.Equal(t, "created", resp.Body)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.RetryMax = 2
	resp, err := New(cfg, nil).Fetch(FetchRequest{URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := New(testConfig(), nil).Fetch(FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Status)
}

func TestFetchRejectsUnsupportedScheme(t *testing.T) {
	svc := New(testConfig(), nil)
	for _, raw := range []string{"file:///etc/passwd", "ftp://example.com", "javascript:alert(1)"} {
		_, err := svc.Fetch(FetchRequest{URL: raw})
		assert.ErrorIs(t, err, ErrUnsupportedScheme, raw)
	}
}

func TestFetchEnforcesBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	_, err := New(testConfig(), nil).Fetch(FetchRequest{URL: srv.URL})
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestDownloadReplacesDestination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "downloads", "file.bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	n, err := New(testConfig(), nil).Download(srv.URL, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len("payload")), n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	_, err = os.Stat(dest + ".download")
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "file.bin")
	_, err := New(testConfig(), nil).Download(srv.URL, dest)
	require.Error(t, err)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}
