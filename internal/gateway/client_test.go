package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigportal/internal/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T, credential string) *registry.Registry {
	t.Helper()
	r, err := registry.New([]registry.Product{
		{ID: "dear-sa", Name: "DearSA", Credential: credential},
	})
	require.NoError(t, err)
	return r
}

func testConfig(baseURL string) Config {
	return Config{
		Endpoints:     DirectEndpoints(baseURL),
		LookupTimeout: 2 * time.Second,
		ProbeTimeout:  2 * time.Second,
		MaxRetries:    2,
		RetryDelay:    time.Millisecond,
	}
}

// countingDoer counts calls and delegates to fn.
type countingDoer struct {
	calls int32
	fn    func(*http.Request) (*http.Response, error)
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&d.calls, 1)
	return d.fn(req)
}

func TestLookupClientUnconfiguredProductSkipsNetwork(t *testing.T) {
	spy := &countingDoer{fn: func(*http.Request) (*http.Response, error) {
		t.Fatal("no upstream call expected for an unconfigured product")
		return nil, nil
	}}
	client := New(testConfig("http://unused.invalid"), testRegistry(t, ""), testLogger(), WithDoer(spy))

	result := client.LookupClient(context.Background(), NewLookupRequest("7608210157080"))

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, ErrorConfig, result.Category)
	assert.Equal(t, "API key for DearSA is not configured", result.Message)
	assert.Equal(t, int32(0), atomic.LoadInt32(&spy.calls))
}

func TestLookupClientSuccess(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/workflow/people/details", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"record": {"id_number": "7608210157080", "name": "John"}}`))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), testRegistry(t, "secret-key"), testLogger())
	result := client.LookupClient(context.Background(), NewLookupRequest("7608210157080"))

	require.True(t, result.IsSuccess())
	assert.True(t, HasRecord(result.Data))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestLookupClientHTTPErrorIsFinal(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, `{"message": "internal failure"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), testRegistry(t, "secret-key"), testLogger())
	result := client.LookupClient(context.Background(), NewLookupRequest("7608210157080"))

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, ErrorHTTP, result.Category)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	// A received status never consumes retry budget.
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestLookupClientRetriesTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"record": {"id_number": "7608210157080"}}`))
	}))
	defer srv.Close()

	real := &http.Client{}
	flaky := &countingDoer{}
	flaky.fn = func(req *http.Request) (*http.Response, error) {
		if atomic.LoadInt32(&flaky.calls) <= 2 {
			return nil, errors.New("connection refused")
		}
		return real.Do(req)
	}

	client := New(testConfig(srv.URL), testRegistry(t, "secret-key"), testLogger(), WithDoer(flaky))
	result := client.LookupClient(context.Background(), NewLookupRequest("7608210157080"))

	require.True(t, result.IsSuccess(), "two failures fit inside a retry budget of two")
	assert.Equal(t, int32(3), atomic.LoadInt32(&flaky.calls))
}

func TestLookupClientExhaustedRetries(t *testing.T) {
	down := &countingDoer{fn: func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}

	client := New(testConfig("http://unused.invalid"), testRegistry(t, "secret-key"), testLogger(), WithDoer(down))
	result := client.LookupClient(context.Background(), NewLookupRequest("7608210157080"))

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, ErrorTransport, result.Category)
	// Initial attempt plus two retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&down.calls))
}

func TestLookupClientTimeoutIsDistinguishable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.LookupTimeout = 50 * time.Millisecond
	cfg.MaxRetries = 0

	client := New(cfg, testRegistry(t, "secret-key"), testLogger())
	result := client.LookupClient(context.Background(), NewLookupRequest("7608210157080"))

	assert.Equal(t, ResultError, result.Kind)
	assert.Equal(t, ErrorTimeout, result.Category)
	assert.Contains(t, result.Message, "Request timed out")
}

func TestProbeStatusOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/lookups", r.URL.Path)
		assert.Equal(t, "Bank", r.URL.Query().Get("type"))
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), testRegistry(t, "secret-key"), testLogger())
	status := client.ProbeStatus(context.Background())

	assert.Equal(t, StatusOK, status.Status)
	assert.Equal(t, "API is responding normally", status.Message)
	assert.NotZero(t, status.Timestamp)
}

func TestProbeStatusUnconfiguredSkipsNetwork(t *testing.T) {
	spy := &countingDoer{fn: func(*http.Request) (*http.Response, error) {
		t.Fatal("no upstream call expected for an unconfigured product")
		return nil, nil
	}}

	client := New(testConfig("http://unused.invalid"), testRegistry(t, ""), testLogger(), WithDoer(spy))
	status := client.ProbeStatus(context.Background())

	assert.Equal(t, StatusError, status.Status)
	assert.Equal(t, "API key for DearSA is not configured", status.Message)
	assert.Equal(t, int32(0), atomic.LoadInt32(&spy.calls))
}

func TestProbeStatusHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), testRegistry(t, "secret-key"), testLogger())
	status := client.ProbeStatus(context.Background())

	assert.Equal(t, StatusError, status.Status)
	assert.Equal(t, "API returned status 502", status.Message)
}

func TestMockDoerKnownClient(t *testing.T) {
	client := New(testConfig("http://mock.invalid"), testRegistry(t, "mock"), testLogger(), WithDoer(MockDoer{}))

	result := client.LookupClient(context.Background(), NewLookupRequest("7608210157080"))
	require.True(t, result.IsSuccess())
	assert.True(t, HasRecord(result.Data))

	miss := client.LookupClient(context.Background(), NewLookupRequest("9999999999999"))
	require.True(t, miss.IsSuccess())
	assert.False(t, HasRecord(miss.Data))
}
