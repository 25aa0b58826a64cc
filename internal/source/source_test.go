package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error

	gotURL string
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.gotURL = req.URL.String()
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

// recordingLimiter counts Acquire calls so tests can assert adapters throttle
// before touching the network.
type recordingLimiter struct {
	calls []string
	err   error
}

func (r *recordingLimiter) Acquire(_ context.Context, sourceID string) error {
	r.calls = append(r.calls, sourceID)
	return r.err
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (err: %v)", got, kind, err)
	}
}
