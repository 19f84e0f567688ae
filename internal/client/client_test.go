package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/internal/mockserver"
	"github.com/mabhi256/medi/internal/upload"
)

var discard = slog.New(slog.DiscardHandler)

func writeUpload(t *testing.T, name, content string) *upload.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := upload.NewGate(0).Select(path)
	require.NoError(t, err)
	return f
}

func TestAnalyzeAgainstMockServer(t *testing.T) {
	srv := httptest.NewServer(mockserver.New(mockserver.Options{}, discard).Routes())
	defer srv.Close()

	c := New(srv.URL+"/", nil, discard)
	assert.Equal(t, srv.URL, c.Endpoint())

	result, err := c.Analyze(context.Background(), writeUpload(t, "labs.txt", "Shortness of breath and high blood pressure"))
	require.NoError(t, err)
	assert.Contains(t, result.Cardiologist, "home readings")
	assert.Contains(t, result.Pulmonologist, "spirometry")
	assert.Contains(t, result.Team, "labs.txt")
}

func TestAnalyzeSendsMultipartFile(t *testing.T) {
	var gotName, gotContent, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, AnalyzePath, r.URL.Path)
		gotReqID = r.Header.Get("X-Request-ID")

		f, header, err := r.FormFile(FileFieldName)
		if assert.NoError(t, err) {
			defer f.Close()
			b, _ := io.ReadAll(f)
			gotName, gotContent = header.Filename, string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"cardiologist_report":"c","psychologist_report":"p","pulmonologist_report":"l","multidisciplinary_summary":"t","extra":1}`)
	}))
	defer srv.Close()

	result, err := New(srv.URL, nil, discard).Analyze(context.Background(), writeUpload(t, "report.pdf", "%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", gotName)
	assert.Equal(t, "%PDF-1.4", gotContent)
	_, err = uuid.Parse(gotReqID)
	assert.NoError(t, err, "X-Request-ID is a uuid")
	assert.Equal(t, &analysis.Result{Cardiologist: "c", Psychologist: "p", Pulmonologist: "l", Team: "t"}, result)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		rateLimit  bool
		wantStatus int
		wantDetail string
		invalid    bool
	}{
		{name: "rate limited", status: 429, body: `{"error":"Rate limit exceeded: 5 per 1 day"}`, rateLimit: true},
		{name: "detail string", status: 500, body: `{"detail":"model unavailable"}`, wantStatus: 500, wantDetail: "model unavailable"},
		{name: "detail not a string", status: 422, body: `{"detail":[{"loc":["file"]}]}`, wantStatus: 422},
		{name: "not json", status: 502, body: `<html>bad gateway</html>`, wantStatus: 502},
		{name: "missing field", status: 200, body: `{"cardiologist_report":"c"}`, invalid: true},
		{name: "wrong type", status: 200, body: `{"cardiologist_report":1,"psychologist_report":"p","pulmonologist_report":"l","multidisciplinary_summary":"t"}`, invalid: true},
		{name: "garbage 2xx", status: 201, body: `nope`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil, discard).Analyze(context.Background(), writeUpload(t, "a.txt", "x"))
			require.Error(t, err)

			switch {
			case tt.rateLimit:
				assert.ErrorIs(t, err, analysis.ErrRateLimited)
			case tt.invalid:
				assert.ErrorIs(t, err, errInvalidResult)
				assert.Equal(t, analysis.FallbackMessage, analysis.FailureMessage(err))
			default:
				var svcErr *analysis.ServiceError
				require.True(t, errors.As(err, &svcErr))
				assert.Equal(t, tt.wantStatus, svcErr.Status)
				assert.Equal(t, tt.wantDetail, svcErr.Detail)
			}
		})
	}
}

func TestAnalyzeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil, discard).Analyze(context.Background(), writeUpload(t, "a.txt", "x"))
	require.Error(t, err)
	assert.Equal(t, analysis.FallbackMessage, analysis.FailureMessage(err))
}

func TestControllerEndToEnd(t *testing.T) {
	srv := httptest.NewServer(mockserver.New(mockserver.Options{
		FailStatus: http.StatusServiceUnavailable,
		FailDetail: "model unavailable",
	}, discard).Routes())
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	ctrl := analysis.NewController(upload.NewGate(0), New(srv.URL, nil, discard), discard)
	_, err := ctrl.Select(path)
	require.NoError(t, err)

	state, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, analysis.PhaseFailed, state.Phase)
	assert.Equal(t, "model unavailable", state.Message)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(mockserver.New(mockserver.Options{}, discard).Routes())
	defer srv.Close()

	msg, err := New(srv.URL, nil, discard).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Medi Analyser server is running", msg)
}
