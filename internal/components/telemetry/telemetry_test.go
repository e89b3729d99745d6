package telemetry

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	mem := &MemoryAPI{}
	api := NewScopedAPI("batch", mem)

	api.ReportBroken("fetch", "https://example.com")
	api.ReportCount("records", 3)

	broken := mem.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "batch: fetch", broken[0].ID)
	require.Equal(t, []any{"https://example.com"}, broken[0].Params)

	count, ok := mem.Count("batch: records")
	require.True(t, ok)
	require.Equal(t, int64(3), count)
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mem := &MemoryAPI{}
	client := resty.New()
	InstrumentResty(client, mem)

	_, err := client.R().Get(server.URL)
	require.NoError(t, err)

	debug := mem.Reports("debug")
	require.Len(t, debug, 2)
	require.Equal(t, report_resty_request, debug[0].ID)
	require.Equal(t, report_resty_response, debug[1].ID)
	require.Empty(t, mem.Reports("warning"))
}

func TestReportAttrs(t *testing.T) {
	attrs := reportAttrs("batch.fetch", []any{3, "https://example.com", errors.New("status 500")})
	require.Equal(t, []slog.Attr{
		slog.String("id", "batch.fetch"),
		slog.Any("params.0", 3),
		slog.Any("params.1", "https://example.com"),
		slog.String("err", "status 500"),
	}, attrs)

	require.Equal(t, []slog.Attr{slog.Any("params.0", "x")}, reportAttrs("", []any{"x"}))
}
