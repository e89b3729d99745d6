package job

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"recordscrape/internal/batch"
	"recordscrape/internal/components/chrono"
	"recordscrape/internal/components/telemetry"
	"recordscrape/internal/config"
	libtelemetry "recordscrape/lib/telemetry"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server   *httptest.Server
	requests *int64
	dir      string
	config   config.Config
}

func newTestEnv(t testing.TB, source string) testEnv {
	t.Helper()

	var requests int64
	mux := http.NewServeMux()
	mux.HandleFunc("/brief", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		switch r.URL.Query().Get("ev_id") {
		case "missing":
			http.Redirect(w, r, "/search", http.StatusFound)
		case "blank":
			_, _ = w.Write([]byte("<html>nothing here</html>"))
		default:
			_, _ = w.Write([]byte(
				"<div id=\"narr\">\r\nNarrative for " + r.URL.Query().Get("ev_id") + ".\r\n</div>",
			))
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "events.txt")
	require.NoError(t, os.WriteFile(sourcePath, []byte(source), 0644))

	cfg, err := config.Config{
		SourceFile:       sourcePath,
		IdentifierColumn: "ev_id",
		DerivedColumn:    "Narrative",
		UrlFormula: &config.UrlFormula{
			Prefix: server.URL + "/brief?ev_id=",
			Suffix: "&key=1",
		},
		Extraction: config.Extraction{
			Start: `<div id="narr">`,
			End:   "</div>",
			Trim:  true,
		},
		RequestDelaySeconds: -1,
	}.WithDefaults()
	require.NoError(t, err)

	return testEnv{server: server, requests: &requests, dir: dir, config: cfg}
}

func TestJobRun(t *testing.T) {
	cleanup := libtelemetry.SetupForTesting("test:job")
	defer cleanup()

	env := newTestEnv(t, "ev_id\tcity\nA1\tSeattle\nmissing\tBoise\nblank\tReno\n")
	j, err := New(env.config, Options{Telemetry: &telemetry.MemoryAPI{}})
	require.NoError(t, err)
	defer j.Close()
	require.Len(t, j.RunID, 8)

	report, err := j.Run(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, report.Cancelled)
	require.Equal(t, filepath.Join(env.dir, "events.scraped.txt"), report.Destination)
	require.Equal(t, 1, report.Summary.Extracted)
	require.Equal(t, 2, report.Summary.Failed)

	contents, err := os.ReadFile(report.Destination)
	require.NoError(t, err)

	url := func(id string) string {
		return env.server.URL + "/brief?ev_id=" + id + "&key=1"
	}
	expected := "ev_id\tcity\tURL\tNarrative\n" +
		"A1\tSeattle\t" + url("A1") + "\tNarrative for A1.\n" +
		"missing\tBoise\t" + url("missing") + "\tcould not fetch " + url("missing") + ": redirected to /search (page not found for this identifier)\n" +
		"blank\tReno\t" + url("blank") + "\tcould not locate the expected boundaries for this record, check " + url("blank") + " manually\n"
	if diff := cmp.Diff(expected, string(contents)); diff != "" {
		t.Fatalf("destination mismatch (-want +got):\n%s", diff)
	}
}

func TestJobRunCancelledWritesPartialResult(t *testing.T) {
	env := newTestEnv(t, "ev_id\nA1\nA2\n")
	j, err := New(env.config, Options{Telemetry: &telemetry.MemoryAPI{}})
	require.NoError(t, err)
	defer j.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := j.Run(ctx, nil)
	require.NoError(t, err)
	require.True(t, report.Cancelled)
	require.Equal(t, 2, report.Summary.Pending)
	require.Equal(t, int64(0), atomic.LoadInt64(env.requests))

	contents, err := os.ReadFile(report.Destination)
	require.NoError(t, err)
	require.Equal(t, "ev_id\tURL\tNarrative\nA1\t\t\nA2\t\t\n", string(contents))
}

func TestJobCache(t *testing.T) {
	env := newTestEnv(t, "ev_id\nA1\nA2\n")
	env.config.Cache.File = filepath.Join(env.dir, "cache", "pages.db")

	for i := 0; i < 2; i++ {
		j, err := New(env.config, Options{Telemetry: &telemetry.MemoryAPI{}})
		require.NoError(t, err)

		report, err := j.Run(context.Background(), nil)
		require.NoError(t, err)
		require.Equal(t, 2, report.Summary.Extracted)
		require.NoError(t, j.Close())
	}
	require.Equal(t, int64(2), atomic.LoadInt64(env.requests))
}

func TestJobCacheExpiry(t *testing.T) {
	env := newTestEnv(t, "ev_id\nA1\n")
	env.config.Cache.File = filepath.Join(env.dir, "pages.db")
	env.config.Cache.MaxAgeSeconds = 60

	clock := chrono.NewManualImpl(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	run := func() {
		j, err := New(env.config, Options{Telemetry: &telemetry.MemoryAPI{}, Clock: clock})
		require.NoError(t, err)
		defer j.Close()
		report, err := j.Run(context.Background(), nil)
		require.NoError(t, err)
		require.Equal(t, 1, report.Summary.Extracted)
	}

	run()
	run()
	require.Equal(t, int64(1), atomic.LoadInt64(env.requests))

	clock.Advance(2 * time.Minute)
	run()
	require.Equal(t, int64(2), atomic.LoadInt64(env.requests))
}

func TestJobPreviewAndCheck(t *testing.T) {
	env := newTestEnv(t, "ev_id\nA1\n\nB2\n")
	j, err := New(env.config, Options{Telemetry: &telemetry.MemoryAPI{}})
	require.NoError(t, err)
	defer j.Close()

	ds, err := j.Load()
	require.NoError(t, err)
	rows := j.Preview(ds, 1)
	require.Len(t, rows, 1)
	require.Equal(t, env.server.URL+"/brief?ev_id=A1&key=1", rows[0].URL)
	require.NoError(t, rows[0].Err)

	result, err := j.Check(context.Background(), "Z9")
	require.NoError(t, err)
	require.Equal(t, batch.StateExtracted, result.State)
	require.Equal(t, "Narrative for Z9.", result.Text)

	// nothing was written
	_, err = os.Stat(env.config.DestinationFile)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	env := newTestEnv(t, "ev_id\nA1\n")
	env.config.Extraction.End = ""

	_, err := New(env.config, Options{})
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "extraction", cfgErr.Field)
}
