package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("X-B", "2")
	headers.Add("X-A", "1")
	headers.Add("X-A", "3")

	require.Equal(t, "X-A: 1\nX-A: 3\nX-B: 2", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}

func TestInstrumentClientWritesMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>hello</p>"))
	}))
	defer server.Close()

	output, err := NewFilesystemOutput(filepath.Join(t.TempDir(), "dumps"), "run")
	require.NoError(t, err)

	client := resty.New()
	InstrumentClient(client, nil, output)

	_, err = client.R().Get(server.URL + "/page")
	require.NoError(t, err)

	contents, err := os.ReadFile(output.Path("1"))
	require.NoError(t, err)
	dump := string(contents)
	require.True(t, strings.HasPrefix(dump, "---- REQUEST ----"))
	require.Contains(t, dump, "GET "+server.URL+"/page")
	require.Contains(t, dump, "200 OK")
	require.Contains(t, dump, "<p>hello</p>")
}
