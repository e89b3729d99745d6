package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string   `json:"name"`
	Workers int      `json:"workers"`
	Tags    []string `json:"tags"`
}

func writeFile(t testing.TB, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "jobs/recordscrape.local.json5", LocalPath("jobs/recordscrape.json5"))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.json5")
	writeFile(t, path, `{
		// comments are allowed
		name: "bills",
		workers: 1,
		tags: ["a"],
	}`)
	writeFile(t, filepath.Join(dir, "job.local.json5"), `{ workers: 4 }`)

	config, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "bills", Workers: 4, Tags: []string{"a"}}, config)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "job.local.json5"), `{ name: "local" }`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "job.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", config.Name)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "job.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json5")
	writeFile(t, path, `{ name: `)

	_, err := ReadConfig[testConfig](path)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	writeFile(t, filepath.Join(root, "found.json5"), `{ name: "root" }`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	config, err := ReadRecursively[testConfig]("found.json5")
	require.NoError(t, err)
	require.Equal(t, "root", config.Name)
}
