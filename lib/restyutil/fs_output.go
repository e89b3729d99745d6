package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes each message into its own file under a directory.
type FilesystemOutput struct {
	directory string
	prefix    string
}

// NewFilesystemOutput creates dir if needed. prefix keeps the dumps of
// different runs apart.
func NewFilesystemOutput(dir, prefix string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir, prefix: prefix}, nil
}

func (o FilesystemOutput) Path(id string) string {
	name := fmt.Sprintf("%s.txt", id)
	if o.prefix != "" {
		name = fmt.Sprintf("%s-%s.txt", o.prefix, id)
	}
	return filepath.Join(o.directory, name)
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(o.Path(id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
