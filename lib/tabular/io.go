package tabular

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// normalizeNewlines turns CRLF and lone CR line endings into LF.
func normalizeNewlines(data []byte) []byte {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
}

// Load parses a delimited dataset whose first row is the header.
//
// A field is read as quoted only when it starts with a quote and the closing
// quote is followed by a delimiter or the end of the line, any other quote is
// part of the text. Blank lines are skipped.
func Load(r io.Reader, delimiter rune) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, bom)
	data = normalizeNewlines(data)

	sc := &scanner{data: string(data), delimiter: delimiter}
	header, ok := sc.next()
	if !ok {
		return nil, fmt.Errorf("dataset has no header row")
	}
	ds, err := NewDataset(header)
	if err != nil {
		return nil, err
	}

	line := 1
	for {
		row, ok := sc.next()
		if !ok {
			break
		}
		line++
		if len(row) > len(header) {
			slog.Warn(
				"dropping fields beyond the header",
				"row", line,
				"fields", len(row),
				"columns", len(header),
			)
			row = row[:len(header)]
		}
		rec := NewRecord()
		for i, value := range row {
			rec.Set(header[i], value)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// scanner splits LF terminated rows into fields.
type scanner struct {
	data      string
	pos       int
	delimiter rune
}

func (s *scanner) next() ([]string, bool) {
	for s.pos < len(s.data) && s.data[s.pos] == '\n' {
		s.pos++
	}
	if s.pos >= len(s.data) {
		return nil, false
	}

	var row []string
	for {
		field, last := s.field()
		row = append(row, field)
		if last {
			return row, true
		}
	}
}

// field reads one field and the separator after it, the bool is set when
// the separator ended the row.
func (s *scanner) field() (string, bool) {
	rest := s.data[s.pos:]
	if strings.HasPrefix(rest, `"`) {
		if value, n, ok := unquote(rest, s.delimiter); ok {
			s.pos += n
			return value, s.separator()
		}
	}

	n := strings.IndexFunc(rest, func(r rune) bool {
		return r == s.delimiter || r == '\n'
	})
	if n < 0 {
		n = len(rest)
	}
	s.pos += n
	return rest[:n], s.separator()
}

func (s *scanner) separator() bool {
	if s.pos >= len(s.data) {
		return true
	}
	r, size := utf8.DecodeRuneInString(s.data[s.pos:])
	s.pos += size
	return r == '\n'
}

// unquote reads the quoted field at the start of text and returns its value
// and the number of bytes consumed. ok is false when text does not hold a
// well formed quoted field.
func unquote(text string, delimiter rune) (value string, n int, ok bool) {
	var b strings.Builder
	i := 1
	for i < len(text) {
		j := strings.IndexByte(text[i:], '"')
		if j < 0 {
			return "", 0, false
		}
		b.WriteString(text[i : i+j])
		i += j + 1
		if i < len(text) && text[i] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		if i == len(text) || text[i] == '\n' || strings.HasPrefix(text[i:], string(delimiter)) {
			return b.String(), i, true
		}
		return "", 0, false
	}
	return "", 0, false
}

// quote returns field as it has to be written so Load reads it back
// unchanged. Fields are left bare unless they hold the delimiter or a line
// break, or would otherwise be mistaken for a quoted field.
func quote(field string, delimiter rune) string {
	needsQuotes := strings.ContainsRune(field, delimiter) || strings.ContainsAny(field, "\r\n")
	if !needsQuotes && strings.HasPrefix(field, `"`) {
		_, _, needsQuotes = unquote(field, delimiter)
	}
	if !needsQuotes {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func LoadFile(path string, delimiter rune) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := Load(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Write serializes the dataset with its header, missing fields are
// written as empty cells. Rows end with LF.
func (d *Dataset) Write(w io.Writer, delimiter rune) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, d.header, delimiter); err != nil {
		return err
	}
	for i := range d.Records {
		if err := writeRow(bw, d.Row(i), delimiter); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, row []string, delimiter rune) error {
	// a lone empty field would otherwise be a blank line
	if len(row) == 1 && row[0] == "" {
		_, err := w.WriteString("\"\"\n")
		return err
	}
	for i, field := range row {
		if i > 0 {
			if _, err := w.WriteRune(delimiter); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(field, delimiter)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// WriteFile writes the dataset to a temporary file next to path and renames
// it into place so readers never observe a half-written file.
func (d *Dataset) WriteFile(path string, delimiter rune) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".recordscrape-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, 0644)

	bw := bufio.NewWriter(tmp)
	if err := d.Write(bw, delimiter); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	syncDir(dir)
	return nil
}

func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}
