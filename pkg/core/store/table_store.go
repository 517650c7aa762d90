package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/renameio/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a named slice of csv-tagged rows.
type Table struct {
	Name string
	Rows interface{} // slice of structs with csv tags
}

// File is a named raw artifact (markdown, PNG, HTML).
type File struct {
	Name string
	Data []byte
}

// TableStore persists tables as flat CSV files under a single data directory.
// Every write is staged first and published atomically, so a failed stage
// never leaves partial outputs behind.
type TableStore struct {
	dir string
}

// NewTableStore creates a store rooted at dir. The directory is created on
// the first write.
func NewTableStore(dir string) *TableStore {
	if dir == "" {
		dir = "data"
	}
	return &TableStore{dir: dir}
}

// Dir returns the data directory.
func (s *TableStore) Dir() string {
	return s.dir
}

// Path returns the absolute location of name inside the data directory.
func (s *TableStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether name is present in the data directory.
func (s *TableStore) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// ReadFile loads a raw artifact, mapping an absent file to *MissingInputError.
func (s *TableStore) ReadFile(name string) ([]byte, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingInputError{Path: path}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ReadTable decodes name into out (a pointer to a slice of csv-tagged structs)
// after checking that the header carries every required column.
func (s *TableStore) ReadTable(name string, required []string, out interface{}) error {
	data, err := s.ReadFile(name)
	if err != nil {
		return err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	header, err := readHeader(data)
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	if missing := missingColumns(header, required); len(missing) > 0 {
		return &SchemaError{File: name, Missing: missing}
	}

	if err := gocsv.UnmarshalBytes(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

func readHeader(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	return header, nil
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}

// WriteTables encodes every table in memory and then publishes all of them.
// If any table fails to encode, nothing is written.
func (s *TableStore) WriteTables(tables ...Table) error {
	files := make([]File, 0, len(tables))
	for _, t := range tables {
		data, err := gocsv.MarshalBytes(t.Rows)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", t.Name, err)
		}
		files = append(files, File{Name: t.Name, Data: data})
	}
	return s.WriteFiles(files...)
}

// WriteFiles stages every file as a pending temp file next to its target and
// renames them into place only once all of them were staged.
func (s *TableStore) WriteFiles(files ...File) error {
	if len(files) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", s.dir, err)
	}

	pending := make([]*renameio.PendingFile, 0, len(files))
	defer func() {
		for _, pf := range pending {
			// No-op for files already replaced.
			_ = pf.Cleanup()
		}
	}()

	for _, f := range files {
		pf, err := renameio.NewPendingFile(s.Path(f.Name), renameio.WithPermissions(0o644))
		if err != nil {
			return fmt.Errorf("failed to stage %s: %w", f.Name, err)
		}
		pending = append(pending, pf)
		if _, err := pf.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}

	for i, pf := range pending {
		if err := pf.CloseAtomicallyReplace(); err != nil {
			return fmt.Errorf("failed to publish %s: %w", files[i].Name, err)
		}
	}
	return nil
}
