package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// CSVStore keeps each table in <dir>/<name>.csv.
type CSVStore struct{ dir string }

func NewCSVStore(dir string) (*CSVStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating data dir: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

// Path returns the file that backs a table.
func (s *CSVStore) Path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

func (s *CSVStore) Load(_ context.Context, name string) ([][]string, error) {
	path := s.Path(name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Error: %s not found.", filepath.Base(path))
		return [][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}

// Save writes the rows to a temp file and renames it over the table.
func (s *CSVStore) Save(_ context.Context, name string, rows [][]string) error {
	path := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRows(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error replacing %s: %w", path, err)
	}
	return nil
}

func (s *CSVStore) Close() error { return nil }

// writeRows is csv.Writer.WriteAll except for rows with a single empty
// field. The writer emits those as a blank line, which readers skip, so they
// are written as a quoted empty field instead. A row with no fields is
// stored the same way and loads back as [""].
func writeRows(f io.Writer, rows [][]string) error {
	w := csv.NewWriter(f)
	for _, row := range rows {
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			w.Flush()
			if err := w.Error(); err != nil {
				return err
			}
			if _, err := io.WriteString(f, "\"\"\n"); err != nil {
				return err
			}
			continue
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
