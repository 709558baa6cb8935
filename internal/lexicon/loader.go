package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbsmedya/gomask/internal/logger"
)

// Lexicon file names inside the configured directories.
const (
	FemaleFile         = "female_names.csv"
	MaleFile           = "male_names.csv"
	Name1File          = "name1.csv"
	Name2File          = "name2.csv"
	ClassificationFile = "classification.csv"
)

// Set is every word list the generators use, loaded once at startup.
type Set struct {
	Female         *Lexicon
	Male           *Lexicon
	Name1          *Lexicon
	Name2          *Lexicon
	Classification *Lexicon
}

// EmptySet returns a set with no entries.
func EmptySet() *Set {
	return &Set{
		Female:         New("female", nil),
		Male:           New("male", nil),
		Name1:          New("name1", nil),
		Name2:          New("name2", nil),
		Classification: New("classification", nil),
	}
}

// LoadSet reads the name and company CSV files. A missing file yields an
// empty list and a warning; a malformed file is an error.
func LoadSet(namesDir, companiesDir string, log *logger.Logger) (*Set, error) {
	if log == nil {
		log = logger.NewNop()
	}

	set := EmptySet()
	files := []struct {
		dest **Lexicon
		name string
		path string
	}{
		{&set.Female, "female", filepath.Join(namesDir, FemaleFile)},
		{&set.Male, "male", filepath.Join(namesDir, MaleFile)},
		{&set.Name1, "name1", filepath.Join(companiesDir, Name1File)},
		{&set.Name2, "name2", filepath.Join(companiesDir, Name2File)},
		{&set.Classification, "classification", filepath.Join(companiesDir, ClassificationFile)},
	}

	for _, f := range files {
		lex, err := LoadCSV(f.name, f.path)
		if errors.Is(err, os.ErrNotExist) {
			log.Warnw("Lexicon file not found", "lexicon", f.name, "path", f.path)
			continue
		}
		if err != nil {
			return nil, err
		}
		*f.dest = lex
		log.Debugw("Loaded lexicon", "lexicon", f.name, "entries", lex.Size(nil), "groups", len(lex.Groups()))
	}
	return set, nil
}

// LoadCSV reads a "group,name" CSV file with a header row.
func LoadCSV(name, path string) (*Lexicon, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lex, err := ReadCSV(name, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon %s: %w", path, err)
	}
	return lex, nil
}

// ReadCSV parses lexicon entries from r. The header must contain "group"
// and "name" columns, in any order.
func ReadCSV(name string, r io.Reader) (*Lexicon, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return New(name, nil), nil
	}
	if err != nil {
		return nil, err
	}

	groupIdx, nameIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "group":
			groupIdx = i
		case "name":
			nameIdx = i
		}
	}
	if groupIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("header must contain group and name columns, got %v", header)
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if groupIdx >= len(record) || nameIdx >= len(record) {
			continue
		}
		entries = append(entries, Entry{Group: record[groupIdx], Value: record[nameIdx]})
	}
	return New(name, entries), nil
}
