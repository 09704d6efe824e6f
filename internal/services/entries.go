package services

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"lumaregistrar/internal/domain"
)

// Entry list formats accepted by ParseEntries.
const (
	EntryFormatJSON = "json"
	EntryFormatCSV  = "csv"
)

// ParseEntries reads an entry list in the given format and trims every field. Only a list that
// cannot be decoded is rejected; a bad address is left for ProcessOne so it fails on its own.
// JSON input is an array of {"email","firstName","lastName"} objects. CSV input may start
// with a header row naming the columns; without one the columns are email, first name, last name.
func ParseEntries(r io.Reader, format string) ([]domain.EmailEntry, error) {
	var (
		entries []domain.EmailEntry
		err     error
	)
	switch strings.ToLower(format) {
	case EntryFormatJSON, "":
		entries, err = parseJSONEntries(r)
	case EntryFormatCSV:
		entries, err = parseCSVEntries(r)
	default:
		return nil, fmt.Errorf("%w: unsupported entry format %q", domain.ErrInvalidInput, format)
	}
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Email = strings.TrimSpace(entries[i].Email)
		entries[i].FirstName = strings.TrimSpace(entries[i].FirstName)
		entries[i].LastName = strings.TrimSpace(entries[i].LastName)
	}
	return entries, nil
}

func parseJSONEntries(r io.Reader) ([]domain.EmailEntry, error) {
	var entries []domain.EmailEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.EmailEntry{}, nil
		}
		return nil, fmt.Errorf("%w: invalid JSON entry list: %v", domain.ErrInvalidInput, err)
	}
	if entries == nil {
		entries = []domain.EmailEntry{}
	}
	return entries, nil
}

func parseCSVEntries(r io.Reader) ([]domain.EmailEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid CSV entry list: %v", domain.ErrInvalidInput, err)
	}

	cols := map[string]int{"email": 0, "first": 1, "last": 2}
	if len(records) > 0 {
		header, ok, err := csvColumns(records[0])
		if err != nil {
			return nil, err
		}
		if ok {
			cols = header
			records = records[1:]
		}
	}

	entries := make([]domain.EmailEntry, 0, len(records))
	for _, rec := range records {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		entries = append(entries, domain.EmailEntry{
			Email:     field(rec, cols["email"]),
			FirstName: field(rec, cols["first"]),
			LastName:  field(rec, cols["last"]),
		})
	}
	return entries, nil
}

// csvColumns maps a header row to column indexes. ok is false when no cell names a known column,
// i.e. the row is data.
func csvColumns(header []string) (cols map[string]int, ok bool, err error) {
	cols = map[string]int{"email": -1, "first": -1, "last": -1}
	for i, name := range header {
		key := strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
		switch key {
		case "email", "emailaddress":
			cols["email"] = i
		case "firstname", "first":
			cols["first"] = i
		case "lastname", "last":
			cols["last"] = i
		default:
			continue
		}
		ok = true
	}
	if !ok {
		return nil, false, nil
	}
	if cols["email"] < 0 {
		return nil, false, fmt.Errorf("%w: CSV header has no email column", domain.ErrInvalidInput)
	}
	return cols, true, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
