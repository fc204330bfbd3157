package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// recordReader replays already-read CSV records. It satisfies
// gocsv.CSVReader so rows can be decoded after the header was rewritten.
type recordReader struct {
	records [][]string
	pos     int
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}

// readRecords loads the whole file, canonicalizes the header row and drops
// blank lines. The returned slice starts with the header.
func readRecords(in io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	records := make([][]string, 0, len(raw))
	for _, rec := range raw {
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return records, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = CanonicalHeader(h)
	}
	records[0] = header
	return records, nil
}

func isBlank(rec []string) bool {
	for _, field := range rec {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
