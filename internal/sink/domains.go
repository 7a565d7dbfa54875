package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"prospect-engine/internal/domain"
)

// ReadDomains returns the domain column of a delimited input file, in file
// order. Cells are normalized to bare host names; blank cells are skipped.
func ReadDomains(path string) ([]domain.Domain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readDomains(f)
}

func readDomains(r io.Reader) ([]domain.Domain, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(h), "domain") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.New(`input has no "domain" column`)
	}

	var out []domain.Domain
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		d := domain.NormalizeDomain(rec[col])
		if d == "" {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
