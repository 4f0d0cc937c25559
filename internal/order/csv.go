package order

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// utf8BOM is stripped from the start of uploads; spreadsheet exports add it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads an uploaded export into rows keyed by header. The first line
// must be the header; rows may have fewer or more fields than the header and
// blank rows are skipped. All errors are ValidationErrors.
func ParseCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return nil, &ValidationError{Field: "file", Reason: "failed to read file", Err: err}
	}
	if len(head) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "upload rejected", Err: ErrEmptyFile}
	}
	if len(head) == len(utf8BOM) && string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	content, err := io.ReadAll(br)
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: "failed to read file", Err: err}
	}
	if !utf8.Valid(content) {
		return nil, &ValidationError{Field: "file", Reason: "upload rejected", Err: ErrInvalidEncoding}
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ValidationError{Field: "file", Reason: "upload rejected", Err: ErrMissingHeader}
	}
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: "failed to read header", Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &ValidationError{Field: "file", Reason: fmt.Sprintf("malformed row %d", line), Err: err}
		}

		row := make(Row, len(header))
		empty := true
		for i, name := range header {
			if i >= len(fields) {
				break
			}
			v := strings.TrimSpace(fields[i])
			row[name] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "upload rejected", Err: ErrNoRecords}
	}
	return rows, nil
}
