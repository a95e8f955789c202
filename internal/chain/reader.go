// Package chain turns raw option-chain exports into typed gex.Row values.
package chain

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
)

// PreambleRows is the number of report lines ahead of the header in a broker export.
const PreambleRows = 3

// Header names and the first column index each is searched from. Calls sit left
// of the strike column and puts right of it, so both legs share header names.
type column struct {
	name string
	from int
}

var (
	colExpiration = column{"Expiration Date", 0}
	colCallGamma  = column{"Gamma", 9}
	colCallOI     = column{"Open Interest", 10}
	colStrike     = column{"Strike", 11}
	colPutGamma   = column{"Gamma", 20}
	colPutOI      = column{"Open Interest", 21}
)

type layout struct {
	expiration, callGamma, callOI, strike, putGamma, putOI int
}

func (l layout) width() int {
	return max(l.expiration, l.callGamma, l.callOI, l.strike, l.putGamma, l.putOI) + 1
}

// ReadFile reads a chain export, choosing the format from the extension.
func ReadFile(path string) ([]gex.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return ReadJSONL(file)
	case ".csv":
		return ReadCSV(file)
	default:
		return nil, fmt.Errorf("unsupported chain file extension: %s", filepath.Ext(path))
	}
}

// ReadCSV parses a broker option-chain CSV export.
func ReadCSV(r io.Reader) ([]gex.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for i := 0; i < PreambleRows; i++ {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return nil, ErrNoHeader
			}
			return nil, fmt.Errorf("reading preamble: %w", err)
		}
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	lay, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []gex.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if len(record) < lay.width() {
			return nil, &ParseError{
				Line:   line,
				Column: "*",
				Value:  strings.Join(record, ","),
				Err:    fmt.Errorf("expected at least %d fields, got %d", lay.width(), len(record)),
			}
		}

		row, err := parseRecord(record, lay, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadJSONL parses one JSON-encoded gex.Row per line.
func ReadJSONL(r io.Reader) ([]gex.Row, error) {
	var rows []gex.Row
	scanner := bufio.NewScanner(r)

	// Increase buffer size for large lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var row gex.Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

func locateColumns(header []string) (layout, error) {
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var missing []string
	find := func(c column) int {
		for i := c.from; i < len(header); i++ {
			if header[i] == c.name {
				return i
			}
		}
		missing = append(missing, fmt.Sprintf("%s (from index %d)", c.name, c.from))
		return -1
	}

	lay := layout{
		expiration: find(colExpiration),
		callGamma:  find(colCallGamma),
		callOI:     find(colCallOI),
		strike:     find(colStrike),
		putGamma:   find(colPutGamma),
		putOI:      find(colPutOI),
	}
	if len(missing) > 0 {
		return layout{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return lay, nil
}

func parseRecord(record []string, lay layout, line int) (gex.Row, error) {
	var (
		row gex.Row
		err error
	)

	row.Expiration = strings.TrimSpace(record[lay.expiration])
	if row.Strike, err = parseFloat(record[lay.strike]); err != nil {
		return row, &ParseError{Line: line, Column: "Strike", Value: record[lay.strike], Err: err}
	}
	if row.CallGamma, err = parseFloat(record[lay.callGamma]); err != nil {
		return row, &ParseError{Line: line, Column: "Call Gamma", Value: record[lay.callGamma], Err: err}
	}
	if row.CallOpenInterest, err = parseCount(record[lay.callOI]); err != nil {
		return row, &ParseError{Line: line, Column: "Call Open Interest", Value: record[lay.callOI], Err: err}
	}
	if row.PutGamma, err = parseFloat(record[lay.putGamma]); err != nil {
		return row, &ParseError{Line: line, Column: "Put Gamma", Value: record[lay.putGamma], Err: err}
	}
	if row.PutOpenInterest, err = parseCount(record[lay.putOI]); err != nil {
		return row, &ParseError{Line: line, Column: "Put Open Interest", Value: record[lay.putOI], Err: err}
	}

	return row, nil
}

func cleanNumber(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(cleanNumber(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

// parseCount accepts integers and integral floats such as "12.0".
func parseCount(s string) (int64, error) {
	clean := cleanNumber(s)
	if n, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a whole number")
	}
	return int64(f), nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
