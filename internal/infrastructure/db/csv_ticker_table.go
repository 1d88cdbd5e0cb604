package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
)

var tickerColumns = []string{"symbol", "name", "date", "type"}

// ReadTickerTable loads the persisted ticker reference table.
// Columns are matched by header name, so a leading unnamed index column is ignored.
func ReadTickerTable(path string) ([]entity.Ticker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker table: %w", err)
	}
	defer f.Close()

	return DecodeTickerTable(f)
}

// DecodeTickerTable reads ticker rows from CSV
func DecodeTickerTable(r io.Reader) ([]entity.Ticker, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read ticker table header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["symbol"]; !ok {
		return nil, errors.New("ticker table has no symbol column")
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		v := strings.TrimSpace(record[i])
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}

	tickers := []entity.Ticker{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ticker table: %w", err)
		}

		t := entity.Ticker{
			Symbol: field(record, "symbol"),
			Name:   field(record, "name"),
			Type:   field(record, "type"),
		}
		if t.Symbol == "" {
			continue
		}
		if d := field(record, "date"); d != "" {
			date, err := entity.ParseDate(d)
			if err != nil {
				return nil, fmt.Errorf("ticker table line %d: %w", line, err)
			}
			t.Date = date
		}

		tickers = append(tickers, t)
	}

	return tickers, nil
}

// WriteTickerTable replaces the table at path, creating its directory if needed
func WriteTickerTable(path string, tickers []entity.Ticker) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ticker table directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tickers-*.csv")
	if err != nil {
		return fmt.Errorf("create ticker table: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeTickerTable(tmp, tickers); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write ticker table: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace ticker table: %w", err)
	}
	return nil
}

// EncodeTickerTable writes the header and one row per ticker
func EncodeTickerTable(w io.Writer, tickers []entity.Ticker) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(tickerColumns); err != nil {
		return fmt.Errorf("write ticker table: %w", err)
	}

	for _, t := range tickers {
		date := ""
		if !t.Date.IsZero() {
			date = entity.FormatDate(t.Date)
		}
		if err := writer.Write([]string{t.Symbol, t.Name, date, t.Type}); err != nil {
			return fmt.Errorf("write ticker table: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("write ticker table: %w", err)
	}
	return nil
}

// CSVTickerTable is the ticker reference table stored at Path
type CSVTickerTable struct {
	Path string
}

// Read loads every row of the table
func (t CSVTickerTable) Read() ([]entity.Ticker, error) {
	return ReadTickerTable(t.Path)
}

// Write replaces the table with tickers
func (t CSVTickerTable) Write(tickers []entity.Ticker) error {
	return WriteTickerTable(t.Path, tickers)
}
