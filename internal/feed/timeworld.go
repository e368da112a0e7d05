package feed

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/extrame/xls"
	"go.uber.org/zap"
)

// DefaultArchiveURL is the Timeworld remnants archive published for vendors.
const DefaultArchiveURL = "https://timeworld.ru/upload/files/ostatki.zip"

// Column captions in the remnants spreadsheet. The sheet carries a preamble
// before the header row, so columns are located by caption, not position.
const (
	colCode     = "Код"
	colQuantity = "Количество"
	colPrice    = "Цена"
)

// Timeworld downloads the vendor's zip archive and parses the legacy .xls
// sheet inside it into feed records.
type Timeworld struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

func NewTimeworld(url string, logger *zap.Logger) *Timeworld {
	if url == "" {
		url = DefaultArchiveURL
	}
	return &Timeworld{
		url:    url,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

func (t *Timeworld) Fetch(ctx context.Context) ([]Record, error) {
	archive, err := t.download(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed unavailable: %w", err)
	}
	sheet, err := extractXLS(archive)
	if err != nil {
		return nil, fmt.Errorf("feed archive: %w", err)
	}
	rows, err := readRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("feed sheet: %w", err)
	}
	records, err := recordsFromRows(rows)
	if err != nil {
		return nil, err
	}
	t.logger.Info("feed fetched",
		zap.String("url", t.url),
		zap.Int("records", len(records)))
	return records, nil
}

func (t *Timeworld) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return io.ReadAll(io.LimitReader(resp.Body, 64<<20))
}

// extractXLS returns the bytes of the first .xls entry in the archive.
func extractXLS(archive []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xls") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errors.New("no .xls entry")
}

func readRows(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// recordsFromRows locates the caption row and maps every following row with
// a non-empty code into a Record.
func recordsFromRows(rows [][]string) ([]Record, error) {
	header := -1
	var codeIdx, qtyIdx, priceIdx int
	for i, cells := range rows {
		ci, qi, pi := -1, -1, -1
		for j, c := range cells {
			switch strings.TrimSpace(c) {
			case colCode:
				ci = j
			case colQuantity:
				qi = j
			case colPrice:
				pi = j
			}
		}
		if ci >= 0 && qi >= 0 && pi >= 0 {
			header, codeIdx, qtyIdx, priceIdx = i, ci, qi, pi
			break
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("feed sheet: no header row with %s/%s/%s captions", colCode, colQuantity, colPrice)
	}

	var records []Record
	for _, cells := range rows[header+1:] {
		code := strings.TrimSpace(cellAt(cells, codeIdx))
		if code == "" {
			continue
		}
		records = append(records, Record{
			Code:     code,
			Quantity: strings.TrimSpace(cellAt(cells, qtyIdx)),
			Price:    strings.TrimSpace(cellAt(cells, priceIdx)),
		})
	}
	return records, nil
}

func cellAt(cells []string, i int) string {
	if i >= 0 && i < len(cells) {
		return cells[i]
	}
	return ""
}
