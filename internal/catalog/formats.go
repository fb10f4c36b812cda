package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vytor/vocabquiz/internal/models"
	"github.com/xuri/excelize/v2"
)

// Tabular catalogs use the column order word, meaning, example, difficulty.
// A first row whose first cell is "word" is treated as a header.
const (
	colWord = iota
	colMeaning
	colExample
	colDifficulty
)

func parseJSON(data []byte) ([]models.VocabItem, error) {
	var items []models.VocabItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func parseCSV(r io.Reader) ([]models.VocabItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows), nil
}

func parseXLSX(r io.Reader) ([]models.VocabItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return fromRows(rows), nil
}

func fromRows(rows [][]string) []models.VocabItem {
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "word") {
		rows = rows[1:]
	}

	items := make([]models.VocabItem, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		items = append(items, models.VocabItem{
			Word:       cell(row, colWord),
			Meaning:    cell(row, colMeaning),
			Example:    cell(row, colExample),
			Difficulty: models.Difficulty(cell(row, colDifficulty)),
		})
	}
	return items
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
