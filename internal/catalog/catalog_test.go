package catalog_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabquiz/internal/catalog"
	"github.com/vytor/vocabquiz/internal/errors"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
	"github.com/xuri/excelize/v2"
)

func quietContext() context.Context {
	return logger.NewContext(context.Background(), logger.Discard())
}

func TestCatalog_BuiltInWords(t *testing.T) {
	items, err := catalog.New("").Items(quietContext())
	require.NoError(t, err)

	counts := map[models.Difficulty]int{}
	seen := map[string]bool{}
	for _, item := range items {
		assert.NotEmpty(t, item.Word)
		assert.NotEmpty(t, item.Meaning)
		assert.True(t, item.Difficulty.Valid(), item.Word)
		assert.False(t, seen[item.Word], "duplicate word %q", item.Word)
		seen[item.Word] = true
		counts[item.Difficulty]++
	}
	for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		assert.GreaterOrEqual(t, counts[d], 4, "need enough %s words for four options", d)
	}
}

func TestCatalog_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"word": " cat ", "meaning": "small pet", "example": "", "difficulty": "EASY"},
		{"word": "cat", "meaning": "duplicate", "difficulty": "easy"},
		{"word": "", "meaning": "no word", "difficulty": "easy"},
		{"word": "dog", "meaning": "loyal pet", "difficulty": "impossible"},
		{"word": "ox", "meaning": "strong animal", "difficulty": "hard"}
	]`), 0o644))

	items, err := catalog.New(path).Items(quietContext())
	require.NoError(t, err)

	assert.Equal(t, []models.VocabItem{
		{Word: "cat", Meaning: "small pet", Difficulty: models.DifficultyEasy},
		{Word: "ox", Meaning: "strong animal", Difficulty: models.DifficultyHard},
	}, items)
}

func TestCatalog_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"word,meaning,example,difficulty\n"+
			"swift,\"fast, quick\",A swift reply.,medium\n"+
			",,,\n"+
			"calm,peaceful,,easy\n"), 0o644))

	items, err := catalog.New(path).Items(quietContext())
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "fast, quick", items[0].Meaning)
	assert.Equal(t, "A swift reply.", items[0].Example)
	assert.Equal(t, models.DifficultyEasy, items[1].Difficulty)
}

func TestCatalog_XLSXFile(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Word", "Meaning", "Example", "Difficulty"},
		{"terse", "using few words", "A terse note.", "hard"},
		{"glad", "pleased", "", "easy"},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	items, err := catalog.New(path).Items(quietContext())
	require.NoError(t, err)

	assert.Equal(t, []models.VocabItem{
		{Word: "terse", Meaning: "using few words", Example: "A terse note.", Difficulty: models.DifficultyHard},
		{Word: "glad", Meaning: "pleased", Difficulty: models.DifficultyEasy},
	}, items)
}

func TestCatalog_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "missing file", file: "absent.json"},
		{name: "malformed json", file: "bad.json", content: "{"},
		{name: "unsupported format", file: "words.txt", content: "cat"},
		{name: "no usable items", file: "empty.json", content: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			_, err := catalog.New(path).Items(quietContext())

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogUnavailable))
		})
	}
}

func TestCatalog_RetriesAfterFailureAndCachesSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.json")
	c := catalog.New(path)
	ctx := quietContext()

	_, err := c.Items(ctx)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`[{"word":"a","meaning":"b","difficulty":"easy"}]`), 0o644))
	items, err := c.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, os.Remove(path))
	cached, err := c.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, cached)
}

func TestFilter(t *testing.T) {
	items := []models.VocabItem{
		{Word: "a", Difficulty: models.DifficultyEasy},
		{Word: "b", Difficulty: models.DifficultyHard},
	}

	assert.Len(t, catalog.Filter(items, models.DifficultyAll), 2)
	assert.Len(t, catalog.Filter(items, ""), 2)
	assert.Equal(t, "b", catalog.Filter(items, models.DifficultyHard)[0].Word)
	assert.Empty(t, catalog.Filter(items, models.DifficultyMedium))
}
