package quiz_test

import (
	"fmt"

	"github.com/vytor/vocabquiz/internal/models"
)

func makePool(n int, difficulty models.Difficulty) []models.VocabItem {
	pool := make([]models.VocabItem, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, models.VocabItem{
			Word:       fmt.Sprintf("%s-word-%d", difficulty, i),
			Meaning:    fmt.Sprintf("%s meaning %d", difficulty, i),
			Example:    fmt.Sprintf("example %d", i),
			Difficulty: difficulty,
		})
	}
	return pool
}

func words(items []models.VocabItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Word
	}
	return out
}
