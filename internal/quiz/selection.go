package quiz

import "github.com/vytor/vocabquiz/internal/models"

// SelectRandomWords samples count distinct items from pool.
//
// Items are filtered by difficulty unless it is DifficultyAll. When the
// filtered subset holds fewer than count items the filter is dropped and the
// whole pool is sampled, so a full-length quiz wins over strict difficulty.
// A pool shorter than count yields a short quiz rather than an error.
func SelectRandomWords(r Rand, pool []models.VocabItem, count int, difficulty models.Difficulty) []models.VocabItem {
	if count <= 0 || len(pool) == 0 {
		return []models.VocabItem{}
	}

	eligible := filterByDifficulty(pool, difficulty)
	if len(eligible) < count {
		eligible = append([]models.VocabItem(nil), pool...)
	}

	shuffle(r, eligible)
	if len(eligible) > count {
		eligible = eligible[:count]
	}
	return eligible
}

// filterByDifficulty always returns a fresh slice so callers may shuffle it.
func filterByDifficulty(pool []models.VocabItem, difficulty models.Difficulty) []models.VocabItem {
	if difficulty == models.DifficultyAll || difficulty == "" {
		return append([]models.VocabItem(nil), pool...)
	}
	out := make([]models.VocabItem, 0, len(pool))
	for _, item := range pool {
		if item.Difficulty == difficulty {
			out = append(out, item)
		}
	}
	return out
}
