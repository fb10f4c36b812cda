package quiz

import "github.com/vytor/vocabquiz/internal/models"

// DistractorCount is how many wrong meanings accompany the correct one.
const DistractorCount = 3

// CreateMultipleChoiceOptions returns the correct meaning plus up to
// DistractorCount meanings of other items, in random order.
//
// Items sharing the correct item's word are never used as distractors, and a
// meaning is never offered twice, so the correct meaning appears exactly once.
// With too few other items the option set is simply shorter.
func CreateMultipleChoiceOptions(r Rand, correct models.VocabItem, pool []models.VocabItem) []string {
	candidates := make([]models.VocabItem, 0, len(pool))
	for _, item := range pool {
		if item.Word != correct.Word {
			candidates = append(candidates, item)
		}
	}
	shuffle(r, candidates)

	seen := map[string]bool{correct.Meaning: true}
	options := make([]string, 0, DistractorCount+1)
	for _, item := range candidates {
		if len(options) == DistractorCount {
			break
		}
		if seen[item.Meaning] {
			continue
		}
		seen[item.Meaning] = true
		options = append(options, item.Meaning)
	}
	options = append(options, correct.Meaning)

	shuffle(r, options)
	return options
}
