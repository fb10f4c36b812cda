package models

// Difficulty tags a catalog entry.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	// DifficultyAll disables difficulty filtering when selecting quiz items.
	DifficultyAll Difficulty = "all"
)

// Valid reports whether d is a concrete item difficulty (not the "all" filter).
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ValidFilter reports whether d can be used to filter the catalog.
func (d Difficulty) ValidFilter() bool {
	return d == DifficultyAll || d.Valid()
}

// VocabItem is one immutable catalog entry. Word is its identity.
type VocabItem struct {
	Word       string     `json:"word"`
	Meaning    string     `json:"meaning"`
	Example    string     `json:"example"`
	Difficulty Difficulty `json:"difficulty"`
}
