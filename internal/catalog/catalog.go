// Package catalog loads the vocabulary items quizzes are drawn from.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vytor/vocabquiz/internal/errors"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
)

//go:embed words.json
var embeddedWords []byte

// Source provides the catalog items.
type Source interface {
	Items(ctx context.Context) ([]models.VocabItem, error)
}

// Catalog reads the word list once and serves it from memory afterwards.
// A failed read is not cached, so the next call tries again.
type Catalog struct {
	path string
	read func(string) ([]byte, error)

	mu    sync.Mutex
	items []models.VocabItem
}

// New returns a catalog backed by the file at path, or by the built-in word
// list when path is empty.
func New(path string) *Catalog {
	return &Catalog{path: path, read: os.ReadFile}
}

// Items returns every catalog item. A load failure is reported as
// CATALOG_UNAVAILABLE.
func (c *Catalog) Items(ctx context.Context) ([]models.VocabItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.items != nil {
		return c.items, nil
	}

	items, err := c.load(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load word catalog: %v", err)
		return nil, errors.NewCatalogUnavailableError(err)
	}
	if len(items) == 0 {
		err := fmt.Errorf("catalog %s has no usable items", c.name())
		logger.FromContext(ctx).Error("%v", err)
		return nil, errors.NewCatalogUnavailableError(err)
	}

	logger.FromContext(ctx).Info("loaded %d words from %s", len(items), c.name())
	c.items = items
	return items, nil
}

// Filter returns the items matching difficulty, or all of them for
// DifficultyAll.
func Filter(items []models.VocabItem, difficulty models.Difficulty) []models.VocabItem {
	if difficulty == models.DifficultyAll || difficulty == "" {
		return items
	}
	out := make([]models.VocabItem, 0, len(items))
	for _, item := range items {
		if item.Difficulty == difficulty {
			out = append(out, item)
		}
	}
	return out
}

func (c *Catalog) name() string {
	if c.path == "" {
		return "built-in word list"
	}
	return c.path
}

func (c *Catalog) load(ctx context.Context) ([]models.VocabItem, error) {
	if c.path == "" {
		return Parse(ctx, "words.json", embeddedWords)
	}
	data, err := c.read(c.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(ctx, c.path, data)
}

// Parse decodes a catalog file, picking the format from the file extension
// of name. Invalid rows and repeated words are skipped with a warning.
func Parse(ctx context.Context, name string, data []byte) ([]models.VocabItem, error) {
	var (
		raw []models.VocabItem
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		raw, err = parseJSON(data)
	case ".csv":
		raw, err = parseCSV(bytes.NewReader(data))
	case ".xlsx":
		raw, err = parseXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(name), err)
	}
	return normalize(ctx, raw), nil
}

func normalize(ctx context.Context, raw []models.VocabItem) []models.VocabItem {
	log := logger.FromContext(ctx).WithPrefix("catalog")
	seen := make(map[string]bool, len(raw))
	items := make([]models.VocabItem, 0, len(raw))

	for i, item := range raw {
		item.Word = strings.TrimSpace(item.Word)
		item.Meaning = strings.TrimSpace(item.Meaning)
		item.Example = strings.TrimSpace(item.Example)
		item.Difficulty = models.Difficulty(strings.ToLower(strings.TrimSpace(string(item.Difficulty))))

		switch {
		case item.Word == "" || item.Meaning == "":
			log.Warn("skipping entry %d: word and meaning are required", i+1)
			continue
		case !item.Difficulty.Valid():
			log.Warn("skipping %q: unknown difficulty %q", item.Word, item.Difficulty)
			continue
		}

		key := strings.ToLower(item.Word)
		if seen[key] {
			log.Warn("skipping duplicate word %q", item.Word)
			continue
		}
		seen[key] = true
		items = append(items, item)
	}
	return items
}
