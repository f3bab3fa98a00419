package impostor

import (
	"fmt"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
)

// WordLists resolves a category id to its candidate words.
type WordLists interface {
	Words(category string) ([]string, bool)
}

// SelectWord picks one of the selected categories uniformly, then one of its words uniformly.
// All selected categories are checked before anything is drawn.
func SelectWord(src Source, categories []string, lists WordLists) (string, string, error) {
	if len(categories) == 0 {
		return "", "", fmt.Errorf("%w: no category selected", apperror.ErrInvalidConfig)
	}

	for _, category := range categories {
		words, ok := lists.Words(category)
		if !ok {
			return "", "", fmt.Errorf("%w: unknown category %q", apperror.ErrInvalidConfig, category)
		}

		if len(words) == 0 {
			return "", "", fmt.Errorf("%w: category %q has no words", apperror.ErrInvalidConfig, category)
		}
	}

	category := categories[src.IntN(len(categories))]
	words, _ := lists.Words(category)

	return category, words[src.IntN(len(words))], nil
}
