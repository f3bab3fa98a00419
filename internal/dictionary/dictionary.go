package dictionary

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyDictionary   = errors.New("dictionary has no categories")
	ErrEmptyCategory     = errors.New("category has no words")
	ErrDuplicateCategory = errors.New("duplicate category")
)

//go:embed dictionaries.yml
var defaultDictionary []byte

type Category struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Icon  string   `json:"icon,omitempty" yaml:"icon"`
	Words []string `json:"-" yaml:"words"`
}

// Dictionary maps category ids to candidate secret words. It is read-only after construction.
type Dictionary struct {
	categories []Category
	index      map[string]int
}

type file struct {
	Categories []Category `yaml:"categories"`
}

// Default returns the built-in dictionary.
func Default() *Dictionary {
	dict, err := Parse(defaultDictionary)
	if err != nil {
		panic(fmt.Errorf("built-in dictionary is broken: %w", err))
	}

	return dict
}

// Load reads a dictionary from a YAML file.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary file: %w", err)
	}

	dict, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dictionary %s: %w", path, err)
	}

	return dict, nil
}

func Parse(data []byte) (*Dictionary, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dictionary: %w", err)
	}

	dict, err := New(f.Categories...)
	if err != nil {
		return nil, err
	}

	if err = dict.Validate(); err != nil {
		return nil, err
	}

	return dict, nil
}

// New builds a dictionary in the given category order. Word lists are not validated here.
func New(categories ...Category) (*Dictionary, error) {
	dict := &Dictionary{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}

	for _, category := range categories {
		category.ID = strings.TrimSpace(category.ID)
		if _, ok := dict.index[category.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, category.ID)
		}

		if category.Name == "" {
			category.Name = category.ID
		}

		dict.index[category.ID] = len(dict.categories)
		dict.categories = append(dict.categories, category)
	}

	return dict, nil
}

// FromMap builds a dictionary with categories sorted by id.
func FromMap(words map[string][]string) *Dictionary {
	ids := make([]string, 0, len(words))
	for id := range words {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	categories := make([]Category, 0, len(ids))
	for _, id := range ids {
		categories = append(categories, Category{ID: id, Words: words[id]})
	}

	dict, _ := New(categories...) // map keys are unique

	return dict
}

func (that *Dictionary) Validate() error {
	if len(that.categories) == 0 {
		return ErrEmptyDictionary
	}

	for _, category := range that.categories {
		if category.ID == "" {
			return fmt.Errorf("%w: category without id", ErrEmptyCategory)
		}

		if len(category.Words) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyCategory, category.ID)
		}

		for _, word := range category.Words {
			if strings.TrimSpace(word) == "" {
				return fmt.Errorf("%w: blank word in %s", ErrEmptyCategory, category.ID)
			}
		}
	}

	return nil
}

func (that *Dictionary) Words(id string) ([]string, bool) {
	idx, ok := that.index[id]
	if !ok {
		return nil, false
	}

	return that.categories[idx].Words, true
}

func (that *Dictionary) Has(id string) bool {
	_, ok := that.index[id]
	return ok
}

// Categories lists the categories in dictionary order.
func (that *Dictionary) Categories() []Category {
	out := make([]Category, len(that.categories))
	copy(out, that.categories)
	return out
}

func (that *Dictionary) IDs() []string {
	ids := make([]string, 0, len(that.categories))
	for _, category := range that.categories {
		ids = append(ids, category.ID)
	}

	return ids
}
