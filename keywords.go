package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordFile lets operators extend the built-in classifier vocabulary
// without a rebuild, e.g. to teach it a local voucher brand.
type KeywordFile struct {
	Patterns []KeywordEntry `yaml:"patterns"`
}

type KeywordEntry struct {
	Category string   `yaml:"category"`
	Weight   float64  `yaml:"weight"`
	Keywords []string `yaml:"keywords"`
}

func LoadKeywordFile(path string) (*KeywordFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword file: %w", err)
	}
	var kf KeywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keyword yaml: %w", err)
	}
	for i, e := range kf.Patterns {
		if !knownCategories[strings.TrimSpace(e.Category)] {
			return nil, fmt.Errorf("keyword entry %d: unknown category '%s'", i, e.Category)
		}
		if e.Weight <= 0 {
			return nil, fmt.Errorf("keyword entry %d: weight must be > 0, got %v", i, e.Weight)
		}
	}
	return &kf, nil
}

// ApplyKeywordFile merges the file's entries into the classifier.
func ApplyKeywordFile(c *Classifier, kf *KeywordFile) {
	for _, e := range kf.Patterns {
		c.AddKeywords(strings.TrimSpace(e.Category), e.Weight, e.Keywords...)
	}
}
