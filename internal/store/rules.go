package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"fjacquet/cashflow/internal/logging"
)

// KeywordRule maps description keywords to a category name.
type KeywordRule struct {
	Category string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type rulesDocument struct {
	Categories []KeywordRule `yaml:"categories"`
}

// RuleStore loads keyword categorization rules from a YAML file.
type RuleStore struct {
	File   string
	logger logging.Logger
}

// NewRuleStore returns a RuleStore reading file.
func NewRuleStore(file string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &RuleStore{File: file, logger: logger}
}

// FindConfigFile looks for filename in the working directory, ./config,
// ./database and ~/.config/cashflow.
func (r *RuleStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "cashflow", filename))
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// Load reads the rules. A missing file yields no rules; keywords are
// lower-cased and blank ones dropped.
//
// Both a top-level "categories:" list and a bare list are accepted.
func (r *RuleStore) Load() ([]KeywordRule, error) {
	if r.File == "" {
		return nil, nil
	}
	path, err := r.FindConfigFile(r.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("Keyword rules file not found", logging.F(logging.FieldFile, r.File))
			return nil, nil
		}
		return nil, fmt.Errorf("error resolving rules file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	var doc rulesDocument
	docErr := yaml.Unmarshal(data, &doc)
	if docErr != nil || len(doc.Categories) == 0 {
		var list []KeywordRule
		if err := yaml.Unmarshal(data, &list); err == nil {
			doc.Categories = list
		} else if docErr != nil {
			return nil, fmt.Errorf("error parsing rules file %s: %w", path, docErr)
		}
	}

	rules := make([]KeywordRule, 0, len(doc.Categories))
	for _, rule := range doc.Categories {
		if strings.TrimSpace(rule.Category) == "" {
			continue
		}
		cleaned := KeywordRule{Category: strings.TrimSpace(rule.Category)}
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				cleaned.Keywords = append(cleaned.Keywords, kw)
			}
		}
		rules = append(rules, cleaned)
	}
	r.logger.Debug("Loaded keyword rules",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(rules)))
	return rules, nil
}
