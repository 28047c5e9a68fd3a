package main

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// preserveRules is the schema of the --patterns file. Each pattern is a
// regular expression whose matches are carried through compression unchanged,
// in file order.
type preserveRules struct {
	Patterns []string `yaml:"patterns"`
}

func loadPreserveRules(filename string) ([]*regexp.Regexp, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read rules file %q: %w", filename, err)
	}

	var rules preserveRules
	if err := yaml.Unmarshal(b, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file %q: %w", filename, err)
	}

	patterns := make([]*regexp.Regexp, 0, len(rules.Patterns))
	for _, pattern := range rules.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("rules file %q: %w", filename, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}
