package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tdewolff/test"
)

func TestLoadPreserveRules(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rules.yml")
	err := os.WriteFile(filename, []byte("patterns:\n  - '<jsp:.*?>'\n  - '\\{\\{.*?\\}\\}'\n"), 0644)
	test.Error(t, err)

	patterns, err := loadPreserveRules(filename)
	test.Error(t, err)
	test.T(t, len(patterns), 2)
	test.That(t, patterns[0].MatchString("<jsp:include page=\"a\"/>"), "first pattern must match")
	test.That(t, patterns[1].MatchString("{{ var }}"), "second pattern must match")
}

func TestLoadPreserveRulesBadPattern(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rules.yml")
	err := os.WriteFile(filename, []byte("patterns:\n  - '(unclosed'\n"), 0644)
	test.Error(t, err)

	_, err = loadPreserveRules(filename)
	test.That(t, err != nil, "invalid pattern must abort")
}

func TestLoadPreserveRulesMissingFile(t *testing.T) {
	_, err := loadPreserveRules("does-not-exist.yml")
	test.That(t, err != nil, "missing file must abort")
}
