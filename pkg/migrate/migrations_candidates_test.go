package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCandidatesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_candidates.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no candidates migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS candidates",
		"CHECK (balance >= 0)",
		"CHECK (age >= 10 AND age <= 40)",
		"ux_candidates_email",
		"ux_candidates_phone",
		"ix_candidates_category_ranking",
		"DROP TABLE IF EXISTS candidates",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
