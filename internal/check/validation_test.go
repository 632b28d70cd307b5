package check

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigDir(t *testing.T, configYAML, factcheckers string) *Checker {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if configYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if factcheckers != "" {
		if err := os.WriteFile(filepath.Join(dir, "factcheckers.txt"), []byte(factcheckers), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return &Checker{configDir: dir, report: NewReport()}
}

// TestValidateConfigYamlValid tests validation of a valid config
func TestValidateConfigYamlValid(t *testing.T) {
	checker := writeConfigDir(t, `
server:
  host: localhost
  port: 8080
review:
  factchecker_list_file: ""
`, "")

	result := checker.validateConfigYaml()
	if !result.Valid {
		t.Errorf("Valid config should pass validation, got error: %v", result.Error)
	}
}

// TestValidateConfigYamlMissing tests validation of a missing config
func TestValidateConfigYamlMissing(t *testing.T) {
	checker := &Checker{configDir: filepath.Join(t.TempDir(), "config"), report: NewReport()}

	result := checker.validateConfigYaml()
	if result.Valid {
		t.Error("Missing config should fail validation")
	}
	if result.Error == nil {
		t.Error("Missing config should carry an error")
	}
}

// TestValidateConfigYamlBadFormat tests validation of corrupt YAML
func TestValidateConfigYamlBadFormat(t *testing.T) {
	checker := writeConfigDir(t, "server: [broken", "")

	result := checker.validateConfigYaml()
	if result.Valid {
		t.Error("Corrupt YAML should fail validation")
	}
}

// TestValidateConfigYamlInvalidReviewFormat tests rejection of unknown review formats
func TestValidateConfigYamlInvalidReviewFormat(t *testing.T) {
	checker := writeConfigDir(t, `
review:
  review_format: "not-a-format"
  factchecker_list_file: ""
`, "")

	result := checker.validateConfigYaml()
	if result.Valid {
		t.Error("Unknown review_format should fail validation")
	}
}

// TestValidateConfigYamlWarnsOnAuthSecrets tests the warning collection
func TestValidateConfigYamlWarnsOnAuthSecrets(t *testing.T) {
	checker := writeConfigDir(t, `
auth:
  enabled: true
review:
  factchecker_list_file: ""
`, "")

	result := checker.validateConfigYaml()
	if !result.Valid {
		t.Fatalf("Config should be valid, got error: %v", result.Error)
	}
	if len(result.Warnings) == 0 {
		t.Error("Auth without secrets should produce warnings")
	}
}

// TestValidateFactcheckerList tests the site list validation
func TestValidateFactcheckerList(t *testing.T) {
	checker := writeConfigDir(t, "", `# known fact-checkers
https://fullfact.org
https://www.snopes.com

https://www.politifact.com
`)

	result := checker.validateFactcheckerList()
	if !result.Valid {
		t.Fatalf("List should be valid, got error: %v", result.Error)
	}
	if result.SiteCount != 3 {
		t.Errorf("Expected 3 sites, got %d", result.SiteCount)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

// TestValidateFactcheckerListJunkLines tests warnings for malformed lines
func TestValidateFactcheckerListJunkLines(t *testing.T) {
	checker := writeConfigDir(t, "", "https://fullfact.org\nnot a url at all\n")

	result := checker.validateFactcheckerList()
	if !result.Valid {
		t.Fatalf("List should still be valid, got error: %v", result.Error)
	}
	if result.SiteCount != 1 {
		t.Errorf("Expected 1 site, got %d", result.SiteCount)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("Expected 1 warning for the junk line, got %v", result.Warnings)
	}
}

// TestValidateFactcheckerListEmpty tests the empty list warning
func TestValidateFactcheckerListEmpty(t *testing.T) {
	checker := writeConfigDir(t, "", "# nothing here\n")

	result := checker.validateFactcheckerList()
	if !result.Valid {
		t.Fatalf("List should be valid, got error: %v", result.Error)
	}
	if result.SiteCount != 0 {
		t.Errorf("Expected 0 sites, got %d", result.SiteCount)
	}
	if len(result.Warnings) == 0 {
		t.Error("Empty list should produce a warning")
	}
}

// TestValidateFactcheckerListMissing tests validation of a missing list
func TestValidateFactcheckerListMissing(t *testing.T) {
	checker := &Checker{configDir: filepath.Join(t.TempDir(), "config"), report: NewReport()}

	result := checker.validateFactcheckerList()
	if result.Valid {
		t.Error("Missing list should fail validation")
	}
}
