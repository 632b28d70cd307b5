// Package check provides interactive environment checking and initialization.
// It helps users set up their local Veridex configuration properly.
package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/veridex/veridex/internal/config"
)

// CheckResult represents the result of a non-interactive environment check
type CheckResult struct {
	// Success indicates whether all required checks passed
	Success bool
	// Errors contains critical errors that prevent server startup
	Errors []string
	// Warnings contains non-critical issues that don't block startup
	Warnings []string
	// Suggestions contains helpful tips for fixing issues
	Suggestions []string
}

// Checker handles environment checking and initialization
type Checker struct {
	// configDir is the base directory for configuration files
	configDir string
	// report collects check results for final output
	report *Report
	// theme for consistent styling
	theme *huh.Theme
}

// NewChecker creates a new environment checker
func NewChecker() *Checker {
	return &Checker{
		configDir: "config",
		report:    NewReport(),
		theme:     huh.ThemeCharm(),
	}
}

// Run executes the full environment check
func (c *Checker) Run() error {
	// Print header
	c.printHeader()

	// Step 1: Check and create configuration files
	fmt.Println()
	printSection("Checking configuration files")
	if err := c.checkFiles(); err != nil {
		return fmt.Errorf("file check failed: %w", err)
	}

	// Step 2: Validate configuration files
	fmt.Println()
	printSection("Validating configuration formats")
	c.validateConfigs()

	// Step 3: Print final report
	fmt.Println()
	c.report.Print()

	return nil
}

// printHeader prints the welcome header
func (c *Checker) printHeader() {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Println(titleStyle.Render("🔍 Veridex Environment Check"))
}

// printSection prints a section header
func printSection(title string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))
	fmt.Println(style.Render(title + "..."))
}

// RequiredFiles returns the list of required configuration files
func (c *Checker) RequiredFiles() []FileConfig {
	return []FileConfig{
		{
			Path:        filepath.Join(c.configDir, "config.yaml"),
			Description: "Service configuration file (server, upstreams, review tunables)",
			Template:    TemplateConfig,
		},
		{
			Path:        filepath.Join(c.configDir, "factcheckers.txt"),
			Description: "Known fact-checker site list",
			Template:    TemplateFactcheckers,
		},
	}
}

// ConfigPath returns the path to the service config file
func (c *Checker) ConfigPath() string {
	return filepath.Join(c.configDir, "config.yaml")
}

// FactcheckerPath returns the path to the fact-checker site list
func (c *Checker) FactcheckerPath() string {
	return filepath.Join(c.configDir, "factcheckers.txt")
}

// confirmCreate asks user to confirm file creation
func confirmCreate(path string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Create %s from template?", path)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ensureDir creates directory if it doesn't exist
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RunNonInteractive performs a non-interactive environment check.
// Unlike Run(), this method does not prompt for user input and does not create files.
// It returns a CheckResult with errors, warnings, and suggestions.
func (c *Checker) RunNonInteractive() *CheckResult {
	result := &CheckResult{
		Success:     true,
		Errors:      make([]string, 0),
		Warnings:    make([]string, 0),
		Suggestions: make([]string, 0),
	}

	// Step 1: Check if the configuration file exists
	if !fileExists(c.ConfigPath()) {
		result.Success = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Configuration file not found: %s", c.ConfigPath()))
		result.Suggestions = append(result.Suggestions,
			"Run 'veridex check' to interactively create configuration files")
		return result
	}

	// Step 2: Validate configuration file formats
	configResult := c.validateConfigYaml()
	if !configResult.Valid {
		result.Success = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Invalid config.yaml: %v", configResult.Error))
		return result
	}
	result.Warnings = append(result.Warnings, configResult.Warnings...)

	// The fact-checker list is optional; reviews fall back to the
	// configured factchecker_urls only.
	fcResult := c.validateFactcheckerList()
	if !fcResult.Valid {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Fact-checker list problem: %v", fcResult.Error))
	}

	return result
}

// PrintCheckResult prints the check result in a formatted way
func PrintCheckResult(result *CheckResult) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Print errors
	if len(result.Errors) > 0 {
		fmt.Println()
		red.Println("[ERROR] Environment check failed")
		fmt.Println()
		for _, err := range result.Errors {
			red.Printf("  ✗ %s\n", err)
		}
	}

	// Print warnings
	if len(result.Warnings) > 0 {
		fmt.Println()
		yellow.Println("[WARNING] Configuration warnings:")
		fmt.Println()
		for _, warn := range result.Warnings {
			yellow.Printf("  ⚠ %s\n", warn)
		}
	}

	// Print suggestions
	if len(result.Suggestions) > 0 {
		cyan.Println("\nTo fix these issues:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  → %s\n", suggestion)
		}
	}

	fmt.Println()
}

// configWarnings collects non-blocking configuration problems worth
// surfacing at startup.
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if cfg.Auth.Enabled {
		if cfg.Auth.JWTSecret == "" {
			warnings = append(warnings, "Auth is enabled but jwt_secret is empty")
		}
		if cfg.Auth.PasswordHash == "" {
			warnings = append(warnings, "Auth is enabled but password_hash is empty")
		}
	}
	if !cfg.Upstream.ClaimSearch.Enabled() {
		warnings = append(warnings,
			"No claim search endpoint configured; claims will not be matched against the sentence database")
	}
	if !cfg.Upstream.SiteCredibility.Enabled() {
		warnings = append(warnings,
			"No site credibility endpoint configured; website reviews will not be verifiable")
	}
	if !cfg.Upstream.Analyzer.Enabled() {
		warnings = append(warnings,
			"No analyzer endpoint configured; webpage reviews will fail without pre-analysed content")
	}
	return warnings
}
