package check

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/veridex/veridex/internal/config"
)

// ValidationResult represents the result of a config validation
type ValidationResult struct {
	Path      string
	Valid     bool
	SiteCount int // for the fact-checker list
	Error     error
	Warnings  []string
}

// validateConfigs validates all configuration files
func (c *Checker) validateConfigs() {
	configResult := c.validateConfigYaml()
	c.report.AddValidationResult(configResult)
	printValidationResult(configResult)

	fcResult := c.validateFactcheckerList()
	c.report.AddValidationResult(fcResult)
	printValidationResult(fcResult)
}

// validateConfigYaml validates the service configuration file
func (c *Checker) validateConfigYaml() ValidationResult {
	path := c.ConfigPath()
	result := ValidationResult{Path: path}

	// Check if file exists
	if !fileExists(path) {
		result.Valid = false
		result.Error = fmt.Errorf("file does not exist")
		return result
	}

	// Try to load the config
	cfg, err := config.Load(path)
	if err != nil {
		result.Valid = false
		result.Error = fmt.Errorf("format error: %v", err)
		return result
	}

	if !config.ReviewFormatValid(cfg.Review.ReviewFormat) {
		result.Valid = false
		result.Error = fmt.Errorf("review_format must be one of %v, got %q",
			config.ReviewFormats, cfg.Review.ReviewFormat)
		return result
	}
	if !config.GraphFormatValid(cfg.Review.GraphFormat) {
		result.Valid = false
		result.Error = fmt.Errorf("graph_format must be one of %v, got %q",
			config.GraphFormats, cfg.Review.GraphFormat)
		return result
	}

	result.Valid = true
	result.Warnings = configWarnings(cfg)
	return result
}

// validateFactcheckerList validates the fact-checker site list
func (c *Checker) validateFactcheckerList() ValidationResult {
	path := c.FactcheckerPath()
	result := ValidationResult{Path: path}

	if !fileExists(path) {
		result.Valid = false
		result.Error = fmt.Errorf("file does not exist")
		return result
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Error = fmt.Errorf("cannot read file: %v", err)
		return result
	}

	count := 0
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || u.Host == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("line %d does not look like a site URL: %q", i+1, line))
			continue
		}
		count++
	}

	result.Valid = true
	result.SiteCount = count
	if count == 0 {
		result.Warnings = append(result.Warnings,
			"no fact-checker sites listed; fact-check evidence will not be recognised")
	}
	return result
}

// printValidationResult prints the validation result
func printValidationResult(result ValidationResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if result.Valid {
		if result.SiteCount > 0 {
			green.Printf("  ✓ %s (%d sites)\n", result.Path, result.SiteCount)
		} else {
			green.Printf("  ✓ %s\n", result.Path)
		}
	} else if result.Error != nil {
		red.Printf("  ✗ %s: %v\n", result.Path, result.Error)
	} else {
		yellow.Printf("  ⚠ %s\n", result.Path)
	}

	// Print warnings if any
	for _, warning := range result.Warnings {
		yellow.Printf("    └─ %s\n", warning)
	}
}
