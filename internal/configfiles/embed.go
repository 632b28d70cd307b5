// Package configfiles provides embedded configuration files for Veridex.
// These files are used as templates for initializing user configuration.
package configfiles

import (
	"embed"
)

// Embedded configuration templates
//
//go:embed config.example.yaml
//go:embed factcheckers.example.txt
var configFS embed.FS

// GetConfigExample returns the example configuration file content
func GetConfigExample() ([]byte, error) {
	return configFS.ReadFile("config.example.yaml")
}

// GetFactcheckerExample returns the example fact-checker site list content
func GetFactcheckerExample() ([]byte, error) {
	return configFS.ReadFile("factcheckers.example.txt")
}
