// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/pkg/logger"
	"github.com/veridex/veridex/pkg/telemetry"
)

// Default configuration values
const (
	defaultDatabasePath         = "./data/veridex.db"
	defaultClaimSearchURL       = "http://localhost:8070/test/api/v1/claim/internal-search"
	defaultSiteCredibilityURL   = "https://socsem.kmi.open.ac.uk/misinfo"
	defaultUpstreamTimeout      = 30
	defaultCredConfThreshold    = 0.7
	defaultMaxClaimsPerDoc      = 5
	defaultMaxConcurrent        = 4
	defaultBasedOnDepth         = 1
	defaultFactcheckerPenalty   = 0.5
	defaultWebsiteConfFactor    = 0.9
	defaultWebsitePenaliseCred  = 0.2
	defaultUnrelatedSimFactor   = 0.9
	defaultDiscussSimFactor     = 0.9
	defaultDomainCredTTLMinutes = 1440
	defaultBotDescTTLMinutes    = 1440
	defaultCacheSweepSchedule   = "0 * * * *"
	defaultIndexerTimeout       = 10
	defaultOTLPEndpoint         = "localhost:4317"
	defaultPrometheusPort       = 9090
)

// FactcheckerListPath is the default path of the newline-separated list of
// known fact-checker site URLs merged into Review.FactcheckerURLs at load time.
const FactcheckerListPath = "config/factcheckers.txt"

// ReviewFormat values accepted by the review endpoints.
const (
	ReviewFormatSchemaOrg      = "schema.org"
	ReviewFormatCredAssessment = "cred_assessment"
)

// GraphFormat values accepted by the review endpoints.
const (
	GraphFormatNestedTree    = "nestedTree"
	GraphFormatNodesWithRefs = "nodesWithRefs"
	GraphFormatNodesAndLinks = "nodesAndLinks"
)

// ReviewFormats lists the accepted review output formats, for error messages.
var ReviewFormats = []string{ReviewFormatSchemaOrg, ReviewFormatCredAssessment}

// GraphFormats lists the accepted review graph layouts, for error messages.
var GraphFormats = []string{GraphFormatNestedTree, GraphFormatNodesWithRefs, GraphFormatNodesAndLinks}

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	Auth      AuthConfig       `yaml:"auth"`
	Upstream  UpstreamConfig   `yaml:"upstream"`
	Review    ReviewConfig     `yaml:"review"`
	Cache     CacheConfig      `yaml:"cache"`
	Indexer   IndexerConfig    `yaml:"indexer"`
	Logging   logger.Config    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// DatabaseConfig holds the cache database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite file backing the upstream response caches
}

// AuthConfig holds JWT authentication configuration for the protected API group.
// When disabled the review endpoints are open; the internal claim search
// endpoint is still guarded by InternalAuth.
type AuthConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt hash
	JWTSecret    string `yaml:"jwt_secret"`    // JWT signing secret key
	TokenExpiry  int    `yaml:"token_expiry"`  // Normal token expiry in hours (default: 24)
	RememberDays int    `yaml:"remember_days"` // Remember me token expiry in days (default: 7)
}

// InternalAuthConfig holds the basic-auth credentials guarding the
// internal claim search endpoint.
type InternalAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// EndpointConfig describes one upstream collaborator service
type EndpointConfig struct {
	URL      string `yaml:"url"`
	Timeout  int    `yaml:"timeout"`  // request timeout in seconds
	Username string `yaml:"username"` // optional basic auth
	Password string `yaml:"password"`
	Token    string `yaml:"token"` // optional bearer token
}

// Enabled reports whether the endpoint has been configured at all.
func (e *EndpointConfig) Enabled() bool {
	return e.URL != ""
}

// UpstreamConfig holds the collaborator service endpoints. All of them are
// optional: a missing endpoint disables the corresponding evidence source
// and reviews fall back to their zero-confidence defaults.
type UpstreamConfig struct {
	// ClaimSearch is the semantic sentence search service (also provides
	// similarity and stance sub-reviewer descriptors).
	ClaimSearch EndpointConfig `yaml:"claim_search"`
	// Worthiness is the check-worthiness prediction service.
	Worthiness EndpointConfig `yaml:"worthiness"`
	// SiteCredibility is the external source credibility service.
	SiteCredibility EndpointConfig `yaml:"site_credibility"`
	// Analyzer extracts content and check-worthy claims from web documents.
	Analyzer EndpointConfig `yaml:"analyzer"`
	// TweetStore serves previously collected tweet content by id.
	TweetStore EndpointConfig `yaml:"tweet_store"`
	// InternalAuth guards the internal claim search endpoint exposed by
	// this service itself.
	InternalAuth InternalAuthConfig `yaml:"internal_auth"`
}

// ReviewConfig holds the credibility review tunables
type ReviewConfig struct {
	// CredConfThreshold is the minimum rating confidence for a credibility
	// label other than "not verifiable"
	CredConfThreshold float64 `yaml:"cred_conf_threshold"`
	// MaxClaimsPerDoc caps the number of check-worthy sentences reviewed per document
	MaxClaimsPerDoc int `yaml:"max_claims_per_doc"`
	// WorthinessReview enables the check-worthiness pre-filter for query sentences
	WorthinessReview bool `yaml:"worthiness_review"`
	// ReviewFormat is the default output format (schema.org or cred_assessment)
	ReviewFormat string `yaml:"review_format"`
	// GraphFormat is the default review graph layout
	GraphFormat string `yaml:"graph_format"`
	// BasedOnDepth is the depth at which nested isBasedOn evidence is trimmed
	BasedOnDepth int `yaml:"based_on_depth"`
	// MaxConcurrent limits how many sibling documents are reviewed in parallel
	MaxConcurrent int `yaml:"max_concurrent"`
	// FactcheckerURLs lists known fact-checker sites (merged with FactcheckerListFile)
	FactcheckerURLs []string `yaml:"factchecker_urls"`
	// FactcheckerListFile is an optional newline-separated file of fact-checker URLs
	FactcheckerListFile string `yaml:"factchecker_list_file"`
	// SocialMediaURLs lists social platforms whose domain credibility is capped
	SocialMediaURLs []string `yaml:"social_media_urls"`
	// FactcheckerConfidencePenalty scales website confidence for sentences
	// published by fact-checkers (they quote claims of varying credibility)
	FactcheckerConfidencePenalty float64 `yaml:"factchecker_confidence_penalty"`
	// WebsiteConfidenceFactor scales website-only confidence for article reviews
	WebsiteConfidenceFactor float64 `yaml:"website_confidence_factor"`
	// WebsitePenaliseThreshold is the credibility value above which the
	// website-only confidence factor applies
	WebsitePenaliseThreshold float64 `yaml:"website_penalise_threshold"`
	// SimilarityUnrelatedFactor dampens similarity when stance is unrelated
	SimilarityUnrelatedFactor float64 `yaml:"similarity_unrelated_factor"`
	// SimilarityDiscussFactor dampens similarity when stance is discuss
	SimilarityDiscussFactor float64 `yaml:"similarity_discuss_factor"`
}

// CacheConfig controls the upstream response caches
type CacheConfig struct {
	// DomainCredibilityTTL is the freshness window in minutes for cached
	// domain credibility payloads
	DomainCredibilityTTL int `yaml:"domain_credibility_ttl"`
	// BotDescriptorTTL is the freshness window in minutes for cached
	// sub-reviewer descriptors
	BotDescriptorTTL int `yaml:"bot_descriptor_ttl"`
	// SweepSchedule is the cron spec for the expired-entry sweep
	SweepSchedule string `yaml:"sweep_schedule"`
}

// IndexerConfig controls emission of finished review graphs to an external indexer
type IndexerConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`  // HMAC-SHA256 signing secret
	Timeout int    `yaml:"timeout"` // request timeout in seconds
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  "0.0.0.0",
			Port:  8080,
			Debug: false,
			CORSOrigins: []string{
				"http://localhost:8080",
			},
		},
		Database: DatabaseConfig{
			Path: defaultDatabasePath,
		},
		Auth: AuthConfig{
			Enabled:      false,
			JWTSecret:    "", // Should be set via config file or environment variable
			TokenExpiry:  24, // 24 hours
			RememberDays: 7,  // 7 days
		},
		Upstream: UpstreamConfig{
			ClaimSearch: EndpointConfig{
				URL:     defaultClaimSearchURL,
				Timeout: defaultUpstreamTimeout,
			},
			Worthiness: EndpointConfig{
				Timeout: defaultUpstreamTimeout,
			},
			SiteCredibility: EndpointConfig{
				URL:     defaultSiteCredibilityURL,
				Timeout: defaultUpstreamTimeout,
			},
			Analyzer: EndpointConfig{
				Timeout: defaultUpstreamTimeout,
			},
			TweetStore: EndpointConfig{
				Timeout: defaultUpstreamTimeout,
			},
		},
		Review: ReviewConfig{
			CredConfThreshold:   defaultCredConfThreshold,
			MaxClaimsPerDoc:     defaultMaxClaimsPerDoc,
			WorthinessReview:    false,
			ReviewFormat:        ReviewFormatSchemaOrg,
			GraphFormat:         GraphFormatNestedTree,
			BasedOnDepth:        defaultBasedOnDepth,
			MaxConcurrent:       defaultMaxConcurrent,
			FactcheckerURLs:     []string{},
			FactcheckerListFile: FactcheckerListPath,
			SocialMediaURLs: []string{
				"http://twitter.com",
				"http://facebook.com",
				"http://instagram.com",
			},
			FactcheckerConfidencePenalty: defaultFactcheckerPenalty,
			WebsiteConfidenceFactor:      defaultWebsiteConfFactor,
			WebsitePenaliseThreshold:     defaultWebsitePenaliseCred,
			SimilarityUnrelatedFactor:    defaultUnrelatedSimFactor,
			SimilarityDiscussFactor:      defaultDiscussSimFactor,
		},
		Cache: CacheConfig{
			DomainCredibilityTTL: defaultDomainCredTTLMinutes,
			BotDescriptorTTL:     defaultBotDescTTLMinutes,
			SweepSchedule:        defaultCacheSweepSchedule,
		},
		Indexer: IndexerConfig{
			Enabled: false,
			Timeout: defaultIndexerTimeout,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text", // Default to human-readable text format instead of JSON
			File:       "",
			MaxSize:    100, // Max 100MB per log file
			MaxAge:     7,   // Retain logs for 7 days
			MaxBackups: 5,   // Keep 5 backup files
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable expansion
func Load(path string) (*Config, error) {
	cfg := Default()

	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the configuration
	expanded := expandEnvVars(string(data))

	// Parse YAML
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	if err := cfg.Review.loadFactcheckerList(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
// Only matches ${VAR_NAME} format (not $VAR_NAME) to avoid conflicts with special characters like bcrypt hashes
func expandEnvVars(content string) string {
	// Match ${VAR_NAME} patterns only (not $VAR_NAME to avoid bcrypt hash conflicts)
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		// Return default value if provided
		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// loadFactcheckerList merges the optional fact-checker list file into
// FactcheckerURLs. A missing file is not an error; only the default list
// path may be absent silently.
func (c *ReviewConfig) loadFactcheckerList() error {
	if c.FactcheckerListFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.FactcheckerListFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c.FactcheckerURLs = append(c.FactcheckerURLs, line)
	}
	return nil
}

// ReviewFormatValid reports whether the given review output format is supported.
func ReviewFormatValid(format string) bool {
	return format == ReviewFormatSchemaOrg || format == ReviewFormatCredAssessment
}

// GraphFormatValid reports whether the given review graph layout is supported.
func GraphFormatValid(format string) bool {
	switch format {
	case GraphFormatNestedTree, GraphFormatNodesWithRefs, GraphFormatNodesAndLinks:
		return true
	}
	return false
}
