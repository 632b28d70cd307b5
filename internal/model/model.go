// Package model defines the data models for the application.
// All models use GORM for ORM operations with SQLite database.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSONMap is a custom type for storing JSON maps in SQLite
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	data, err := json.Marshal(j)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, j)
}

// DomainCredibilityCache stores one fetched domain credibility assessment.
// Entries past their expiry are still served when the upstream service
// cannot be reached: a stale assessment beats no assessment, and the next
// successful fetch replaces it.
type DomainCredibilityCache struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Domain is the website domain the assessment covers
	Domain string `gorm:"size:255;not null;uniqueIndex" json:"domain"`

	// Payload is the full DomainCredibility response document
	Payload JSONMap `gorm:"type:json;not null" json:"payload"`

	// FetchedAt is when the upstream response was obtained
	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`

	// ExpiresAt is when the entry stops being served on the fast path
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

// Expired reports whether the entry has outlived its TTL at the given time.
func (c *DomainCredibilityCache) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// BotDescriptorCache stores a sub-reviewer self-description fetched from an
// upstream service. Descriptors change only on upstream redeploys, so they
// are cached with long TTLs and identified by (service, name).
type BotDescriptorCache struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Service is the upstream service the descriptor came from
	Service string `gorm:"size:100;not null;uniqueIndex:idx_service_bot,priority:1" json:"service"`

	// Name distinguishes descriptors within one service
	Name string `gorm:"size:100;not null;uniqueIndex:idx_service_bot,priority:2" json:"name"`

	// Payload is the descriptor document as returned by the service
	Payload JSONMap `gorm:"type:json;not null" json:"payload"`

	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

// Expired reports whether the entry has outlived its TTL at the given time.
func (c *BotDescriptorCache) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AllModels returns all models for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&DomainCredibilityCache{},
		&BotDescriptorCache{},
	}
}
