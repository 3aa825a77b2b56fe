package config

import (
	"encoding/json"

	domainconfig "github.com/felixgeelhaar/suggest-go/domain/config"
)

// JSONSchema represents the subset of a JSON Schema document the
// configuration needs.
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	Format               string                 `json:"format,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
}

const durationPattern = `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`

// GenerateSchema generates a JSON Schema for config.Config.
func GenerateSchema() *JSONSchema {
	return &JSONSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          "https://github.com/felixgeelhaar/suggest-go/suggest-config.schema.json",
		Title:       "Suggestion Engine Configuration",
		Description: "Configuration schema for the suggest-go engine",
		Type:        "object",
		Required:    []string{"version"},
		Properties: map[string]*JSONSchema{
			"name": {
				Type:        "string",
				Description: "A human-readable name for this configuration",
			},
			"version": {
				Type:        "string",
				Description: "The configuration schema version",
				Default:     "1",
			},
			"history": {
				Type:        "object",
				Description: "Action history settings",
				Properties: map[string]*JSONSchema{
					"capacity": {
						Type:        "integer",
						Description: "Number of recent actions kept",
						Default:     domainconfig.DefaultHistoryCapacity,
						Minimum:     floatPtr(1),
					},
				},
			},
			"suggesting_interval_days": {
				Type:        "integer",
				Description: "Minimum days between two suggestions of the same detector; 0 disables the cooldown",
				Default:     domainconfig.DefaultIntervalDays,
				Minimum:     floatPtr(0),
			},
			"detectors": {
				Type:        "object",
				Description: "Per-detector settings keyed by detector id",
				AdditionalProperties: &JSONSchema{
					Type: "object",
					Properties: map[string]*JSONSchema{
						"enabled": {Type: "boolean", Default: true},
					},
				},
			},
			"logging":  generateLoggingSchema(),
			"cooldown": generateCooldownSchema(),
			"webhook":  generateWebhookSchema(),
		},
	}
}

func generateLoggingSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Logger settings",
		Properties: map[string]*JSONSchema{
			"level": {
				Type:    "string",
				Enum:    []string{"trace", "debug", "info", "warn", "error"},
				Default: "info",
			},
			"format": {
				Type:    "string",
				Enum:    []string{"console", "json"},
				Default: "console",
			},
		},
	}
}

func generateCooldownSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Where last-presented times are kept",
		Properties: map[string]*JSONSchema{
			"backend": {
				Type: "string",
				Enum: []string{
					domainconfig.BackendMemory, domainconfig.BackendBadger,
					domainconfig.BackendSQLite, domainconfig.BackendRedis,
				},
				Default: domainconfig.BackendMemory,
			},
			"dir": {
				Type:        "string",
				Description: "Data directory for the badger backend",
			},
			"path": {
				Type:        "string",
				Description: "Database file for the sqlite backend",
			},
			"redis": {
				Type:        "object",
				Description: "Shared store for the redis backend",
				Properties: map[string]*JSONSchema{
					"address":    {Type: "string", Description: "host:port"},
					"password":   {Type: "string"},
					"db":         {Type: "integer", Minimum: floatPtr(0)},
					"key_prefix": {Type: "string", Default: "suggest:"},
				},
			},
		},
	}
}

func generateWebhookSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Webhook presenter settings",
		Properties: map[string]*JSONSchema{
			"enabled": {Type: "boolean", Default: false},
			"endpoints": {
				Type: "array",
				Items: &JSONSchema{
					Type:     "object",
					Required: []string{"url"},
					Properties: map[string]*JSONSchema{
						"name":    {Type: "string"},
						"url":     {Type: "string", Format: "uri"},
						"enabled": {Type: "boolean", Default: false},
						"secret": {
							Type:        "string",
							Description: "HMAC-SHA256 signing secret",
						},
						"headers": {
							Type:                 "object",
							AdditionalProperties: &JSONSchema{Type: "string"},
						},
						"detectors": {
							Type:        "array",
							Description: "Only send suggestions from these detectors",
							Items:       &JSONSchema{Type: "string"},
						},
					},
				},
			},
			"batching": {
				Type: "object",
				Properties: map[string]*JSONSchema{
					"enabled":  {Type: "boolean", Default: false},
					"max_size": {Type: "integer", Minimum: floatPtr(1)},
					"max_wait": {Type: "string", Pattern: durationPattern},
				},
			},
			"timeout":     {Type: "string", Pattern: durationPattern},
			"max_retries": {Type: "integer", Minimum: floatPtr(0)},
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

// SchemaJSON returns the JSON Schema as an indented JSON string.
func SchemaJSON() (string, error) {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
