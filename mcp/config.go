package mcp

import "time"

// Config controls the directory MCP server behaviour.
type Config struct {
	// DataDir overrides where the cache file and imported specs live.
	// Defaults to the user cache directory.
	DataDir string `json:"dataDir,omitempty"`

	// PrimaryURL and SecondaryURL override the upstream directory hosts.
	PrimaryURL   string `json:"primaryURL,omitempty"`
	SecondaryURL string `json:"secondaryURL,omitempty"`

	// CacheTTL is how long fetched snapshots stay fresh. Zero keeps the
	// store default.
	CacheTTL time.Duration `json:"cacheTTL,omitempty"`

	// If true, return tool results in the structured `data` field instead
	// of `text`.
	UseData bool `json:"useData,omitempty"`
}
