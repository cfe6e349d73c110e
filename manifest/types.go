package manifest

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

const (
	// Provider is the fixed first segment of every custom spec id.
	Provider = "custom"

	manifestVersion = "1.0.0"
)

// Entry is one imported custom specification. The manifest stores metadata
// only; spec content lives in its own file per (name, version).
type Entry struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Version        string    `json:"version"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Imported       time.Time `json:"imported"`
	SourceType     string    `json:"sourceType"`
	OriginalFormat string    `json:"originalFormat"`
	FileSize       int64     `json:"fileSize"`
}

// Manifest is the authoritative index of locally stored custom specs.
type Manifest struct {
	Version     string           `json:"version"`
	Specs       map[string]Entry `json:"specs"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

func newManifest() *Manifest {
	return &Manifest{
		Version: manifestVersion,
		Specs:   map[string]Entry{},
	}
}

// MakeID builds a custom spec id. The grammar is
// "custom:<name>:<version>" with exactly two colons.
func MakeID(name, version string) string {
	return fmt.Sprintf("%s:%s:%s", Provider, name, version)
}

// ParseID splits a custom spec id into name and version. It rejects any id
// that does not decompose into exactly three segments starting with
// "custom".
func ParseID(id string) (name, version string, err error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != Provider || parts[1] == "" || parts[2] == "" {
		return "", "", xerrors.Errorf("malformed custom spec id: %s", id)
	}
	return parts[1], parts[2], nil
}
