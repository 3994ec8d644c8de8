// Package legacy imports the YAML database written by earlier releases of the
// bot into a storage backend.
package legacy

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/fate/internal/game/key"
)

// Document is the legacy file layout. Owner and user ids are numeric in
// older files and are read as strings.
type Document struct {
	FastChannels []string           `yaml:"Fast Channels"`
	Profiles     map[string]Profile `yaml:"Profiles"`
	Users        map[string]User    `yaml:"Users"`
}

// Profile is one legacy profile keyed by its name.
type Profile struct {
	Owner string         `yaml:"Owner"`
	Sheet map[string]int `yaml:"Sheet"`
}

// User records the active profile of one owner.
type User struct {
	Profile string `yaml:"Profile"`
}

// Decode reads a Document from r.
//
// Postcondition: Returns a non-nil Document or a non-nil error.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding legacy document: %w", err)
	}
	return &doc, nil
}

// DecodeFile reads a Document from the file at path.
func DecodeFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// decodeKey resolves a legacy sheet key. "Tech-Use" was renamed "Tech Use".
func decodeKey(raw string) (key.Key, bool) {
	if raw == "Tech-Use" {
		raw = "Tech Use"
	}
	return key.ByValue(strings.ToLower(raw))
}
