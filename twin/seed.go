package twin

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// Stat is what the twin knows about one name. A nil Age is reported as null.
type Stat struct {
	Age   *int `yaml:"age"`
	Count int  `yaml:"count"`
}

// Key is an API key the twin accepts.
type Key struct {
	Key     string `yaml:"key"`
	Limit   int    `yaml:"limit"`
	Expired bool   `yaml:"expired"`
}

// Seed is the twin's whole dataset.
type Seed struct {
	Names     map[string]Stat            `yaml:"names"`
	Countries map[string]map[string]Stat `yaml:"countries"`
	Keys      []Key                      `yaml:"keys"`
}

// DefaultSeed returns the dataset embedded in the binary.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed parses YAML seed data. Names and country codes are normalized so that lookups
// are case-insensitive.
func ParseSeed(data []byte) (*Seed, error) {
	var raw Seed
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	s := &Seed{
		Names:     normalizeNames(raw.Names),
		Countries: make(map[string]map[string]Stat, len(raw.Countries)),
		Keys:      raw.Keys,
	}
	for country, names := range raw.Countries {
		s.Countries[strings.ToUpper(country)] = normalizeNames(names)
	}
	for _, k := range s.Keys {
		if k.Key == "" {
			return nil, fmt.Errorf("parsing seed: key entry with empty key")
		}
	}
	return s, nil
}

func normalizeNames(in map[string]Stat) map[string]Stat {
	out := make(map[string]Stat, len(in))
	for name, stat := range in {
		out[strings.ToLower(name)] = stat
	}
	return out
}

// Lookup returns the stat for a name, optionally within a country. Unknown names have a
// null age and a count of zero.
func (s *Seed) Lookup(name, country string) Stat {
	names := s.Names
	if country != "" {
		names = s.Countries[strings.ToUpper(country)]
	}
	if stat, ok := names[strings.ToLower(name)]; ok {
		return stat
	}
	return Stat{}
}

// FindKey returns the key entry for an API key.
func (s *Seed) FindKey(apiKey string) (Key, bool) {
	for _, k := range s.Keys {
		if k.Key == apiKey {
			return k, true
		}
	}
	return Key{}, false
}

// FirstKey returns the first key that is, or is not, expired.
func (s *Seed) FirstKey(expired bool) (string, bool) {
	for _, k := range s.Keys {
		if k.Expired == expired {
			return k.Key, true
		}
	}
	return "", false
}
