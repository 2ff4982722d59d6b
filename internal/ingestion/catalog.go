package ingestion

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog defines the value domains the trip generator draws from.
type Catalog struct {
	Cities []string `yaml:"cities"`
	Zones  []string `yaml:"zones"`
}

// DefaultCatalog returns the built-in city and zone sets.
func DefaultCatalog() Catalog {
	return Catalog{
		Cities: []string{"Paris", "Lyon", "Marseille", "Toulouse", "Bordeaux"},
		Zones:  []string{"Zone A", "Zone B", "Zone C", "Zone D", "Zone E"},
	}
}

// LoadCatalog reads a YAML catalog file and validates it.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse YAML catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// Validate checks the catalog has at least one city and one zone and no
// blank entries.
func (c Catalog) Validate() error {
	if len(c.Cities) == 0 {
		return fmt.Errorf("catalog must list at least one city")
	}
	if len(c.Zones) == 0 {
		return fmt.Errorf("catalog must list at least one zone")
	}
	for _, city := range c.Cities {
		if strings.TrimSpace(city) == "" {
			return fmt.Errorf("catalog contains a blank city entry")
		}
	}
	for _, zone := range c.Zones {
		if strings.TrimSpace(zone) == "" {
			return fmt.Errorf("catalog contains a blank zone entry")
		}
	}
	return nil
}
