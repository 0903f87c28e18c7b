package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed kolkata.yml
var sampleYAML []byte

// File is the on-disk YAML layout of a catalog.
type File struct {
	Stops  map[string]Coordinate `yaml:"stops"`
	Routes []RouteSpec           `yaml:"routes"`
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f.Routes, f.Stops), nil
}

// LoadFile reads and decodes a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Marshal encodes c in the YAML layout accepted by Parse.
func Marshal(c *Catalog) ([]byte, error) {
	return yaml.Marshal(File{Stops: c.Coordinates(), Routes: c.Specs()})
}

// Sample returns the built-in Kolkata network.
func Sample() *Catalog {
	c, err := Parse(sampleYAML)
	if err != nil {
		panic("catalog: embedded sample is invalid: " + err.Error())
	}
	return c
}
