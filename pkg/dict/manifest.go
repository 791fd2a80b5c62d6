package dict

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest describes a dataset: its source, default dialect, and how to read
// its data file.
type Manifest struct {
	ID             string     `yaml:"id" json:"id"`
	Version        string     `yaml:"version" json:"version"`
	Dialect        string     `yaml:"dialect" json:"dialect,omitempty"`
	Source         string     `yaml:"source" json:"source"`
	SourceURL      string     `yaml:"source_url" json:"source_url,omitempty"`
	License        string     `yaml:"license" json:"license"`
	DataFile       string     `yaml:"data_file" json:"data_file"`
	Format         FormatSpec `yaml:"format" json:"-"`
	MandarinPinyin bool       `yaml:"mandarin_pinyin" json:"mandarin_pinyin,omitempty"`
}

// FormatSpec describes the CSV layout. It is ignored for JSON data files.
type FormatSpec struct {
	Delimiter     string `yaml:"delimiter"`
	Encoding      string `yaml:"encoding"`
	HasHeader     *bool  `yaml:"has_header"`
	ListSeparator string `yaml:"list_separator"`
}

// DefaultListSeparator splits multi-valued CSV cells.
const DefaultListSeparator = "|"

func (f FormatSpec) delimiter() rune {
	if f.Delimiter == "" {
		return ','
	}
	return []rune(f.Delimiter)[0]
}

func (f FormatSpec) listSeparator() string {
	if f.ListSeparator == "" {
		return DefaultListSeparator
	}
	return f.ListSeparator
}

func (f FormatSpec) hasHeader() bool {
	return f.HasHeader == nil || *f.HasHeader
}

// LoadManifest reads and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.ID = strings.TrimSpace(m.ID)
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", path)
	}
	if m.DataFile == "" {
		m.DataFile = "entries.json"
	}
	return &m, nil
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
