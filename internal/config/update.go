package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/backlight/internal/errors"
	"gopkg.in/yaml.v3"
)

// SaveTVIP writes tv_ip into the config file at configPath.
// It preserves the existing YAML structure and comments, and creates the
// file when it doesn't exist yet.
func SaveTVIP(configPath, ip string) error {
	return setScalar(configPath, "tv_ip", ip)
}

// setScalar sets a top-level string key in the YAML document at configPath.
func setScalar(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check permissions on "+configPath)
	}

	var root yaml.Node
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &root); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to parse config file",
				"Fix the YAML syntax in "+configPath)
		}
	}

	if root.Kind == 0 {
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return errors.New(errors.ErrConfig,
			"Invalid YAML document structure in "+configPath,
			"Delete the file and run setup again")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			"Expected a mapping at the top of "+configPath,
			"The config file should contain key: value pairs")
	}

	if valueNode := findMapValue(docNode, key); valueNode != nil {
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = "!!str"
		valueNode.Value = value
		valueNode.Style = 0
		valueNode.Content = nil
	} else {
		docNode.Content = append(docNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
		)
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to create config directory",
			"Check permissions on "+filepath.Dir(configPath))
	}

	if err := os.WriteFile(configPath, []byte(buf.String()), 0600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check permissions on "+configPath)
	}

	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

// FileStore loads and persists settings in a single YAML file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store for path, or DefaultPath when path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{Path: path}
}

// Load reads the current settings from disk.
func (f *FileStore) Load() (Settings, error) {
	return Load(f.Path)
}

// SaveTVIP persists the TV address.
func (f *FileStore) SaveTVIP(ip string) error {
	return SaveTVIP(f.Path, ip)
}

// Render returns s as a YAML document using the config file keys.
func Render(s Settings) ([]byte, error) {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	encoder.Close()
	return []byte(buf.String()), nil
}

// WriteIfMissing seeds configPath with s when no config file exists yet.
func WriteIfMissing(configPath string, s Settings) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}
	data, err := Render(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to create config directory",
			"Check permissions on "+filepath.Dir(configPath))
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check permissions on "+configPath)
	}
	return nil
}
