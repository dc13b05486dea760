package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/roster-etl/internal/models"
)

// ConfigReader loads per-class configuration documents from a directory.
type ConfigReader struct {
	validator *validator.Validate
}

// NewConfigReader builds a config reader.
func NewConfigReader(validate *validator.Validate) *ConfigReader {
	if validate == nil {
		validate = validator.New()
	}
	return &ConfigReader{validator: validate}
}

// ReadDir returns one ClassConfig per *.json file in dir, keyed by file stem and
// ordered by file name.
func (r *ConfigReader) ReadDir(dir string) ([]models.ClassConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read config dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	configs := make([]models.ClassConfig, 0, len(names))
	for _, name := range names {
		cfg, err := r.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	return configs, nil
}

// ReadFile decodes a single configuration document; the class name is the file stem.
func (r *ConfigReader) ReadFile(path string) (*models.ClassConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg models.ClassConfig
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	base := filepath.Base(path)
	cfg.Name = strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	for i := range cfg.Subjects {
		cfg.Subjects[i] = strings.TrimSpace(cfg.Subjects[i])
	}
	for i := range cfg.Components {
		cfg.Components[i] = strings.TrimSpace(cfg.Components[i])
	}

	if err := r.validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &cfg, nil
}
