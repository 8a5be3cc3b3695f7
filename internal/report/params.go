package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/compensa/internal/config"
	"github.com/okian/compensa/internal/domain/model"
)

// LoadParams reads compensation parameters from a YAML or JSON file. Keys
// match the JSON config accepted by the HTTP API. Numbers keep their literal
// text in both formats.
func LoadParams(path string) (model.Config, error) {
	var cfg model.Config

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := file.Provider(path).ReadBytes()
		if err != nil {
			return cfg, fmt.Errorf("load params %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode params %s: %w", path, err)
		}
		return cfg, nil
	}

	k := koanf.New("::")
	if err := k.Load(file.Provider(path), config.YAMLParser()); err != nil {
		return cfg, fmt.Errorf("load params %s: %w", path, err)
	}

	// The parser yields json.Number for numeric scalars, so this round trip
	// hands decimals their original text.
	raw, err := json.Marshal(k.Raw())
	if err != nil {
		return cfg, fmt.Errorf("encode params %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode params %s: %w", path, err)
	}
	return cfg, nil
}
