package main

import (
	"fmt"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// loadFile reads a YAML or JSON document. JSON is parsed by the YAML parser
// as a subset of YAML.
func loadFile(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(filepath.Clean(path)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return k, nil
}

func unmarshalKey(k *koanf.Koanf, key string, out any) error {
	if err := k.UnmarshalWithConf(key, out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
