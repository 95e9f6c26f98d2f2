// Package config loads the optional per-project `veil.yaml`, which selects
// the pipeline's side-channel output. A missing file means defaults; a
// malformed file is an error the CLI surfaces.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"veil/internal/pipeline"
)

// FileName is the project configuration file looked up next to the source.
const FileName = "veil.yaml"

// File is the on-disk layout of veil.yaml.
type File struct {
	Output pipeline.Options `yaml:"output"`
}

// Load reads the configuration next to the given source file. A missing
// configuration file yields zeroed options and no error.
func Load(sourcePath string) (pipeline.Options, error) {
	path := filepath.Join(filepath.Dir(sourcePath), FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pipeline.Options{}, nil
		}
		return pipeline.Options{}, err
	}
	return Parse(data)
}

// Parse decodes configuration bytes.
func Parse(data []byte) (pipeline.Options, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return pipeline.Options{}, err
	}
	return file.Output, nil
}
