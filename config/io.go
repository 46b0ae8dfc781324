// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cogentcore.org/forcegraph/base/errors"
	"cogentcore.org/forcegraph/base/iox"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// MaxIncludeDepth is the maximum nesting of [Config.Includes],
// which catches include cycles.
const MaxIncludeDepth = 10

// Formats are the config file formats.
type Formats int32

const (
	// TOML is a .toml file.
	TOML Formats = iota

	// YAML is a .yaml or .yml file. Keys are the lowercased field names.
	YAML
)

// ErrUnknownFormat is returned for files with an unknown extension.
var ErrUnknownFormat = errors.New("config: unknown file format, must be .toml, .yaml or .yml")

func (fm Formats) String() string {
	if fm == YAML {
		return "yaml"
	}
	return "toml"
}

// FormatOf returns the format of the given file from its extension.
func FormatOf(filename string) (Formats, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return TOML, ErrUnknownFormat
}

// yamlEncoder closes the yaml encoder after each value to flush it.
type yamlEncoder struct {
	*yaml.Encoder
}

func (ye yamlEncoder) Encode(v any) error {
	return errors.Join(ye.Encoder.Encode(v), ye.Encoder.Close())
}

func (fm Formats) decoder() iox.DecoderFunc {
	if fm == YAML {
		return iox.NewDecoderFunc(yaml.NewDecoder)
	}
	return iox.NewDecoderFunc(toml.NewDecoder)
}

func (fm Formats) encoder() iox.EncoderFunc {
	if fm == YAML {
		return func(w io.Writer) iox.Encoder {
			en := yaml.NewEncoder(w)
			en.SetIndent(2)
			return yamlEncoder{en}
		}
	}
	return iox.NewEncoderFunc(toml.NewEncoder)
}

// openFile decodes the single file into cfg, leaving the fields
// it does not set unchanged.
func openFile(cfg *Config, filename string) error {
	fm, err := FormatOf(filename)
	if err != nil {
		return err
	}
	err = iox.Open(cfg, filename, fm.decoder())
	if fm == YAML && errors.Is(err, io.EOF) {
		return nil // empty document
	}
	return err
}

// Open reads the given config file into cfg, first opening its
// [Config.Includes] so that the file overrides them. A leading ~
// in file names is the home directory. Fields that are
// not set by any of the files are left unchanged, so cfg is normally
// made by [New]. The format is given by the extension.
func Open(cfg *Config, filename string) error {
	if err := openIncludes(cfg, filename, 0); err != nil {
		return fmt.Errorf("config.Open %s: %w", filename, err)
	}
	return nil
}

func openIncludes(cfg *Config, filename string, depth int) error {
	if depth > MaxIncludeDepth {
		return fmt.Errorf("includes nested more than %d deep at %s", MaxIncludeDepth, filename)
	}
	filename, err := homedir.Expand(filename)
	if err != nil {
		return err
	}
	var probe Config
	if err := openFile(&probe, filename); err != nil {
		return err
	}
	dir := filepath.Dir(filename)
	for _, inc := range probe.Includes {
		if !filepath.IsAbs(inc) && !strings.HasPrefix(inc, "~") {
			inc = filepath.Join(dir, inc)
		}
		if err := openIncludes(cfg, inc, depth+1); err != nil {
			return fmt.Errorf("include %s: %w", inc, err)
		}
	}
	return openFile(cfg, filename)
}

// Load returns the config of the given file on top of the defaults
// for the dimensions that the file sets, 2 if it does not.
func Load(filename string) (*Config, error) {
	var probe Config
	if err := Open(&probe, filename); err != nil {
		return nil, err
	}
	dims := probe.Simulation.Dims
	if dims == 0 {
		dims = 2
	}
	cfg := New(dims)
	if err := Open(cfg, filename); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given file, in the format
// given by its extension.
func Save(cfg *Config, filename string) error {
	fm, err := FormatOf(filename)
	if err != nil {
		return err
	}
	if err := iox.Save(cfg, filename, fm.encoder()); err != nil {
		return fmt.Errorf("config.Save %s: %w", filename, err)
	}
	return nil
}

// Write writes the config to the writer in the given format.
func Write(cfg *Config, w io.Writer, fm Formats) error {
	return iox.Write(cfg, w, fm.encoder())
}
