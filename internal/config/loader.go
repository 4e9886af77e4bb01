package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Loader reads a configuration file in one format.
type Loader interface {
	Load(ctx context.Context, path string) (*File, error)
}

// LoaderFor picks a loader by file extension.
func LoaderFor(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return HCLLoader{Environ: os.Environ}, nil
	case ".yaml", ".yml":
		return YAMLLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported config file %q: expected .hcl, .yaml or .yml", path)
	}
}

// Load returns Default overlaid with the file at path, validated. An empty
// path yields the validated defaults.
func Load(ctx context.Context, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, Validate(cfg)
	}

	loader, err := LoaderFor(path)
	if err != nil {
		return Config{}, err
	}
	f, err := loader.Load(ctx, path)
	if err != nil {
		return Config{}, err
	}
	if err := f.Apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HCLLoader reads HCL files. Environ supplies the env object visible to
// expressions.
type HCLLoader struct {
	Environ func() []string
}

// Load parses and decodes a single HCL config file.
func (l HCLLoader) Load(ctx context.Context, path string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding config file.", "path", path, "format", "hcl")

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}

	var f File
	diags = gohcl.DecodeBody(file.Body, l.evalContext(), &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
	}

	logger.Debug("Successfully decoded config file.", "path", path)
	return &f, nil
}

func (l HCLLoader) evalContext() *hcl.EvalContext {
	vars := map[string]cty.Value{}
	if l.Environ != nil {
		for _, kv := range l.Environ() {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || name == "" {
				continue
			}
			vars[name] = cty.StringVal(value)
		}
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// YAMLLoader reads YAML files.
type YAMLLoader struct{}

// Load parses a single YAML config file. Unknown keys are rejected.
func (YAMLLoader) Load(ctx context.Context, path string) (*File, error) {
	ctxlog.FromContext(ctx).Debug("Decoding config file.", "path", path, "format", "yaml")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	return &f, nil
}
