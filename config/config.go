// Package config loads and validates the pipeline's configuration
// record (spec.md §6) from a TOML document, following the teacher's
// wire-struct-then-domain-struct pattern for module manifests.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/leculver/typegen/usertype"
)

// ModuleDescriptor is one entry of the configured module list.
type ModuleDescriptor struct {
	Path      string
	Name      string
	Namespace string
}

// Transformation is one ordered textual rewrite applied to type names
// at emit time.
type Transformation struct {
	Pattern     string
	Replacement string
}

// Config is the domain-level configuration record consumed by the
// pipeline, mirroring spec.md §6's configuration table.
type Config struct {
	Modules               []ModuleDescriptor
	Types                 []string
	Transformations       []Transformation
	CommonTypesNamespace  string
	GenerationFlags       usertype.Flags
	GeneratedAssemblyName string
	IncludedFiles         []string
	ReferencedAssemblies  []string
	GeneratedPropsFile    string
	DisablePdbGeneration  bool

	// Workers bounds the pipeline's shared worker pool; the original
	// system leaves this implicit as "however many threads the runtime
	// provides." Zero means "let the pipeline pick a default."
	Workers int
}

// tomlConfig is the wire shape unmarshaled directly from the TOML
// document, mirroring mods.tomlModuleFile / tomlModule.
type tomlConfig struct {
	Modules []struct {
		Path      string `toml:"path"`
		Name      string `toml:"name"`
		Namespace string `toml:"namespace"`
	} `toml:"modules"`
	Types           []string `toml:"types"`
	Transformations []struct {
		Pattern     string `toml:"pattern"`
		Replacement string `toml:"replacement"`
	} `toml:"transformations"`
	CommonTypesNamespace  string   `toml:"commonTypesNamespace"`
	SingleFileExport      bool     `toml:"singleFileExport"`
	CompressedOutput      bool     `toml:"compressedOutput"`
	GeneratedAssemblyName string   `toml:"generatedAssemblyName"`
	IncludedFiles         []string `toml:"includedFiles"`
	ReferencedAssemblies  []string `toml:"referencedAssemblies"`
	GeneratedPropsFile    string   `toml:"generatedPropsFileName"`
	DisablePdbGeneration  bool     `toml:"disablePdbGeneration"`
	Workers               int      `toml:"workers"`
}

// ConfigurationError is returned for invalid configuration or missing
// included files (spec.md §7).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// Load reads and validates the configuration record at path.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	tc := &tomlConfig{}
	if err := toml.Unmarshal(buf, tc); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	cfg := fromTOML(tc)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromTOML(tc *tomlConfig) *Config {
	cfg := &Config{
		Types:                 tc.Types,
		CommonTypesNamespace:  tc.CommonTypesNamespace,
		GeneratedAssemblyName: tc.GeneratedAssemblyName,
		IncludedFiles:         tc.IncludedFiles,
		ReferencedAssemblies:  tc.ReferencedAssemblies,
		GeneratedPropsFile:    tc.GeneratedPropsFile,
		DisablePdbGeneration:  tc.DisablePdbGeneration,
		Workers:               tc.Workers,
	}

	for _, m := range tc.Modules {
		cfg.Modules = append(cfg.Modules, ModuleDescriptor{Path: m.Path, Name: m.Name, Namespace: m.Namespace})
	}
	for _, t := range tc.Transformations {
		cfg.Transformations = append(cfg.Transformations, Transformation{Pattern: t.Pattern, Replacement: t.Replacement})
	}

	if tc.SingleFileExport {
		cfg.GenerationFlags |= usertype.FlagSingleFileExport
	}
	if tc.CompressedOutput {
		cfg.GenerationFlags |= usertype.FlagCompressedOutput
	}

	return cfg
}

// Validate checks configuration invariants: at least one module, and
// every included file exists on disk.
func Validate(cfg *Config) error {
	if len(cfg.Modules) == 0 {
		return &ConfigurationError{Reason: "no modules configured"}
	}

	for _, name := range cfg.IncludedFiles {
		if _, err := os.Stat(name); err != nil {
			return &ConfigurationError{Reason: fmt.Sprintf("included file %q not found: %v", name, err)}
		}
	}

	return nil
}
