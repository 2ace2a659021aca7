// Package provider declares the SymbolProvider collaborator interface
// consumed by the pipeline (spec.md §6). The provider itself -- a real
// PDB reader -- is out of scope for this module; only the interface, an
// in-memory fake for tests, and the always-failing Unimplemented default
// live here.
package provider

import (
	"github.com/leculver/typegen/symbols"
)

// ModuleConfig is the per-module descriptor from the configuration
// record (spec.md §6's `modules[]`).
type ModuleConfig struct {
	Path      string
	Name      string
	Namespace string
}

// Provider supplies modules, symbols, fields, and base classes to the
// pipeline. A real implementation reads a PDB; provider.Fake is an
// in-memory stand-in used by tests.
type Provider interface {
	// OpenModule opens a single native module described by cfg. Failure
	// here is fatal to the whole pipeline (spec.md §7, ModuleLoadError).
	OpenModule(cfg ModuleConfig) (*symbols.Module, error)

	// FindGlobalTypeWildcard returns every global-scope symbol whose
	// name matches pattern. An empty result is not an error -- the
	// caller logs SymbolNotFound and continues.
	FindGlobalTypeWildcard(mod *symbols.Module, pattern string) ([]*symbols.Symbol, error)

	// GetAllTypes returns every symbol known to the module regardless
	// of the configured wildcard patterns.
	GetAllTypes(mod *symbols.Module) ([]*symbols.Symbol, error)
}

// ModuleLoadError wraps a failure to open a module (spec.md §7).
type ModuleLoadError struct {
	Module string
	Err    error
}

func (e *ModuleLoadError) Error() string {
	return "failed to load module " + e.Module + ": " + e.Err.Error()
}

func (e *ModuleLoadError) Unwrap() error { return e.Err }

// unimplementedErr is returned by every Unimplemented method.
type unimplementedErr struct{}

func (unimplementedErr) Error() string {
	return "no SymbolProvider is wired into this build; a real PDB reader must be supplied by the embedder"
}

// Unimplemented is the zero-value Provider used when no real PDB reader
// has been wired in: every call fails with a clear error rather than a
// nil-pointer panic.
type Unimplemented struct{}

// OpenModule implements Provider.
func (Unimplemented) OpenModule(cfg ModuleConfig) (*symbols.Module, error) {
	return nil, &ModuleLoadError{Module: cfg.Name, Err: unimplementedErr{}}
}

// FindGlobalTypeWildcard implements Provider.
func (Unimplemented) FindGlobalTypeWildcard(mod *symbols.Module, pattern string) ([]*symbols.Symbol, error) {
	return nil, unimplementedErr{}
}

// GetAllTypes implements Provider.
func (Unimplemented) GetAllTypes(mod *symbols.Module) ([]*symbols.Symbol, error) {
	return nil, unimplementedErr{}
}
