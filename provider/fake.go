package provider

import (
	"fmt"
	"path"
	"strings"

	"github.com/leculver/typegen/symbols"
)

// fakeSymbolSpec is the declarative description of a symbol used to
// seed a Fake provider in tests.
type fakeSymbolSpec struct {
	Name     string
	Size     uint64
	Tag      symbols.Tag
	Fields   []symbols.Field
	Bases    []symbols.BaseClass
	EnumVals []symbols.EnumValue
}

// Fake is an in-memory Provider used by tests and by the literal
// end-to-end scenarios of spec.md §8. Symbols are registered per module
// name via AddSymbol before the module is opened.
type Fake struct {
	modules map[string]*symbols.Module
	symbols map[string][]*fakeSymbolSpec
	fails   map[string]error
}

// NewFake creates an empty Fake provider.
func NewFake() *Fake {
	return &Fake{
		modules: make(map[string]*symbols.Module),
		symbols: make(map[string][]*fakeSymbolSpec),
		fails:   make(map[string]error),
	}
}

// AddSymbol registers a symbol to be returned when moduleName is opened
// and enumerated.
func (f *Fake) AddSymbol(moduleName, name string, size uint64, tag symbols.Tag) *Fake {
	f.symbols[moduleName] = append(f.symbols[moduleName], &fakeSymbolSpec{Name: name, Size: size, Tag: tag})
	return f
}

// AddSymbolWithFields is like AddSymbol but also attaches field
// descriptors, used to exercise field-type link resolution.
func (f *Fake) AddSymbolWithFields(moduleName, name string, size uint64, tag symbols.Tag, fields []symbols.Field) *Fake {
	f.symbols[moduleName] = append(f.symbols[moduleName], &fakeSymbolSpec{Name: name, Size: size, Tag: tag, Fields: fields})
	return f
}

// FailModule causes OpenModule(moduleName) to return err.
func (f *Fake) FailModule(moduleName string, err error) *Fake {
	f.fails[moduleName] = err
	return f
}

// OpenModule implements Provider.
func (f *Fake) OpenModule(cfg ModuleConfig) (*symbols.Module, error) {
	name := cfg.Name
	if name == "" {
		name = strings.TrimSuffix(path.Base(cfg.Path), path.Ext(cfg.Path))
	}

	if err, ok := f.fails[name]; ok {
		return nil, &ModuleLoadError{Module: name, Err: err}
	}

	mod := &symbols.Module{
		ID:        uint64(len(f.modules) + 1),
		Name:      name,
		Namespace: cfg.Namespace,
	}
	mod.GlobalScope = symbols.New(fmt.Sprintf("%s::$global", name), 0, symbols.TagUDT, mod, nil, f)

	f.modules[name] = mod
	return mod, nil
}

// FindGlobalTypeWildcard implements Provider. The Fake treats every
// pattern as matching every registered symbol whose name starts with the
// pattern's prefix up to a trailing "*", or matches exactly otherwise.
func (f *Fake) FindGlobalTypeWildcard(mod *symbols.Module, pattern string) ([]*symbols.Symbol, error) {
	var out []*symbols.Symbol
	prefix := strings.TrimSuffix(pattern, "*")
	wild := strings.HasSuffix(pattern, "*")

	for _, spec := range f.symbols[mod.Name] {
		if wild && strings.HasPrefix(spec.Name, prefix) || !wild && spec.Name == pattern {
			out = append(out, f.materialize(mod, spec))
		}
	}
	return out, nil
}

// GetAllTypes implements Provider.
func (f *Fake) GetAllTypes(mod *symbols.Module) ([]*symbols.Symbol, error) {
	specs := f.symbols[mod.Name]
	out := make([]*symbols.Symbol, len(specs))
	for i, spec := range specs {
		out[i] = f.materialize(mod, spec)
	}
	return out, nil
}

func (f *Fake) materialize(mod *symbols.Module, spec *fakeSymbolSpec) *symbols.Symbol {
	return symbols.New(spec.Name, spec.Size, spec.Tag, mod, spec, f)
}

// Fields implements symbols.FieldSource.
func (f *Fake) Fields(handle any) ([]symbols.Field, error) {
	spec, ok := handle.(*fakeSymbolSpec)
	if !ok {
		return nil, nil
	}
	return spec.Fields, nil
}

// BaseClasses implements symbols.FieldSource.
func (f *Fake) BaseClasses(handle any) ([]symbols.BaseClass, error) {
	spec, ok := handle.(*fakeSymbolSpec)
	if !ok {
		return nil, nil
	}
	return spec.Bases, nil
}

// EnumValues implements symbols.FieldSource.
func (f *Fake) EnumValues(handle any) ([]symbols.EnumValue, error) {
	spec, ok := handle.(*fakeSymbolSpec)
	if !ok {
		return nil, nil
	}
	return spec.EnumVals, nil
}
