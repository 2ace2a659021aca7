package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/leculver/typegen/config"
	"github.com/leculver/typegen/diag"
	"github.com/leculver/typegen/provider"
	"github.com/leculver/typegen/symbols"
)

func TestRunEmitsNamespacedPhysicalAndGlobalWrapper(t *testing.T) {
	fake := provider.NewFake()
	fake.AddSymbolWithFields("m", "N::Foo", 8, symbols.TagUDT, []symbols.Field{{Name: "Value", TypeName: "int", Offset: 0}})

	cfg := &config.Config{
		Modules: []config.ModuleDescriptor{{Path: "m.dll", Name: "m", Namespace: "m"}},
		Types:   []string{"N::Foo"},
		Workers: 2,
	}

	p := New(cfg, fake, diag.NewReporter(diag.LogLevelSilent))
	files, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var foundFoo, foundGlobals bool
	for _, f := range files {
		if strings.Contains(f.Source, "class Foo") && strings.Contains(f.Source, "namespace N") {
			foundFoo = true
		}
		if strings.Contains(f.Source, "class mGlobals") && strings.Contains(f.Source, "namespace m") {
			foundGlobals = true
		}
	}
	if !foundFoo {
		t.Fatalf("expected a namespaced Foo wrapper among files: %+v", files)
	}
	if !foundGlobals {
		t.Fatalf("expected the module globals wrapper among files: %+v", files)
	}
}

func TestRunBucketsTemplateFamilyIntoSingleWrapper(t *testing.T) {
	fake := provider.NewFake()
	fake.AddSymbol("m", "N::Vec<int>", 16, symbols.TagUDT)
	fake.AddSymbol("m", "N::Vec<float>", 16, symbols.TagUDT)

	cfg := &config.Config{
		Modules: []config.ModuleDescriptor{{Path: "m.dll", Name: "m", Namespace: "m"}},
		Types:   []string{"N::Vec<int>", "N::Vec<float>"},
	}

	p := New(cfg, fake, diag.NewReporter(diag.LogLevelSilent))
	files, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var vecFile *string
	for i, f := range files {
		if strings.Contains(f.Name, "Vec") {
			vecFile = &files[i].Source
		}
	}
	if vecFile == nil {
		t.Fatalf("expected an emitted file for the Vec family (primary owns its specializations' source): %+v", files)
	}
	if !strings.Contains(*vecFile, "specialization of") {
		t.Fatalf("expected the primary's source to embed both specializations:\n%s", *vecFile)
	}
	if !strings.Contains(*vecFile, "class Vec_int") || !strings.Contains(*vecFile, "class Vec_float") {
		t.Fatalf("expected the two specializations to emit distinctly named classes:\n%s", *vecFile)
	}
}

func TestRunReportsModuleLoadErrorAsFatal(t *testing.T) {
	fake := provider.NewFake()
	fake.FailModule("m", errStr("disk error"))

	cfg := &config.Config{
		Modules: []config.ModuleDescriptor{{Path: "m.dll", Name: "m"}},
		Types:   []string{"N::Foo"},
	}

	p := New(cfg, fake, diag.NewReporter(diag.LogLevelSilent))
	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected a fatal error when a module fails to load")
	}
}

type errStr string

func (e errStr) Error() string { return string(e) }
