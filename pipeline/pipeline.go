// Package pipeline orchestrates the phased symbol-to-type-graph
// pipeline of spec.md §4.7: parallel module loading and enumeration,
// single-threaded deduplication, parallel collection, and single-threaded
// materialization/link/post-process and emission (emit.Emitter renders
// types one after another, in a sorted order; emission is not
// parallelized). Grounded
// on build.Compiler.Analyze's phase sequencing and batched fan-out,
// generalized from a per-batch sync.WaitGroup to bounded, cancellable
// concurrency via golang.org/x/sync/errgroup and the workpool package.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leculver/typegen/cache"
	"github.com/leculver/typegen/config"
	"github.com/leculver/typegen/dedup"
	"github.com/leculver/typegen/diag"
	"github.com/leculver/typegen/emit"
	"github.com/leculver/typegen/factory"
	"github.com/leculver/typegen/pipeline/workpool"
	"github.com/leculver/typegen/provider"
	"github.com/leculver/typegen/symbolname"
	"github.com/leculver/typegen/symbols"
	"github.com/leculver/typegen/usertype"
)

const defaultWorkers = 8

// PipelineError wraps a fatal condition that aborted the run, per
// spec.md §5's cancellation policy.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline aborted in phase %s: %v", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Pipeline drives one end-to-end generation run.
type Pipeline struct {
	Config   *config.Config
	Provider provider.Provider
	Reporter *diag.Reporter

	pool *workpool.Pool
}

// New constructs a Pipeline over cfg, backed by prov and reporting
// diagnostics to rep.
func New(cfg *config.Config, prov provider.Provider, rep *diag.Reporter) *Pipeline {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Pipeline{Config: cfg, Provider: prov, Reporter: rep, pool: workpool.New(workers)}
}

// moduleEntry pairs an opened Module with its configured descriptor.
type moduleEntry struct {
	mod  *symbols.Module
	desc config.ModuleDescriptor
}

// Run executes every phase and returns the final emittable files.
func (p *Pipeline) Run(ctx context.Context) ([]emit.File, error) {
	modules, err := p.loadModules(ctx)
	if err != nil {
		return nil, err
	}

	allSymbols, err := p.enumerateSymbols(ctx, modules)
	if err != nil {
		return nil, err
	}

	dedupResult := dedup.Deduplicate(dedup.Config{CommonNamespace: p.Config.CommonTypesNamespace}, allSymbols)

	c := cache.New()
	c.Update(buildCacheTable(dedupResult))

	simple, families, err := p.collectTypes(ctx, dedupResult)
	if err != nil {
		return nil, err
	}

	var transformations []factory.Transformation
	for _, t := range p.Config.Transformations {
		transformations = append(transformations, factory.Transformation{Pattern: t.Pattern, Replacement: t.Replacement})
	}
	f := factory.New(c, transformations)

	physicals, enums, primaries, globals, err := p.materialize(f, modules, simple, families, dedupResult)
	if err != nil {
		return nil, err
	}

	p.link(f, physicals, primaries, globals)

	roots := p.postProcess(physicals, enums, primaries, globals)

	emitter := emit.New(f, p.Config.GenerationFlags)
	files, err := emitter.EmitAll(roots)
	if err != nil {
		p.Reporter.Report(&diag.Diagnostic{Kind: diag.KindEmitError, Severity: diag.SeverityError, Message: err.Error(), Context: diag.Context{Phase: "Emit"}})
		return nil, &PipelineError{Phase: "Emit", Err: err}
	}

	return files, nil
}

// P1. Load modules in parallel; a load failure aborts the pipeline.
func (p *Pipeline) loadModules(ctx context.Context) ([]moduleEntry, error) {
	diag.BeginPhase("Load")

	entries := make([]moduleEntry, len(p.Config.Modules))
	g, gctx := errgroup.WithContext(ctx)

	for i, desc := range p.Config.Modules {
		i, desc := i, desc
		g.Go(func() error {
			if err := p.pool.Acquire(gctx); err != nil {
				return err
			}
			defer p.pool.Release()

			mod, err := p.Provider.OpenModule(provider.ModuleConfig{Path: desc.Path, Name: desc.Name, Namespace: desc.Namespace})
			if err != nil {
				return err
			}
			entries[i] = moduleEntry{mod: mod, desc: desc}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		diag.EndPhase(false)
		p.Reporter.Report(&diag.Diagnostic{Kind: diag.KindModuleLoadError, Severity: diag.SeverityError, Message: err.Error(), Context: diag.Context{Phase: "Load"}})
		return nil, &PipelineError{Phase: "Load", Err: err}
	}

	diag.EndPhase(true)
	return entries, nil
}

// P2. Enumerate symbols per module, then interleave them round-robin
// into a single global list; this ordering is an invariant that
// determines dedup tie-breaks (spec.md §4.7 P2).
func (p *Pipeline) enumerateSymbols(ctx context.Context, modules []moduleEntry) ([]*symbols.Symbol, error) {
	diag.BeginPhase("Enumerate")

	perModule := make([][]*symbols.Symbol, len(modules))
	g, gctx := errgroup.WithContext(ctx)

	for i, entry := range modules {
		i, entry := i, entry
		g.Go(func() error {
			if err := p.pool.Acquire(gctx); err != nil {
				return err
			}
			defer p.pool.Release()

			seen := make(map[*symbols.Symbol]bool)
			var out []*symbols.Symbol

			for _, pattern := range p.Config.Types {
				matches, err := p.Provider.FindGlobalTypeWildcard(entry.mod, pattern)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					p.Reporter.Report(&diag.Diagnostic{
						Kind: diag.KindSymbolNotFound, Severity: diag.SeverityWarning,
						Message: fmt.Sprintf("no symbols matched wildcard %q", pattern),
						Context: diag.Context{Phase: "Enumerate", Module: entry.desc.Name},
					})
					continue
				}
				for _, sym := range matches {
					if !seen[sym] {
						seen[sym] = true
						out = append(out, sym)
					}
				}
			}

			all, err := p.Provider.GetAllTypes(entry.mod)
			if err != nil {
				return err
			}
			for _, sym := range all {
				if !seen[sym] {
					seen[sym] = true
					out = append(out, sym)
				}
			}

			perModule[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		diag.EndPhase(false)
		return nil, &PipelineError{Phase: "Enumerate", Err: err}
	}

	diag.EndPhase(true)
	return interleave(perModule), nil
}

// interleave merges per-module symbol lists round-robin: symbol j from
// module i precedes symbol j+1 from module 0.
func interleave(perModule [][]*symbols.Symbol) []*symbols.Symbol {
	var out []*symbols.Symbol
	for j := 0; ; j++ {
		any := false
		for i := range perModule {
			if j < len(perModule[i]) {
				out = append(out, perModule[i][j])
				any = true
			}
		}
		if !any {
			break
		}
	}
	return out
}

func buildCacheTable(result *dedup.Result) map[string][]*symbols.Symbol {
	table := make(map[string][]*symbols.Symbol, len(result.GroupsByName))
	for name, groups := range result.GroupsByName {
		var entries []*symbols.Symbol
		for _, g := range groups {
			entries = append(entries, g.Representative)
			entries = append(entries, g.Duplicates...)
		}
		table[name] = entries
	}
	return table
}

// familyBucket accumulates the members of one template family in
// first-insertion order (spec.md §5's append-only template map).
type familyBucket struct {
	namespace string
	members   []*symbols.Symbol
}

// P5. Collect: filter, then bucket surviving UDTs into template
// families or simple types.
func (p *Pipeline) collectTypes(ctx context.Context, result *dedup.Result) ([]*symbols.Symbol, map[string]*familyBucket, error) {
	diag.BeginPhase("Collect")

	var names []string
	for name := range result.GroupsByName {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	var simple []*symbols.Symbol
	families := make(map[string]*familyBucket)

	g, _ := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			for _, grp := range result.GroupsByName[name] {
				sym := grp.Representative
				if isFiltered(sym.Name) {
					continue
				}

				pn, err := symbolname.Parse(sym.Name)
				if err != nil {
					p.Reporter.Report(&diag.Diagnostic{
						Kind: diag.KindNameSyntaxError, Severity: diag.SeverityWarning,
						Message: err.Error(), Context: diag.Context{Phase: "Collect", Symbol: sym.Name},
					})
					continue
				}
				if len(pn.Scopes) > 0 && strings.HasPrefix(pn.Scopes[len(pn.Scopes)-1].BareName, "<") {
					continue
				}

				if sym.Tag == symbols.TagUDT && pn.IsTemplate() {
					key := result.Namespaces[sym] + "::" + pn.FamilyName()
					mu.Lock()
					b, ok := families[key]
					if !ok {
						b = &familyBucket{namespace: result.Namespaces[sym]}
						families[key] = b
					}
					b.members = append(b.members, sym)
					mu.Unlock()
				} else {
					mu.Lock()
					simple = append(simple, sym)
					mu.Unlock()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		diag.EndPhase(false)
		return nil, nil, &PipelineError{Phase: "Collect", Err: err}
	}

	diag.EndPhase(true)
	return simple, families, nil
}

// isFiltered implements spec.md §4.7 P5's filter predicate.
func isFiltered(name string) bool {
	if strings.HasPrefix(name, "$") {
		return true
	}
	if strings.Contains(name, "__vc_attributes") {
		return true
	}
	if strings.ContainsAny(name, "`&") {
		return true
	}
	// A last top-level scope starting with "<" is compiler-synthesized
	// (anonymous UDT, lambda); symbolname.Parse rejects such a scope, so
	// the check is textual and runs before parsing.
	last, depth := 0, 0
	for i := 0; i+1 < len(name); i++ {
		switch {
		case name[i] == '<':
			depth++
		case name[i] == '>':
			depth--
		case depth == 0 && name[i] == ':' && name[i+1] == ':':
			last = i + 2
		}
	}
	return strings.HasPrefix(name[last:], "<")
}

// P6. Materialize: single-threaded construction of UserTypes.
func (p *Pipeline) materialize(f *factory.UserTypeFactory, modules []moduleEntry, simple []*symbols.Symbol, families map[string]*familyBucket, result *dedup.Result) ([]*usertype.PhysicalUserType, []*usertype.EnumUserType, []*usertype.TemplateUserType, []*usertype.GlobalUserType, error) {
	diag.BeginPhase("Materialize")

	var physicals []*usertype.PhysicalUserType
	var enums []*usertype.EnumUserType
	var globals []*usertype.GlobalUserType

	for _, sym := range simple {
		ns := result.Namespaces[sym]
		switch sym.Tag {
		case symbols.TagUDT, symbols.TagEnum:
			u, err := f.AddSymbol(sym, ns, p.Config.GenerationFlags)
			if err != nil {
				diag.EndPhase(false)
				return nil, nil, nil, nil, &PipelineError{Phase: "Materialize", Err: err}
			}
			switch t := u.(type) {
			case *usertype.PhysicalUserType:
				physicals = append(physicals, t)
			case *usertype.EnumUserType:
				enums = append(enums, t)
			}
		}
	}

	var keys []string
	for k := range families {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var primaries []*usertype.TemplateUserType
	for _, key := range keys {
		bucket := families[key]
		primary, err := f.AddSymbols(bucket.namespace, key, bucket.members, p.Config.GenerationFlags)
		if err != nil {
			diag.EndPhase(false)
			return nil, nil, nil, nil, &PipelineError{Phase: "Materialize", Err: err}
		}
		primaries = append(primaries, primary)
	}

	for _, entry := range modules {
		g, err := f.AddGlobal(entry.mod, entry.desc.Namespace)
		if err != nil {
			diag.EndPhase(false)
			return nil, nil, nil, nil, &PipelineError{Phase: "Materialize", Err: err}
		}
		globals = append(globals, g)
	}

	diag.EndPhase(true)
	return physicals, enums, primaries, globals, nil
}

// P7. Link template arguments and ordinary field/base types.
func (p *Pipeline) link(f *factory.UserTypeFactory, physicals []*usertype.PhysicalUserType, primaries []*usertype.TemplateUserType, globals []*usertype.GlobalUserType) {
	diag.BeginPhase("Link")

	for _, phys := range physicals {
		f.LinkPhysical(phys)
	}
	for _, primary := range primaries {
		f.LinkTemplateArguments(primary)
		for _, spec := range primary.SpecializedTypes {
			for _, d := range spec.Diagnostics() {
				p.Reporter.Report(&diag.Diagnostic{
					Kind: diag.KindTemplateLinkError, Severity: diag.SeverityWarning,
					Message: d, Context: diag.Context{Phase: "Link", Symbol: spec.Base().ConstructorName},
				})
			}
		}
	}
	for _, g := range globals {
		f.LinkGlobal(g)
	}

	diag.EndPhase(true)
}

// P8. Post-process: synthesize NamespaceUserType wrappers and compute
// DeclaredInType for every root UserType.
func (p *Pipeline) postProcess(physicals []*usertype.PhysicalUserType, enums []*usertype.EnumUserType, primaries []*usertype.TemplateUserType, globals []*usertype.GlobalUserType) []usertype.UserType {
	diag.BeginPhase("Post-process")

	nsNodes := make(map[string]*usertype.NamespaceUserType)
	var roots []usertype.UserType

	attach := func(u usertype.UserType) {
		base := u.Base()
		var parts []string
		if base.Namespace != "" {
			parts = append(parts, strings.Split(base.Namespace, "::")...)
		}
		// GlobalUserType's Namespace is already the module's full target
		// namespace; its Symbol is a synthetic "$global" scope whose own
		// enclosing path would just repeat it.
		if base.Symbol != nil && base.Kind != usertype.KindGlobal {
			parts = append(parts, base.Symbol.Namespaces()...)
		}

		if len(parts) == 0 {
			roots = append(roots, u)
			return
		}

		parent := namespaceChain(nsNodes, &roots, parts)
		parent.AddChild(u)
		usertype.UpdateFullClassName(u)
	}

	for _, phys := range physicals {
		attach(phys)
	}
	for _, e := range enums {
		attach(e)
	}
	for _, primary := range primaries {
		attach(primary)
	}
	for _, g := range globals {
		attach(g)
	}

	diag.EndPhase(true)
	return roots
}

// namespaceChain returns (creating as needed) the deepest
// NamespaceUserType along parts, tracking newly created top-level nodes
// in roots.
func namespaceChain(nodes map[string]*usertype.NamespaceUserType, roots *[]usertype.UserType, parts []string) *usertype.NamespaceUserType {
	var parent *usertype.NamespaceUserType
	key := ""

	for _, part := range parts {
		if key == "" {
			key = part
		} else {
			key = key + "::" + part
		}

		node, ok := nodes[key]
		if !ok {
			var declaredIn usertype.UserType
			if parent != nil {
				declaredIn = parent
			}
			node = usertype.NewNamespace(part, declaredIn)
			nodes[key] = node

			if parent != nil {
				parent.AddChild(node)
			} else {
				*roots = append(*roots, node)
			}
		}
		parent = node
	}

	return parent
}
