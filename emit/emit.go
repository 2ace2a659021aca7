// Package emit produces wrapper source text from a UserType graph
// (spec.md §2 component 8), either one buffer per type or a single
// concatenated buffer, collaborating with the external IndentedWriter
// sink via usertype.Writer. Grounded on generate.Generator's
// one-generator-per-unit shape, restructured for text emission instead
// of LLVM IR (see DESIGN.md).
package emit

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leculver/typegen/usertype"
)

// Buffer is the in-memory usertype.Writer implementation used both as
// the default sink and by tests; a real IndentedWriter is an external
// collaborator per spec.md §6.
type Buffer struct {
	lines  []string
	indent int
}

// NewBuffer constructs an empty Buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// WriteLine implements usertype.Writer.
func (b *Buffer) WriteLine(s string) {
	if s == "" {
		b.lines = append(b.lines, "")
		return
	}
	b.lines = append(b.lines, strings.Repeat("    ", b.indent)+s)
}

// Indent implements usertype.Writer.
func (b *Buffer) Indent() { b.indent++ }

// Dedent implements usertype.Writer.
func (b *Buffer) Dedent() {
	if b.indent > 0 {
		b.indent--
	}
}

// String renders the buffer's accumulated lines.
func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n") + "\n"
}

// File is one emitted output: a generated file name and its rendered
// source text.
type File struct {
	Name   string
	Source string
}

// Emitter drives WriteCode over a UserType graph in either per-file or
// single-file mode (spec.md §4.7 P9).
type Emitter struct {
	factory usertype.Factory
	flags   usertype.Flags

	mu    sync.Mutex
	names map[string]string // lowercase path -> reserved path, for collision detection
}

// New constructs an Emitter that resolves referenced types via factory
// and honors flags.
func New(factory usertype.Factory, flags usertype.Flags) *Emitter {
	return &Emitter{factory: factory, flags: flags, names: make(map[string]string)}
}

// EmitAll renders every root UserType (i.e. every type with no
// DeclaredIn parent, or whose only ancestors are namespaces) either as
// one File per type or, when FlagSingleFileExport is set, as a single
// concatenated File.
//
// A UserType is skipped if any ancestor in its DeclaredIn chain is a
// non-namespace type (its code is emitted inline by that ancestor
// instead), per spec.md §4.7 P9.
func (e *Emitter) EmitAll(roots []usertype.UserType) ([]File, error) {
	var emittable []usertype.UserType
	for _, u := range roots {
		if e.shouldEmit(u) {
			emittable = append(emittable, u)
		}
	}

	if e.flags.Has(usertype.FlagSingleFileExport) {
		return e.emitSingleFile(emittable)
	}
	return e.emitPerFile(emittable)
}

func (e *Emitter) shouldEmit(u usertype.UserType) bool {
	for parent := u.Base().DeclaredIn; parent != nil; parent = parent.Base().DeclaredIn {
		if _, ok := parent.(*usertype.NamespaceUserType); !ok {
			return false
		}
	}
	return true
}

func (e *Emitter) emitSingleFile(types []usertype.UserType) ([]File, error) {
	buf := NewBuffer()
	for _, u := range types {
		if err := u.WriteCode(buf, e.factory, e.flags); err != nil {
			return nil, fmt.Errorf("emitting %s: %w", u.Base().FullClassName, err)
		}
	}
	return []File{{Name: "GeneratedTypes.g.cs", Source: buf.String()}}, nil
}

func (e *Emitter) emitPerFile(types []usertype.UserType) ([]File, error) {
	// Filename reservation is deterministic (lexicographic by full
	// class name) rather than a function of goroutine race order,
	// per spec.md §9 Open Question (c).
	sorted := make([]usertype.UserType, len(types))
	copy(sorted, types)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Base().FullClassName < sorted[j].Base().FullClassName
	})

	var files []File
	for _, u := range sorted {
		buf := NewBuffer()
		if err := u.WriteCode(buf, e.factory, e.flags); err != nil {
			return nil, fmt.Errorf("emitting %s: %w", u.Base().FullClassName, err)
		}

		name := e.reserveName(u.Base().ConstructorName + ".g.cs")
		files = append(files, File{Name: name, Source: buf.String()})
	}
	return files, nil
}

// reserveName inserts an increasing numeric suffix ahead of the file
// extension (everything from the first ".", e.g. "Widget_1.g.cs") when
// base collides case-insensitively with a previously reserved name.
func (e *Emitter) reserveName(base string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate := base
	key := strings.ToLower(candidate)
	for i := 1; ; i++ {
		if _, taken := e.names[key]; !taken {
			e.names[key] = candidate
			return candidate
		}

		ext := ""
		stem := candidate
		if idx := strings.Index(base, "."); idx >= 0 {
			stem, ext = base[:idx], base[idx:]
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		key = strings.ToLower(candidate)
	}
}
