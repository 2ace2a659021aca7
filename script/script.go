// Package script implements the script precompiler utility described
// in spec.md §6: expansion of `import "path";` directives, hoisting of
// `using name;` declarations, and synthesis of a wrapper class around
// the flattened result. Grounded on build.processImport's
// canonical-path dependency dedup, reimplemented against the regex
// contract spec.md states directly (script source is never parsed
// through an AST in this system).
package script

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Regexes named in the glossary. Comment and string regexes mask their
// matches with blanks (preserving line counts) before import/using
// extraction runs, so directives embedded in comments or string
// literals are never mistaken for real ones.
var (
	blockCommentRegex  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRegex   = regexp.MustCompile(`//[^\n]*`)
	verbatimStringRegex = regexp.MustCompile(`@"(?:[^"]|"")*"`)
	stringRegex        = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	importRegex        = regexp.MustCompile(`import\s+([^;]+);`)
	usingRegex         = regexp.MustCompile(`using\s+([^;]+);`)
)

// FileReader loads the contents of a source file located under one of
// a set of search folders; the file I/O itself is an external
// collaborator per spec.md §1.
type FileReader interface {
	ReadFile(path string) (string, error)
}

// Precompiler expands imports and hoists usings starting from a single
// entry file.
type Precompiler struct {
	reader        FileReader
	searchFolders []string

	visited map[string]bool // canonical path -> visited, for import dedup
	usings  map[string]bool
	body    strings.Builder
	lineMap []LineMapping
	line    int
}

// LineMapping records that emittedLine corresponds to sourceLine of
// sourceFile, the data backing #line directive synthesis.
type LineMapping struct {
	EmittedLine int
	SourceFile  string
	SourceLine  int
}

// NewPrecompiler constructs a Precompiler that resolves imports against
// searchFolders using reader.
func NewPrecompiler(reader FileReader, searchFolders []string) *Precompiler {
	return &Precompiler{
		reader:        reader,
		searchFolders: searchFolders,
		visited:       make(map[string]bool),
		usings:        make(map[string]bool),
	}
}

// Result is the outcome of precompiling a script.
type Result struct {
	// ClassName is the fixed wrapper class name.
	ClassName string
	// Namespace is the fixed namespace the wrapper class is declared in.
	Namespace string
	// Usings is the deduplicated, sorted list of hoisted using declarations.
	Usings []string
	// Body is the flattened source of every imported file plus the entry
	// script's own text, in import order.
	Body string
	// EntryMethod is the name of the synthesized entry-point method
	// whose body is the whole flattened Body.
	EntryMethod string
	// LineMap records emitted-line -> (source file, source line) pairs
	// for #line directive synthesis.
	LineMap []LineMapping
}

const (
	wrapperNamespace   = "Generated.Scripts"
	wrapperEntryMethod = "Run"
)

// Render produces the final wrapper source text: the hoisted usings,
// then a fixed namespace and class holding a single entry-point method
// whose body is the whole flattened Body (imported code followed by the
// entry script's own text), with a #line directive preceding each
// source-mapped line. Imported code is not emitted as separate class
// members; it sits inside the entry-point method with the script text.
func (r *Result) Render() string {
	var b strings.Builder
	for _, u := range r.Usings {
		fmt.Fprintf(&b, "using %s;\n", u)
	}
	fmt.Fprintf(&b, "\nnamespace %s\n{\n    public static class %s\n    {\n", r.Namespace, r.ClassName)
	fmt.Fprintf(&b, "        public static void %s()\n        {\n", r.EntryMethod)

	lines := strings.Split(strings.TrimRight(r.Body, "\n"), "\n")
	for i, line := range lines {
		if i < len(r.LineMap) {
			m := r.LineMap[i]
			fmt.Fprintf(&b, "#line %d \"%s\"\n", m.SourceLine, m.SourceFile)
		}
		b.WriteString("            ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("        }\n    }\n}\n")
	return b.String()
}

// Compile expands entryPath's imports (recursively, deduplicated by
// canonical path) and hoists every using declaration it and its
// imports contain, then synthesizes the wrapper described in spec.md
// §6.
func (p *Precompiler) Compile(entryPath string) (*Result, error) {
	className := wrapperClassName(entryPath)

	if err := p.expandFile(entryPath); err != nil {
		return nil, err
	}

	usings := make([]string, 0, len(p.usings))
	for u := range p.usings {
		usings = append(usings, u)
	}
	sort.Strings(usings)

	return &Result{
		ClassName:   className,
		Namespace:   wrapperNamespace,
		Usings:      usings,
		Body:        p.body.String(),
		EntryMethod: wrapperEntryMethod,
		LineMap:     p.lineMap,
	}, nil
}

// expandFile recursively expands path's imports (each exactly once,
// deduplicated by canonical path) before appending path's own body, so
// that dependencies always precede their dependents in the flattened
// output.
func (p *Precompiler) expandFile(path string) error {
	canonical, err := p.canonicalize(path)
	if err != nil {
		return err
	}
	if p.visited[canonical] {
		return nil
	}
	p.visited[canonical] = true

	src, err := p.readFile(path)
	if err != nil {
		return err
	}

	masked := maskCommentsAndStrings(src)
	// Matches are located on the masked text (so only real directives
	// count), but the quoted path itself is masked there, so the path is
	// read back from the same span of the original source.
	for _, loc := range importRegex.FindAllStringIndex(masked, -1) {
		m := importRegex.FindStringSubmatch(src[loc[0]:loc[1]])
		importPath, err := p.resolveImport(strings.Trim(strings.TrimSpace(m[1]), `"`))
		if err != nil {
			return err
		}
		if err := p.expandFile(importPath); err != nil {
			return err
		}
	}

	body := extractUsings(masked, src, p.usings)
	p.appendBody(path, stripImports(body))
	return nil
}

func (p *Precompiler) appendBody(sourcePath, text string) {
	for i, line := range strings.Split(text, "\n") {
		p.line++
		p.lineMap = append(p.lineMap, LineMapping{EmittedLine: p.line, SourceFile: sourcePath, SourceLine: i + 1})
		p.body.WriteString(line)
		p.body.WriteString("\n")
	}
}

func (p *Precompiler) readFile(path string) (string, error) {
	src, err := p.reader.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading script %q: %w", path, err)
	}
	return src, nil
}

func (p *Precompiler) canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func (p *Precompiler) resolveImport(name string) (string, error) {
	for _, dir := range p.searchFolders {
		candidate := filepath.Join(dir, name)
		if _, err := p.reader.ReadFile(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("import %q not found in any search folder", name)
}

// maskCommentsAndStrings replaces every comment and string literal with
// blanks of equal length, preserving line breaks and positions so
// subsequent regex passes never mistake directive-shaped text inside
// them for a real directive.
func maskCommentsAndStrings(src string) string {
	src = blankMatches(src, verbatimStringRegex)
	src = blankMatches(src, stringRegex)
	src = blankMatches(src, blockCommentRegex)
	src = blankMatches(src, lineCommentRegex)
	return src
}

func blankMatches(src string, re *regexp.Regexp) string {
	return re.ReplaceAllStringFunc(src, func(m string) string {
		var b strings.Builder
		for i := 0; i < len(m); i++ {
			if m[i] == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		return b.String()
	})
}

// extractUsings records every using declaration found in masked (whose
// positions align with original) into seen, and returns the original
// text with those using statements stripped for inclusion in the
// flattened body.
func extractUsings(masked, original string, seen map[string]bool) string {
	locs := usingRegex.FindAllStringSubmatchIndex(masked, -1)
	if len(locs) == 0 {
		return original
	}

	var out strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		nameStart, nameEnd := loc[2], loc[3]
		seen[strings.TrimSpace(original[nameStart:nameEnd])] = true
		out.WriteString(original[last:start])
		last = end
	}
	out.WriteString(original[last:])
	return out.String()
}

// stripImports removes import statements from body text (they have
// already been expanded and must not appear in the flattened output).
// body has already had its using declarations spliced out by
// extractUsings, so its comment/string positions no longer align with
// the masked text that produced it; mask it afresh and splice on those
// positions, the same masked-position technique extractUsings uses, so
// directive-shaped text inside a comment or string literal is never
// mistaken for a real import.
func stripImports(body string) string {
	masked := maskCommentsAndStrings(body)
	locs := importRegex.FindAllStringIndex(masked, -1)
	if len(locs) == 0 {
		return body
	}

	var out strings.Builder
	last := 0
	for _, loc := range locs {
		out.WriteString(body[last:loc[0]])
		last = loc[1]
	}
	out.WriteString(body[last:])
	return out.String()
}

// wrapperClassName derives the fixed wrapper class identifier from the
// entry script's base file name.
func wrapperClassName(entryPath string) string {
	base := filepath.Base(entryPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	upperNext := true
	for _, r := range base {
		if r == '_' || r == '-' || r == '.' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteString(strings.ToUpper(string(r)))
			upperNext = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String() + "Script"
}
