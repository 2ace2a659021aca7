// Package symbolname parses mangled-style qualified C++ names such as
// `A::B<X,Y<Z>>::C` into a tree of nested scopes and template argument
// lists.
package symbolname

import (
	"fmt"
	"strings"
)

// Scope is a single `::`-separated component of a qualified name.
// Arguments is empty for a non-template scope.
type Scope struct {
	BareName  string
	Arguments []*ParsedName
}

// IsTemplate reports whether this scope carries a template argument list.
func (s *Scope) IsTemplate() bool {
	return len(s.Arguments) > 0
}

// ParsedName is the result of parsing a qualified name.
type ParsedName struct {
	Scopes []*Scope

	// Raw is the original text that was parsed, used to reconstruct a
	// name for round-tripping and error messages.
	Raw string
}

// IsTemplate reports whether the name's innermost (last) scope is a
// template specialization -- this is the sense of "is this type a
// template" used throughout the pipeline.
func (p *ParsedName) IsTemplate() bool {
	if len(p.Scopes) == 0 {
		return false
	}
	return p.Scopes[len(p.Scopes)-1].IsTemplate()
}

// Namespaces returns the bare names of every scope except the last,
// i.e. the enclosing namespace/class path of the parsed name.
func (p *ParsedName) Namespaces() []string {
	if len(p.Scopes) <= 1 {
		return nil
	}
	ns := make([]string, len(p.Scopes)-1)
	for i, s := range p.Scopes[:len(p.Scopes)-1] {
		ns[i] = s.BareName
	}
	return ns
}

// TemplateArguments returns the innermost scope's template argument
// list, or nil if the name is not a template.
func (p *ParsedName) TemplateArguments() []*ParsedName {
	if !p.IsTemplate() {
		return nil
	}
	return p.Scopes[len(p.Scopes)-1].Arguments
}

// NameSyntaxError is returned when a name cannot be parsed: mismatched
// angle brackets or an empty bare name.
type NameSyntaxError struct {
	Input  string
	Reason string
}

func (e *NameSyntaxError) Error() string {
	return fmt.Sprintf("cannot parse symbol name %q: %s", e.Input, e.Reason)
}

// Parse parses a qualified, possibly-templated C++ name into a ParsedName.
// The parser balances `<`/`>` and only treats `,` as an argument separator
// at the top level of the argument list currently open; `::` only splits
// scopes when it occurs outside of any open argument list.
func Parse(s string) (*ParsedName, error) {
	p := &parser{input: s}
	scopes, err := p.parseScopes()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.input) {
		return nil, &NameSyntaxError{Input: s, Reason: fmt.Sprintf("unexpected trailing input at offset %d", p.pos)}
	}
	return &ParsedName{Scopes: scopes, Raw: s}, nil
}

// FamilyName computes the template-family lookup key for a name: the
// scopes joined by "::", with each templated scope's argument list
// replaced by the literal placeholder "<>".
func FamilyName(s string) (string, error) {
	pn, err := Parse(s)
	if err != nil {
		return "", err
	}
	return pn.FamilyName(), nil
}

// FamilyName renders this parsed name's family-name key.
func (p *ParsedName) FamilyName() string {
	parts := make([]string, len(p.Scopes))
	for i, sc := range p.Scopes {
		if sc.IsTemplate() {
			parts[i] = sc.BareName + "<>"
		} else {
			parts[i] = sc.BareName
		}
	}
	return strings.Join(parts, "::")
}

// Render reconstructs a textual name from the parsed tree. It is not
// guaranteed to be byte-identical to the original input (e.g. whitespace
// around commas is normalized) but is round-trip stable under FamilyName.
func (p *ParsedName) Render() string {
	parts := make([]string, len(p.Scopes))
	for i, sc := range p.Scopes {
		parts[i] = sc.render()
	}
	return strings.Join(parts, "::")
}

func (s *Scope) render() string {
	if !s.IsTemplate() {
		return s.BareName
	}
	args := make([]string, len(s.Arguments))
	for i, a := range s.Arguments {
		args[i] = a.Render()
	}
	return s.BareName + "<" + strings.Join(args, ",") + ">"
}

// parser is a small recursive-descent scanner over the raw name text.
type parser struct {
	input string
	pos   int
}

func (p *parser) parseScopes() ([]*Scope, error) {
	var scopes []*Scope
	for {
		scope, err := p.parseScope()
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)

		if p.peekScopeSep() {
			p.pos += 2
			continue
		}
		break
	}
	return scopes, nil
}

func (p *parser) peekScopeSep() bool {
	return p.pos+1 < len(p.input) && p.input[p.pos] == ':' && p.input[p.pos+1] == ':'
}

func (p *parser) parseScope() (*Scope, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ':' && p.peekScopeSep() {
			break
		}
		if c == '<' || c == ',' || c == '>' {
			break
		}
		p.pos++
	}

	bareName := p.input[start:p.pos]
	if bareName == "" {
		return nil, &NameSyntaxError{Input: p.input, Reason: fmt.Sprintf("empty scope name at offset %d", start)}
	}

	scope := &Scope{BareName: bareName}

	if p.pos < len(p.input) && p.input[p.pos] == '<' {
		args, err := p.parseArgumentList()
		if err != nil {
			return nil, err
		}
		scope.Arguments = args
	}

	return scope, nil
}

func (p *parser) parseArgumentList() ([]*ParsedName, error) {
	// consume '<'
	p.pos++

	var args []*ParsedName
	argStart := p.pos
	depth := 1

	flush := func(end int) error {
		text := p.input[argStart:end]
		if strings.TrimSpace(text) == "" {
			return &NameSyntaxError{Input: p.input, Reason: fmt.Sprintf("empty template argument at offset %d", argStart)}
		}
		sub, err := Parse(strings.TrimSpace(text))
		if err != nil {
			return err
		}
		args = append(args, sub)
		return nil
	}

	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '<':
			depth++
			p.pos++
		case '>':
			depth--
			p.pos++
			if depth == 0 {
				if err := flush(p.pos - 1); err != nil {
					return nil, err
				}
				return args, nil
			}
		case ',':
			if depth == 1 {
				if err := flush(p.pos); err != nil {
					return nil, err
				}
				p.pos++
				argStart = p.pos
			} else {
				p.pos++
			}
		default:
			p.pos++
		}
	}

	return nil, &NameSyntaxError{Input: p.input, Reason: "mismatched angle brackets"}
}
