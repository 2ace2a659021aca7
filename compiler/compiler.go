// Package compiler declares the downstream source-level Compiler
// collaborator (spec.md §6): invoked once after emission when a target
// assembly name is configured. The real compiler is out of scope; this
// package provides the interface plus a no-op default.
package compiler

import "fmt"

// Diagnostic is a single message returned by a Compiler run.
type Diagnostic struct {
	Message string
	IsError bool
}

// Result is the outcome of a Compile invocation.
type Result struct {
	OK          bool
	Diagnostics []Diagnostic
}

// Compiler compiles a set of generated (plus explicitly included)
// source files into outPath, referencing the given assemblies.
type Compiler interface {
	Compile(sources, references []string, outPath string) (Result, error)
}

// CompileError wraps a failed compile with up to 1000 lines of detail,
// per spec.md §7.
type CompileError struct {
	Diagnostics []Diagnostic
}

const maxDetailLines = 1000

func (e *CompileError) Error() string {
	n := len(e.Diagnostics)
	if n > maxDetailLines {
		n = maxDetailLines
	}

	msg := fmt.Sprintf("compile failed with %d diagnostic(s)", len(e.Diagnostics))
	for _, d := range e.Diagnostics[:n] {
		msg += "\n  " + d.Message
	}
	return msg
}

// NoOp is a default Compiler that performs no compilation and always
// succeeds, used when no downstream build tool is wired in.
type NoOp struct{}

// Compile implements Compiler.
func (NoOp) Compile(sources, references []string, outPath string) (Result, error) {
	return Result{OK: true}, nil
}
