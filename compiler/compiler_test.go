package compiler

import (
	"strings"
	"testing"
)

func TestNoOpAlwaysSucceeds(t *testing.T) {
	result, err := NoOp{}.Compile([]string{"a.cs"}, nil, "out.dll")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !result.OK {
		t.Fatal("expected NoOp to always report OK")
	}
}

func TestCompileErrorTruncatesAtMaxDetailLines(t *testing.T) {
	var diags []Diagnostic
	for i := 0; i < maxDetailLines+10; i++ {
		diags = append(diags, Diagnostic{Message: "boom", IsError: true})
	}

	err := &CompileError{Diagnostics: diags}
	if strings.Count(err.Error(), "boom") != maxDetailLines {
		t.Fatalf("expected exactly %d detail lines, got %d", maxDetailLines, strings.Count(err.Error(), "boom"))
	}
}

func TestCompileErrorReportsTotalCount(t *testing.T) {
	err := &CompileError{Diagnostics: []Diagnostic{{Message: "boom", IsError: true}}}
	if !strings.Contains(err.Error(), "1 diagnostic") {
		t.Fatalf("expected the error message to report the total diagnostic count: %s", err.Error())
	}
}
