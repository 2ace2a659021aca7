package diag

import (
	"strings"
	"testing"
)

func TestReportWarningIsDeferredNotCounted(t *testing.T) {
	r := NewReporter(LogLevelSilent)
	r.Report(&Diagnostic{Kind: KindSymbolNotFound, Severity: SeverityWarning, Message: "missing"})

	if r.AnyErrors() {
		t.Fatal("expected a warning to not count as an error")
	}
	if !r.ShouldProceed() {
		t.Fatal("expected the pipeline to proceed after only a warning")
	}
	if len(r.Warnings()) != 1 {
		t.Fatalf("expected the warning to be recorded, got %v", r.Warnings())
	}
}

func TestReportErrorSeverityCountsEvenAtSilentLevel(t *testing.T) {
	r := NewReporter(LogLevelSilent)
	r.Report(&Diagnostic{Kind: KindCompileError, Severity: SeverityError, Message: "boom"})

	if !r.AnyErrors() {
		t.Fatal("expected an error-severity diagnostic to be counted")
	}
	if r.ShouldProceed() {
		t.Fatal("expected the pipeline to stop after an error")
	}
	if r.ErrorCount() != 1 {
		t.Fatalf("expected ErrorCount() == 1, got %d", r.ErrorCount())
	}
}

func TestReportFatalKindCountsAsErrorRegardlessOfSeverity(t *testing.T) {
	r := NewReporter(LogLevelSilent)
	r.Report(&Diagnostic{Kind: KindModuleLoadError, Severity: SeverityWarning, Message: "disk error"})

	if !r.AnyErrors() {
		t.Fatal("expected a fatal-kind diagnostic to count as an error even with SeverityWarning")
	}
}

func TestAllReturnsEveryDiagnosticInOrder(t *testing.T) {
	r := NewReporter(LogLevelSilent)
	r.Report(&Diagnostic{Kind: KindSymbolNotFound, Severity: SeverityWarning, Message: "first"})
	r.Report(&Diagnostic{Kind: KindNameSyntaxError, Severity: SeverityWarning, Message: "second"})

	all := r.All()
	if len(all) != 2 || all[0].Message != "first" || all[1].Message != "second" {
		t.Fatalf("unexpected diagnostic order: %v", all)
	}
}

func TestDiagnosticStringIncludesContext(t *testing.T) {
	d := &Diagnostic{
		Kind: KindSymbolNotFound, Severity: SeverityWarning, Message: "not found",
		Context: Context{Phase: "Collection", Module: "m", Symbol: "N::Foo"},
	}
	got := d.String()
	for _, want := range []string{"SymbolNotFound", "not found", "phase=Collection", "module=m", "symbol=N::Foo"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q to contain %q", got, want)
		}
	}
}

func TestDiagnosticStringWithoutContext(t *testing.T) {
	d := &Diagnostic{Kind: KindConfigurationError, Severity: SeverityError, Message: "bad config"}
	got := d.String()
	if got != "ConfigurationError: bad config" {
		t.Fatalf("unexpected string form with no context: %q", got)
	}
}
