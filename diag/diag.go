// Package diag adapts the teacher's logging package to the pipeline's
// diagnostic model (spec.md §7): a mutex-guarded reporter tracking an
// error count, plus pterm-based colored terminal display and phase
// spinners.
package diag

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// Kind enumerates the diagnostic kinds of spec.md §7.
type Kind int

const (
	KindConfigurationError Kind = iota
	KindModuleLoadError
	KindSymbolNotFound
	KindNameSyntaxError
	KindTemplateLinkError
	KindEmitError
	KindCompileError
)

func (k Kind) String() string {
	switch k {
	case KindConfigurationError:
		return "ConfigurationError"
	case KindModuleLoadError:
		return "ModuleLoadError"
	case KindSymbolNotFound:
		return "SymbolNotFound"
	case KindNameSyntaxError:
		return "NameSyntaxError"
	case KindTemplateLinkError:
		return "TemplateLinkError"
	case KindEmitError:
		return "EmitError"
	case KindCompileError:
		return "CompileError"
	default:
		return "UnknownDiagnostic"
	}
}

// Severity distinguishes fatal diagnostics from advisory ones.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// fatalKinds are the diagnostic kinds that always carry SeverityError,
// per spec.md §7's policy ("Fatal errors unwind the pipeline").
var fatalKinds = map[Kind]bool{
	KindConfigurationError: true,
	KindModuleLoadError:    true,
	KindEmitError:          true,
	KindCompileError:       true,
}

// Context is the structured {phase, module, symbol} context spec.md §7
// requires on every non-fatal diagnostic.
type Context struct {
	Phase  string
	Module string
	Symbol string
}

// Diagnostic is a single reported event.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Context  Context
}

func (d *Diagnostic) String() string {
	var ctx []string
	if d.Context.Phase != "" {
		ctx = append(ctx, "phase="+d.Context.Phase)
	}
	if d.Context.Module != "" {
		ctx = append(ctx, "module="+d.Context.Module)
	}
	if d.Context.Symbol != "" {
		ctx = append(ctx, "symbol="+d.Context.Symbol)
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, strings.Join(ctx, ", "))
}

// LogLevel mirrors the teacher's Logger.LogLevel enumeration.
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelVerbose
)

// Reporter synchronizes concurrent diagnostic emission and tracks
// whether the pipeline should proceed, mirroring logging.Logger.
type Reporter struct {
	mu       sync.Mutex
	level    LogLevel
	errCount int
	warnings []*Diagnostic
	all      []*Diagnostic
}

// NewReporter constructs a Reporter at the given log level.
func NewReporter(level LogLevel) *Reporter {
	return &Reporter{level: level}
}

// Report records d, printing it immediately if it is severity Error
// (matching Logger.handleMsg's interruption of any in-progress phase
// spinner) or deferring it if it is a warning.
func (r *Reporter) Report(d *Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.all = append(r.all, d)

	if d.Severity == SeverityError || fatalKinds[d.Kind] {
		r.errCount++
		if r.level > LogLevelSilent {
			endPhase(false)
			printError(d)
		}
		return
	}

	r.warnings = append(r.warnings, d)
}

// ShouldProceed reports whether the pipeline has not yet accumulated a
// fatal error.
func (r *Reporter) ShouldProceed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errCount == 0
}

// AnyErrors reports whether any error-severity diagnostic was recorded.
func (r *Reporter) AnyErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errCount > 0
}

// ErrorCount returns the number of error-severity diagnostics recorded.
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errCount
}

// Warnings returns every recorded warning, in report order.
func (r *Reporter) Warnings() []*Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Diagnostic, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// All returns every recorded diagnostic, in report order.
func (r *Reporter) All() []*Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Diagnostic, len(r.all))
	copy(out, r.all)
	return out
}

// FlushWarnings prints every deferred warning, matching the teacher's
// end-of-compilation warning dump.
func (r *Reporter) FlushWarnings() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warnings {
		printWarning(w)
	}
}

var (
	successColorFG = pterm.FgLightGreen
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnColorFG    = pterm.FgYellow
	warnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoColorFG    = successColorFG
)

func printError(d *Diagnostic) {
	errorStyleBG.Print(d.Kind.String())
	errorColorFG.Println(" " + d.String())
}

func printWarning(d *Diagnostic) {
	warnStyleBG.Print(d.Kind.String())
	warnColorFG.Println(" " + d.String())
}

// PrintInfo prints an informational banner, mirroring
// logging.PrintInfoMessage.
func PrintInfo(tag, msg string) {
	successStyleBG.Print(tag)
	infoColorFG.Println(" " + msg)
}

// phaseSpinner tracks the currently running phase spinner, mirroring
// the teacher's package-level display state.
var (
	phaseSpinner   *pterm.SpinnerPrinter
	currentPhase   string
	phaseStartTime time.Time
)

// BeginPhase starts a spinner for the named pipeline phase.
func BeginPhase(phase string) {
	currentPhase = phase
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(infoColorFG))
	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: successStyleBG, Text: "Done"},
	}
	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: errorStyleBG, Text: "Fail"},
	}
	phaseSpinner.Start(phase + "...")
	phaseStartTime = time.Now()
}

// EndPhase completes the current phase spinner.
func EndPhase(success bool) {
	endPhase(success)
}

func endPhase(success bool) {
	if phaseSpinner == nil {
		return
	}
	if success {
		phaseSpinner.Success(fmt.Sprintf("%s (%.3fs)", currentPhase, time.Since(phaseStartTime).Seconds()))
	} else {
		phaseSpinner.Fail(currentPhase)
	}
	phaseSpinner = nil
}
