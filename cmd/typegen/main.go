// Command typegen is the CLI entry point for the symbol-to-type-graph
// pipeline (spec.md §6). Grounded on cmd/execute.go's olive.NewCLI
// subcommand structure.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"

	"github.com/leculver/typegen/compiler"
	"github.com/leculver/typegen/config"
	"github.com/leculver/typegen/diag"
	"github.com/leculver/typegen/emit"
	"github.com/leculver/typegen/pipeline"
	"github.com/leculver/typegen/provider"
	"github.com/leculver/typegen/script"
)

// outputDir is where generated wrapper files are written; the
// configuration record has no notion of an output directory of its own
// (spec.md §6), so generate writes relative to the working directory.
const outputDir = "generated"

const version = "0.1.0"

func main() {
	cli := olive.NewCLI("typegen", "typegen generates wrapper types from native debug symbols", true)

	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the pipeline log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("warn")

	genCmd := cli.AddSubcommand("generate", "run the full symbol-to-type-graph pipeline", true)
	genCmd.AddPrimaryArg("config-path", "path to the TOML configuration file", true)

	scriptCmd := cli.AddSubcommand("compile-script", "precompile and flatten a script file", true)
	scriptCmd.AddPrimaryArg("entry-path", "path to the entry script file", true)
	scriptCmd.AddStringArg("search-folder", "s", "an import search folder", false)
	scriptCmd.AddStringArg("out", "o", "path to write the flattened output (defaults to stdout)", false)

	cli.AddSubcommand("version", "print the typegen version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "CLI Usage Error:", err)
		os.Exit(1)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "generate":
		execGenerate(subResult, result.Arguments["loglevel"].(string))
	case "compile-script":
		execCompileScript(subResult)
	case "version":
		diag.PrintInfo("typegen Version", version)
	}
}

func execGenerate(result *olive.ArgParseResult, loglevel string) {
	configPath, _ := result.PrimaryArg()

	rep := diag.NewReporter(parseLogLevel(loglevel))

	cfg, err := config.Load(configPath)
	if err != nil {
		rep.Report(&diag.Diagnostic{
			Kind: diag.KindConfigurationError, Severity: diag.SeverityError,
			Message: err.Error(), Context: diag.Context{Phase: "Configuration"},
		})
		os.Exit(1)
	}

	p := pipeline.New(cfg, provider.Unimplemented{}, rep)
	files, err := p.Run(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Generation failed:", err)
		os.Exit(1)
	}

	rep.FlushWarnings()

	if err := writeFiles(files); err != nil {
		fmt.Fprintln(os.Stderr, "Write failed:", err)
		os.Exit(1)
	}

	if cfg.GeneratedAssemblyName != "" {
		compileResult, err := runCompiler(cfg, files)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Compile failed:", err)
			os.Exit(1)
		}
		if !compileResult.OK {
			for _, d := range compileResult.Diagnostics {
				fmt.Fprintln(os.Stderr, d.Message)
			}
			os.Exit(1)
		}
	}

	diag.PrintInfo("typegen", fmt.Sprintf("wrote %d file(s)", len(files)))
}

func execCompileScript(result *olive.ArgParseResult) {
	entryPath, _ := result.PrimaryArg()

	var searchFolders []string
	if v, ok := result.Arguments["search-folder"]; ok {
		searchFolders = append(searchFolders, v.(string))
	}

	p := script.NewPrecompiler(osFileReader{}, searchFolders)
	res, err := p.Compile(entryPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Script compile failed:", err)
		os.Exit(1)
	}

	rendered := res.Render()

	if v, ok := result.Arguments["out"]; ok {
		if err := os.WriteFile(v.(string), []byte(rendered), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "Write failed:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Print(rendered)
}

// osFileReader adapts os.ReadFile to script.FileReader.
type osFileReader struct{}

func (osFileReader) ReadFile(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeFiles(files []emit.File) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(outputDir, f.Name), []byte(f.Source), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func runCompiler(cfg *config.Config, files []emit.File) (compiler.Result, error) {
	sources := make([]string, len(files))
	for i, f := range files {
		sources[i] = filepath.Join(outputDir, f.Name)
	}
	sources = append(sources, cfg.IncludedFiles...)
	return compiler.NoOp{}.Compile(sources, cfg.ReferencedAssemblies, cfg.GeneratedAssemblyName)
}

func parseLogLevel(s string) diag.LogLevel {
	switch s {
	case "silent":
		return diag.LogLevelSilent
	case "error":
		return diag.LogLevelError
	case "verbose":
		return diag.LogLevelVerbose
	default:
		return diag.LogLevelWarning
	}
}
