// Command deadmod is a thin entrypoint over the core analysis package:
// flag parsing and the top-level fault guard only. It is not the CLI
// surface spec.md §1 scopes out (argument ergonomics, subcommands, and
// rendering belong to an external collaborator) — it exists so the core
// is runnable standalone and exercisable end to end.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ben-ranford/deadmod/internal/analysis"
	"github.com/ben-ranford/deadmod/internal/config"
	"github.com/ben-ranford/deadmod/internal/fixer"
	"github.com/ben-ranford/deadmod/internal/model"
	"github.com/ben-ranford/deadmod/internal/telemetry"
	"github.com/ben-ranford/deadmod/internal/workspace"
)

var exitFunc = os.Exit

func main() {
	exitFunc(runGuarded(os.Args[1:], os.Stdout, os.Stderr))
}

// runGuarded maps any uncaught panic to exit code 2 — spec.md §7's
// "any uncaught implementation fault" row and §9's "one process-wide
// global" design note.
func runGuarded(args []string, out, errOut io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(errOut, "fatal: %v\n", r)
			code = 2
		}
	}()
	return run(args, out, errOut)
}

func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("deadmod", flag.ContinueOnError)
	fs.SetOutput(errOut)
	root := fs.String("root", ".", "crate root directory")
	ignoreFlag := fs.String("ignore", "", "comma-separated ignore list (takes precedence over deadmod.toml)")
	fix := fs.Bool("fix", false, "remove dead modules, rewriting parent declarations")
	dryRun := fs.Bool("dry-run", true, "with -fix, report intended changes without mutating the filesystem")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := telemetry.New()

	crateRoot, err := workspace.NormalizeRepoPath(*root)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 2
	}

	var cliIgnore []string
	if strings.TrimSpace(*ignoreFlag) != "" {
		cliIgnore = strings.Split(*ignoreFlag, ",")
	}
	ignore := config.ResolveIgnoreList(cliIgnore, crateRoot, nil)

	result, err := analysis.AnalyzeCrate(context.Background(), crateRoot, ignore)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 2
	}
	telemetry.WarnAll(logger, "analysis", result.Warnings)

	totalDead := 0
	for _, modeResult := range result.Modes {
		totalDead += len(modeResult.Dead)
	}

	if *fix {
		deadModules := make([]string, 0, len(result.Modes[model.ModeModule].Dead))
		for _, f := range result.Modes[model.ModeModule].Dead {
			deadModules = append(deadModules, f.FullPath)
		}
		fixResult := fixer.Fix(crateRoot, deadModules, result.ModuleEntities, *dryRun)
		if err := json.NewEncoder(out).Encode(fixResult); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return 2
		}
		if len(fixResult.Errors) > 0 {
			return 1
		}
		return 0
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result.Modes); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 2
	}

	if totalDead > 0 {
		return 1
	}
	return 0
}
