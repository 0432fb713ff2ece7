// Command cmakeeval is a demonstration harness for the cmakeval evaluator:
// it parses a CMakeLists.txt, runs it through the engine, and prints the
// resulting event stream and run report. It is not the CMake CLI itself,
// only a thin driver around the engine package.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kythe/cmakeval/cmakelib/ast"
	"github.com/kythe/cmakeval/engine"
	"github.com/kythe/cmakeval/writer"
)

var (
	binaryDir string
	verbose   bool
)

func newParser(path string) (*ast.CMakeFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ast.NewParser().Parse(f)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <CMakeLists.txt>",
		Short: "Evaluate a CMakeLists.txt and print the resulting event stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(args[0])
		},
	}
	cmd.Flags().StringVar(&binaryDir, "binary-dir", "", "build directory (defaults to a sibling 'build' directory)")
	return cmd
}

func runEvaluate(entryPath string) error {
	sourceDir := filepath.Dir(entryPath)
	if binaryDir == "" {
		binaryDir = filepath.Join(sourceDir, "build")
	}

	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx := engine.NewContext(sourceDir, binaryDir, log)
	ctx.Loader = engine.NewSourceLoaderFromParser(newParser)

	nodes, err := ctx.Loader(entryPath)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", entryPath, err)
	}

	if err := engine.ExecuteFile(ctx, nodes); err != nil {
		return fmt.Errorf("evaluating %s: %w", entryPath, err)
	}

	var diags []writer.DiagnosticLine
	for _, ev := range ctx.Events.Events() {
		enc, _ := json.Marshal(ev)
		fmt.Println(string(enc))
		if ev.Diagnostic != nil {
			sev := "warning"
			if ev.Diagnostic.Severity == engine.SeverityError {
				sev = "error"
			}
			diags = append(diags, writer.DiagnosticLine{
				Severity: sev,
				Command:  ev.Diagnostic.Command,
				File:     ev.Origin.File,
				Line:     ev.Origin.Line,
				Message:  ev.Diagnostic.Cause,
			})
		}
	}

	writer.PrintReport(os.Stderr, diags, writer.RunSummary{
		RunID:        ctx.Report.RunID,
		Status:       ctx.Report.OverallStatus().String(),
		WarningCount: ctx.Report.WarningCount,
		ErrorCount:   ctx.Report.ErrorCount,
		Fatal:        ctx.Report.Fatal,
	})

	if ctx.Report.Fatal {
		os.Exit(1)
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "cmakeeval",
		Short: "Evaluate CMake scripts and report the configuration events they produce",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
