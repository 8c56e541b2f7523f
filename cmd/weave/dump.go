package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"weave/internal/ast"
	"weave/internal/driver"
)

const dumpTree = "tree"

func newDumpCmd() *cobra.Command {
	var (
		format   string
		compiled bool
	)
	cmd := &cobra.Command{
		Use:   "dump [flags] <document>",
		Short: "Print a template AST document, or its compiled program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer dumpTraceOnPanic()
			switch format {
			case dumpTree, driver.FormatYAML, driver.FormatJSON, driver.FormatSketch:
			default:
				return fmt.Errorf("unknown dump format %q (expected tree|yaml|json|sketch)", format)
			}
			if compiled {
				return dumpCompiled(cmd, args[0], format)
			}
			return dumpInput(cmd.OutOrStdout(), args[0], format)
		},
	}
	cmd.Flags().StringVar(&format, "format", dumpTree, "dump format (tree|yaml|json|sketch)")
	cmd.Flags().BoolVar(&compiled, "compiled", false, "compile first and dump the output program")
	return cmd
}

func dumpInput(w io.Writer, path, format string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return err
	}
	doc, err := ast.Decode(data, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return writeTree(w, doc, format)
}

func dumpCompiled(cmd *cobra.Command, path, format string) error {
	g, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	s, err := openSession([]string{path}, "")
	if err != nil {
		return err
	}
	opts, err := s.driverOptions(g.maxDiagnostics, 1)
	if err != nil {
		return err
	}
	files, results, err := driver.CompileFiles(cmd.Context(), s.paths, opts)
	if err != nil {
		return err
	}
	bag := collectDiagnostics(results, g.maxDiagnostics)
	if err := reportDiagnostics(cmd.ErrOrStderr(), bag, files, "pretty", g.quiet); err != nil {
		return err
	}
	res := results[0]
	if res.Program == nil {
		return errFailed
	}
	return writeTree(cmd.OutOrStdout(), &ast.Document{File: res.KeyPath, Root: res.Program}, format)
}

func writeTree(w io.Writer, doc *ast.Document, format string) error {
	switch format {
	case dumpTree:
		return ast.Dump(w, doc.Root)
	case driver.FormatSketch:
		_, err := fmt.Fprintln(w, ast.Sketch(doc.Root))
		return err
	default:
		return ast.Encode(w, doc, format)
	}
}
