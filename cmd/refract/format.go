package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/refract-dev/refract"
)

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(os.Stdout, result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as
// a CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

func outputResultText(w io.Writer, result CLIResult) error {
	switch res := result.Results.(type) {
	case []CLISymbol:
		formatSymbolsText(w, res)
	case []CLISearchResult:
		formatSearchText(w, res)
	case []CLIReference:
		formatReferencesText(w, res)
	case CLIRefactor:
		formatRefactorText(w, res)
	case CLIStats:
		formatStatsText(w, res)
	default:
		fmt.Fprintf(w, "%v\n", res)
	}
	return nil
}

func formatSymbolsText(w io.Writer, syms []CLISymbol) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tFILE\tLINE")
	for _, s := range syms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Name, s.Kind, s.File, s.StartLine)
	}
	tw.Flush()
}

func formatSearchText(w io.Writer, results []CLISearchResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tMATCH\tFILE\tLINE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.Name, r.Kind, r.Match, r.File, r.StartLine)
	}
	tw.Flush()
}

func formatReferencesText(w io.Writer, refs []CLIReference) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tLOCATION")
	for _, r := range refs {
		fmt.Fprintf(tw, "%s\t%s:%d:%d\n", r.Kind, r.File, r.StartLine, r.StartCol)
	}
	tw.Flush()
}

func formatRefactorText(w io.Writer, res CLIRefactor) {
	if !res.Success {
		fmt.Fprintln(w, "Refused:")
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	for _, ed := range res.Edits {
		fmt.Fprintf(w, "%s %s:%d:%d-%d:%d -> %q\n",
			ed.Kind, ed.File, ed.StartLine, ed.StartCol, ed.EndLine, ed.EndCol, ed.NewText)
	}
	if res.Applied {
		fmt.Fprintf(w, "Applied %d edit(s)\n", len(res.Edits))
	} else {
		fmt.Fprintf(w, "Planned %d edit(s); re-run with --write to apply\n", len(res.Edits))
	}
}

func formatStatsText(w io.Writer, stats CLIStats) {
	fmt.Fprintf(w, "Files: %d\n", stats.TotalFiles)
	fmt.Fprintf(w, "Symbols: %d\n", stats.TotalSymbols)
	if len(stats.SymbolsByKind) == 0 {
		return
	}
	kinds := make([]string, 0, len(stats.SymbolsByKind))
	for kind := range stats.SymbolsByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	fmt.Fprintln(w, "By kind:")
	for _, kind := range kinds {
		fmt.Fprintf(w, "  %s: %d\n", kind, stats.SymbolsByKind[kind])
	}
}

// symbolToCLI converts an engine symbol to its wire form (1-based lines).
func symbolToCLI(sym *refract.Symbol, language string) CLISymbol {
	r := sym.Location.Range
	return CLISymbol{
		Name:      sym.Name,
		Kind:      string(sym.Kind),
		Modifiers: sym.Modifiers,
		File:      sym.Location.FilePath,
		Language:  language,
		StartLine: r.Start.Line + 1,
		StartCol:  r.Start.Column + 1,
		EndLine:   r.End.Line + 1,
		EndCol:    r.End.Column + 1,
	}
}

func referenceToCLI(ref *refract.Reference) CLIReference {
	r := ref.Location.Range
	return CLIReference{
		Kind:      string(ref.Kind),
		File:      ref.Location.FilePath,
		StartLine: r.Start.Line + 1,
		StartCol:  r.Start.Column + 1,
		EndLine:   r.End.Line + 1,
		EndCol:    r.End.Column + 1,
	}
}

func editToCLI(ed refract.CodeEdit) CLIEdit {
	return CLIEdit{
		File:      ed.FilePath,
		Kind:      string(ed.Kind),
		StartLine: ed.Range.Start.Line + 1,
		StartCol:  ed.Range.Start.Column + 1,
		EndLine:   ed.Range.End.Line + 1,
		EndCol:    ed.Range.End.Column + 1,
		NewText:   ed.NewText,
	}
}

func editsToCLI(edits []refract.CodeEdit) []CLIEdit {
	out := make([]CLIEdit, 0, len(edits))
	for _, ed := range edits {
		out = append(out, editToCLI(ed))
	}
	return out
}
