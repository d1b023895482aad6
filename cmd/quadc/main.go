package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goquad/pkg/compiler"
	"goquad/pkg/lexer"
)

const demoSource = `int i;
for (i = 0; i < 10; i++)
    i = i + 1;
`

func main() {
	dumpDFA := flag.Bool("dfa", false, "print the token patterns and their minimized DFAs")
	dumpSets := flag.Bool("sets", false, "print the grammar's FIRST/FOLLOW/SELECT sets")
	flag.Parse()

	src := demoSource
	inputPath := ""
	if flag.NArg() > 0 {
		inputPath = flag.Arg(0)
		data, err := os.ReadFile(inputPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	lx, err := lexer.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lexer build error:", err)
		os.Exit(1)
	}
	tr, err := compiler.NewTranslator()
	if err != nil {
		fmt.Fprintln(os.Stderr, "grammar error:", err)
		os.Exit(1)
	}

	if *dumpDFA {
		fmt.Print(lx.DumpPatterns())
	}
	if *dumpSets {
		fmt.Print(compiler.FormatSets(tr.Grammar(), tr.Sets()))
	}

	fmt.Printf("Source:\n%s\n", src)

	tokens := lx.Analyze(src)
	fmt.Printf("Tokens (%d)\n", len(tokens))
	errorCount := 0
	for _, tok := range tokens {
		fmt.Println(" ", tok)
		if tok.Type == lexer.ERROR {
			errorCount++
		}
	}
	if errorCount > 0 {
		fmt.Printf("lexical errors: %d\n", errorCount)
	}
	fmt.Println()

	res := tr.Translate(compiler.Normalize(tokens, true))

	if len(res.Diagnostics) > 0 {
		fmt.Printf("Diagnostics (%d)\n", len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			fmt.Println(" ", d)
		}
		fmt.Println()
	}

	e := quadPrinter(res.Quads)
	fmt.Println(e.QuadListing())
	fmt.Println(e.Listing())

	// Reports go next to the input file; the built-in demo writes none.
	if inputPath != "" {
		writeReport(reportPath(inputPath, "_tokens.txt"), tokenReport(src, tokens, errorCount))
		writeReport(reportPath(inputPath, "_parse.txt"), parseReport(res))
		writeReport(reportPath(inputPath, "_tac.txt"), e.QuadListing()+"\n"+e.Listing())
	}
}

// reportPath places a report file beside the input it was produced from,
// named after the input's stem.
func reportPath(inputPath, suffix string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(inputPath), stem+suffix)
}

// quadPrinter wraps an already-produced quad stream in an Emitter so the
// listing helpers can render it.
func quadPrinter(quads []compiler.Quad) *compiler.Emitter {
	e := compiler.NewEmitter()
	for _, q := range quads {
		e.Emit(q.Op, q.Arg1, q.Arg2, q.Result)
	}
	return e
}

func tokenReport(src string, tokens []lexer.Token, errorCount int) string {
	var sb strings.Builder
	sb.WriteString("source\n")
	sb.WriteString(src)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Fprintf(&sb, "  %s\n", tok)
	}
	fmt.Fprintf(&sb, "lexical errors: %d\n", errorCount)
	return sb.String()
}

func parseReport(res compiler.Result) string {
	var sb strings.Builder
	sb.WriteString("parse trace\n")
	for _, line := range res.ParseTrace {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\nemission trace\n")
	for _, line := range res.EmitTrace {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\ndiagnostics (%d)\n", len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(&sb, "  %s\n", d)
	}
	return sb.String()
}

func writeReport(name, content string) {
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
	}
}
