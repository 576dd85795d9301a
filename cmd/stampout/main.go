// Package main provides the entry point for the stampout CLI.
//
// stampout removes license stamps and other watermark text from PDF
// documents. A plan file names the input tree, the output location and
// the texts to redact; stampout picks a traversal strategy from the plan's
// modes and writes a redacted copy of every document it finds.
//
// Usage:
//
//	stampout                  # uses plan.json in the current directory
//	stampout --plan work.yaml
//	stampout validate --list
//
// See --help for all available options.
package main

// main is the entry point for stampout.
func main() {
	Execute()
}
