package main

import (
	"flag"
	"fmt"
	"os"
)

func handleProcedures(cfg *cliConfig, args []string) {
	fs := flag.NewFlagSet("procedures", flag.ExitOnError)
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	if len(fs.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "Error: usage: ematools procedures <eu-number>")
		os.Exit(1)
	}
	euNumber := fs.Args()[0]

	st := openStore(cfg)
	defer st.Close()

	// Fail with a clear message when the product itself is unknown.
	if _, err := st.GetProduct(euNumber); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	procedures, err := st.ListProcedures(euNumber)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list procedures: %v\n", err)
		os.Exit(1)
	}

	if len(procedures) == 0 {
		fmt.Printf("No procedures stored for %s.\n", euNumber)
		return
	}

	switch *format {
	case "json":
		printJSON(procedures)
	case "table":
		printProceduresTable(procedures)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want table or json)\n", *format)
		os.Exit(1)
	}
}
