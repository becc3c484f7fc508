package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"ematools/export"
	"ematools/store"
)

func handleExport(cfg *cliConfig, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "csv", "Output format (csv or json)")
	output := fs.String("output", "", "Output file (default: stdout)")
	registerKey := fs.String("register", "", "Filter by register (active or withdrawn)")
	fs.Parse(args)

	st := openStore(cfg)
	defer st.Close()

	filter := store.ProductFilter{}
	if *registerKey != "" {
		reg := resolveRegister(cfg, *registerKey)
		filter.Register = &reg.Key
	}

	products, err := st.ListProducts(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list products: %v\n", err)
		os.Exit(1)
	}
	procedures, err := st.AllProcedures()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list procedures: %v\n", err)
		os.Exit(1)
	}

	records := export.Flatten(products, procedures)

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	switch *format {
	case "csv":
		err = export.WriteCSV(w, records)
	case "json":
		err = export.WriteJSON(w, records)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want csv or json)\n", *format)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: export failed: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		fmt.Printf("Exported %d records to %s\n", len(records), *output)
	}
}
