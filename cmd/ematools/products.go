package main

import (
	"flag"
	"fmt"
	"os"

	"ematools/store"
)

func handleProductsList(cfg *cliConfig, args []string) {
	fs := flag.NewFlagSet("products list", flag.ExitOnError)
	registerKey := fs.String("register", "", "Filter by register (active or withdrawn)")
	company := fs.String("company", "", "Filter by company substring")
	limit := fs.Int("limit", 0, "Maximum number of products to show (0 = all)")
	offset := fs.Int("offset", 0, "Number of products to skip")
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	st := openStore(cfg)
	defer st.Close()

	filter := store.ProductFilter{Limit: *limit, Offset: *offset}
	if *registerKey != "" {
		// Validates the key as a side effect.
		reg := resolveRegister(cfg, *registerKey)
		filter.Register = &reg.Key
	}
	if *company != "" {
		filter.Company = company
	}

	products, err := st.ListProducts(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list products: %v\n", err)
		os.Exit(1)
	}

	if len(products) == 0 {
		fmt.Println("No products stored. Run `ematools sync` first.")
		return
	}

	switch *format {
	case "json":
		printJSON(products)
	case "table":
		printProductsTable(products)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want table or json)\n", *format)
		os.Exit(1)
	}
}

func handleProductsShow(cfg *cliConfig, args []string) {
	fs := flag.NewFlagSet("products show", flag.ExitOnError)
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	if len(fs.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "Error: usage: ematools products show <eu-number>")
		os.Exit(1)
	}
	euNumber := fs.Args()[0]

	st := openStore(cfg)
	defer st.Close()

	product, err := st.GetProduct(euNumber)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "json":
		printJSON(product)
	case "table":
		printProductDetail(product)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want table or json)\n", *format)
		os.Exit(1)
	}
}
