package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"ematools/news"
)

func handleNews(cfg *cliConfig, args []string) {
	fs := flag.NewFlagSet("news", flag.ExitOnError)
	products := fs.String("products", "", "Comma-separated product names to filter by")
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	items, err := news.Fetch(context.Background(), cfg.NewsFeedURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to fetch news feed: %v\n", err)
		os.Exit(1)
	}

	if *products != "" {
		items = news.FilterByProducts(items, strings.Split(*products, ","))
	}

	if len(items) == 0 {
		fmt.Println("No news items.")
		return
	}

	switch *format {
	case "json":
		printJSON(items)
	case "table":
		printNewsTable(items)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want table or json)\n", *format)
		os.Exit(1)
	}
}
