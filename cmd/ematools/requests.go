package main

import (
	"flag"
	"fmt"
	"os"

	"ematools/fetch"
)

func handleRequests(cfg *cliConfig, args []string) {
	fs := flag.NewFlagSet("requests", flag.ExitOnError)
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	if cfg.RequestLogPath == "" {
		fmt.Fprintln(os.Stderr, "Error: request logging is disabled (no request_log_path configured)")
		os.Exit(1)
	}

	log, err := fetch.NewRequestLog(cfg.RequestLogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open request log: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	entries, err := log.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list requests: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No requests logged yet.")
		return
	}

	switch *format {
	case "json":
		printJSON(entries)
	case "table":
		printRequestsTable(entries)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want table or json)\n", *format)
		os.Exit(1)
	}
}
