package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"ematools/syncer"
)

func handleSync(cfg *cliConfig, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	registerKey := fs.String("register", "active", "Register to sync (active or withdrawn)")
	force := fs.Bool("force", false, "Bypass the response cache")
	maxPages := fs.Int("max-pages", 0, "Cap on list pages to fetch (0 = no cap)")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	fs.Parse(args)

	reg := resolveRegister(cfg, *registerKey)

	st := openStore(cfg)
	defer st.Close()

	client := openClient(cfg)
	defer client.Close()

	syncConfig := syncer.DefaultConfig()
	syncConfig.BaseURL = cfg.BaseURL
	syncConfig.Concurrency = cfg.Concurrency
	syncConfig.FetchTimeout = cfg.FetchTimeoutDuration()
	syncConfig.MaxPages = *maxPages
	syncConfig.Force = *force

	service := syncer.New(client, st, syncConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var progress syncer.ProgressFunc
	if !*quiet {
		progress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rProcessing products... %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	fmt.Printf("Syncing %s register...\n", reg.Key)

	result, err := service.SyncRegister(ctx, reg, progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Sync completed:")
	fmt.Printf("  List pages:      %d\n", result.Pages)
	fmt.Printf("  Products synced: %d\n", result.Products)
	fmt.Printf("  Products failed: %d\n", result.ProductsFailed)
	fmt.Printf("  Procedures:      %d\n", result.Procedures)
	if result.Mismatches > 0 {
		fmt.Printf("  Mismatches:      %d\n", result.Mismatches)
	}

	if len(result.Errors) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, syncErr := range result.Errors {
			fmt.Printf("  - %s: %v\n", syncErr.EUNumber, syncErr.Err)
		}
	}

	if result.ProductsFailed > 0 {
		os.Exit(1)
	}
}
