package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ematools/smpc"
)

func handleSmpc(cfg *cliConfig, args []string) {
	fs := flag.NewFlagSet("smpc", flag.ExitOnError)
	procedureID := fs.String("procedure", "", "Procedure ID to use (default: most recent with an annex)")
	fs.Parse(args)

	if len(fs.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "Error: usage: ematools smpc [--procedure ID] <eu-number>")
		os.Exit(1)
	}
	euNumber := fs.Args()[0]

	st := openStore(cfg)
	defer st.Close()

	procedures, err := st.ListProcedures(euNumber)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list procedures: %v\n", err)
		os.Exit(1)
	}

	annexURL := ""
	for _, proc := range procedures {
		if proc.AnnexURL == "" {
			continue
		}
		if *procedureID != "" && proc.ProcedureID != *procedureID {
			continue
		}
		annexURL = proc.AnnexURL
		break
	}
	if annexURL == "" {
		fmt.Fprintf(os.Stderr, "Error: no annex document found for %s\n", euNumber)
		os.Exit(1)
	}

	client := openClient(cfg)
	defer client.Close()

	text, err := smpc.UndesirableEffects(context.Background(), client, annexURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to extract section 4.8: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(text)
}
