package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"ematools/fetch"
	"ematools/news"
	"ematools/register"
)

// printJSON prints any value as indented JSON.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// truncate shortens a string for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func printProductsTable(products []register.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"EU Number", "Name", "INN", "Company", "Register"})

	for _, p := range products {
		t.AppendRow(table.Row{
			p.EUNumber,
			truncate(p.Name, 30),
			truncate(p.INN, 30),
			truncate(p.Company, 30),
			p.Register,
		})
	}

	t.Render()
	fmt.Printf("\n%d products\n", len(products))
}

func printProductDetail(p *register.Product) {
	fmt.Printf("EU Number:  %s\n", p.EUNumber)
	fmt.Printf("Name:       %s\n", p.Name)
	fmt.Printf("INN:        %s\n", p.INN)
	fmt.Printf("Company:    %s\n", p.Company)
	if p.MAH != "" && p.MAH != p.Company {
		fmt.Printf("MAH:        %s\n", p.MAH)
	}
	fmt.Printf("Register:   %s\n", p.Register)
	if len(p.ATCCodes) > 0 {
		fmt.Printf("ATC codes:  %s\n", strings.Join(p.ATCCodes, ", "))
	}
	if p.Indication != "" {
		fmt.Printf("Indication: %s\n", p.Indication)
	}
	for _, link := range p.EMALinks {
		fmt.Printf("EMA link:   %s\n", link)
	}
}

func printProceduresTable(procedures []register.Procedure) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Procedure", "Closed", "Type", "EMA Number", "Decision", "Annex"})

	for _, proc := range procedures {
		closed := ""
		if proc.CloseDate != nil {
			closed = proc.CloseDate.Format(register.DateLayout)
		}
		annex := ""
		if proc.AnnexURL != "" {
			annex = "yes"
		}
		t.AppendRow(table.Row{
			proc.ProcedureID,
			closed,
			truncate(proc.Type, 40),
			proc.EMANumber,
			proc.DecisionNumber,
			annex,
		})
	}

	t.Render()
	fmt.Printf("\n%d procedures\n", len(procedures))
}

func printNewsTable(items []news.Item) {
	for _, item := range items {
		published := ""
		if item.Published != nil {
			published = item.Published.Format("2006-01-02 15:04")
		}
		fmt.Printf("%s  %s\n", published, item.Title)
		if item.Summary != "" {
			fmt.Printf("    %s\n", truncate(item.Summary, 150))
		}
		fmt.Printf("    %s\n\n", item.Link)
	}
	fmt.Printf("%d items\n", len(items))
}

func printRequestsTable(entries []fetch.LogEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Fetched", "Status", "URL"})

	for _, entry := range entries {
		t.AppendRow(table.Row{
			entry.FetchedAt.Format("2006-01-02 15:04:05"),
			entry.StatusCode,
			truncate(entry.URL, 80),
		})
	}

	t.Render()
	fmt.Printf("\n%d requests\n", len(entries))
}
