package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := loadConfig()

	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "sync":
		handleSync(cfg, args)
	case "products":
		if len(args) < 1 {
			printProductsUsage()
			os.Exit(1)
		}
		handleProductsCommand(cfg, args[0], args[1:])
	case "procedures":
		handleProcedures(cfg, args)
	case "export":
		handleExport(cfg, args)
	case "smpc":
		handleSmpc(cfg, args)
	case "news":
		handleNews(cfg, args)
	case "requests":
		handleRequests(cfg, args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ematools - EC Union Register parsing tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ematools <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  sync        Fetch and parse a register into the local store")
	fmt.Println("  products    List or show stored products")
	fmt.Println("  procedures  List a product's procedures")
	fmt.Println("  export      Export the store as a CSV or JSON flatfile")
	fmt.Println("  smpc        Extract SmPC section 4.8 from a procedure annex")
	fmt.Println("  news        Fetch the EMA news feed")
	fmt.Println("  requests    Show the HTTP request log")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  EMATOOLS_BASE_URL     Community register base URL")
	fmt.Println("  EMATOOLS_CACHE_DIR    Response cache directory")
	fmt.Println("  EMATOOLS_DB           Path to the register database")
	fmt.Println("  EMATOOLS_REQUEST_LOG  Path to the request log database")
}

func printProductsUsage() {
	fmt.Println("ematools products - List or show stored products")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ematools products <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list       List products")
	fmt.Println("  show       Show one product by EU number")
	fmt.Println("  help       Show this help message")
}

func handleProductsCommand(cfg *cliConfig, action string, args []string) {
	switch action {
	case "list":
		handleProductsList(cfg, args)
	case "show":
		handleProductsShow(cfg, args)
	case "help", "--help", "-h":
		printProductsUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown products command: %s\n\n", action)
		printProductsUsage()
		os.Exit(1)
	}
}
