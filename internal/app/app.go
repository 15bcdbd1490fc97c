package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "serve":
		return runServe(args[1:])
	case "collect":
		return runCollect(args[1:])
	case "stats":
		return runStats(args[1:])
	case "migrate":
		return runMigrate(args[1:])
	case "daemon":
		return runDaemon(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "newsreader CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  newsreader <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve    Start the API server with live log streaming")
	fmt.Fprintln(os.Stderr, "  collect  Run collectors once and persist the results")
	fmt.Fprintln(os.Stderr, "  stats    Show article counts across all persistence sinks")
	fmt.Fprintln(os.Stderr, "  migrate  Create or update the database schema")
	fmt.Fprintln(os.Stderr, "  daemon   Manage the systemd service")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"newsreader <command> -h\" for command-specific flags.")
}
