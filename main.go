package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/circulation/internal/cli"
	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	config.LoadDotEnv()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "seed":
		cmd = cli.NewSeedCommand()
	case "create-user":
		cmd = cli.NewCreateUserCommand()
	case "overdue-report":
		cmd = cli.NewOverdueReportCommand()
	case "patron-status":
		cmd = cli.NewPatronStatusCommand()
	case "version":
		fmt.Printf("%s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve           Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  seed            Load the sample catalog into an empty database\n")
	fmt.Fprintf(os.Stderr, "  create-user     Create a librarian or administrator account\n")
	fmt.Fprintf(os.Stderr, "  overdue-report  List overdue loans with their late fees\n")
	fmt.Fprintf(os.Stderr, "  patron-status   Show a patron's loans, fees and history\n")
	fmt.Fprintf(os.Stderr, "  version         Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
