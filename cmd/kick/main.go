// Command kick detects kicks in pose landmark tables, stores landmarks and
// analysis runs in SQLite, and serves the results to a local viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/kick.report/internal/version"
)

// errUsage reports a command line mistake after usage has been printed.
var errUsage = errors.New("invalid usage")

func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("kick: ")

	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "analyze":
		return runAnalyze(rest, stdout, stderr)
	case "stream":
		return runStream(rest, stdout, stderr)
	case "import":
		return runImport(rest, stdout, stderr)
	case "runs":
		return runRuns(rest, stdout, stderr)
	case "serve":
		return runServe(rest, stdout, stderr)
	case "submit":
		return runSubmit(rest, stdout, stderr)
	case "migrate":
		return runMigrate(rest, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `kick - kick detection from pose landmarks

Usage: kick <command> [options] [args]

Commands:
  analyze    Detect kicks in a landmark CSV and print them
  stream     Replay a landmark CSV through the live kick counter
  import     Store a landmark CSV in the database
  runs       List recorded analysis runs, or show one with -id
  serve      Serve the JSON API and interactive charts
  submit     Upload a landmark CSV to a running server
  migrate    Manage database schema migrations
  version    Show build information
  help       Show this help message

Common Flags:
  -config <file>   Analysis config JSON (joints, columns, smoothing, peaks)
  -db <file>       SQLite database path

Examples:
  kick analyze -png kicks.png -html kicks.html landmarks.csv
  kick analyze -db kick.db -source session-1 landmarks.csv
  kick stream landmarks.csv
  kick serve -db kick.db -listen :8090
  kick migrate -db kick.db status

Run 'kick <command> -h' for the flags of a command.`)
}
