package main

import (
	"flag"
	"fmt"
	"io"
	"time"
)

type AppFlags struct {
	GlobalConfigFile string
	Command          string
	Args             []string
}

const usage = `Usage: devtargets [-config path] <command> [arguments]

Commands:
  list                 show registered hosts
  add <host>           register a host and list its debug targets
  remove <host>        unregister a host
  select <host>        make a host active and list its debug targets
  refresh              list the debug targets of the active host again
  open <index>         open the embedded inspector for a target of the active host
  copy <index>         copy the hosted inspector URL for a target of the active host
  scan [-add]          find local debug servers listening on the configured ports
  history [flags]      show or export recorded discovery results
`

func ParseFlags(args []string, stderr io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("devtargets", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	flags := AppFlags{}
	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return AppFlags{}, fmt.Errorf("a command is required")
	}
	flags.Command = fs.Arg(0)
	flags.Args = fs.Args()[1:]
	return flags, nil
}

type scanFlags struct {
	Add bool
}

func parseScanFlags(args []string, stderr io.Writer) (scanFlags, error) {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	add := fs.Bool("add", false, "Register every candidate found")
	if err := fs.Parse(args); err != nil {
		return scanFlags{}, err
	}
	return scanFlags{Add: *add}, nil
}

type historyFlags struct {
	Host       string
	Since      time.Duration
	Limit      int
	Export     string
	FromExport string
}

func parseHistoryFlags(args []string, stderr io.Writer) (historyFlags, error) {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	host := fs.String("host", "", "Only show results for this host")
	since := fs.Duration("since", 0, "Only show results newer than this (e.g. 24h)")
	limit := fs.Int("limit", 20, "Maximum number of results, 0 for all")
	export := fs.String("export", "", "Write the selected results to a Parquet export with this name")
	fromExport := fs.String("from-export", "", "Show the results of a previous Parquet export instead of the database")
	if err := fs.Parse(args); err != nil {
		return historyFlags{}, err
	}
	if *limit < 0 {
		return historyFlags{}, fmt.Errorf("-limit must not be negative")
	}
	return historyFlags{
		Host:       *host,
		Since:      *since,
		Limit:      *limit,
		Export:     *export,
		FromExport: *fromExport,
	}, nil
}
