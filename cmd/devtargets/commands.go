package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/aleister1102/devtargets/internal/datastore"
	"github.com/aleister1102/devtargets/internal/discovery"
	"github.com/aleister1102/devtargets/internal/hostaddr"
	"github.com/aleister1102/devtargets/internal/models"
)

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "list":
		a.controller.Restore(ctx)
		a.printHosts()
		return nil
	case "add":
		return a.runAdd(ctx, args)
	case "remove":
		return a.runRemove(ctx, args)
	case "select":
		return a.runSelect(ctx, args)
	case "refresh":
		return a.runRefresh(ctx)
	case "open", "copy":
		return a.runLaunch(ctx, command, args)
	case "scan":
		return a.runScan(ctx, args)
	case "history":
		return a.runHistory(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func requireArg(command string, args []string, name string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s expects exactly one %s", command, name)
	}
	return args[0], nil
}

func (a *app) runAdd(ctx context.Context, args []string) error {
	raw, err := requireArg("add", args, "host")
	if err != nil {
		return err
	}
	a.controller.Restore(ctx)

	session, err := a.controller.Add(ctx, raw)
	if errors.Is(err, hostaddr.ErrEmptyHost) {
		return fmt.Errorf("add expects a non-empty host")
	}
	if err != nil {
		return err
	}
	err = a.await(ctx, session)
	a.printHosts()
	return err
}

func (a *app) runRemove(ctx context.Context, args []string) error {
	host, err := requireArg("remove", args, "host")
	if err != nil {
		return err
	}
	a.controller.Restore(ctx)

	if err := a.controller.Remove(ctx, host); err != nil {
		return err
	}
	a.printHosts()
	return nil
}

func (a *app) runSelect(ctx context.Context, args []string) error {
	host, err := requireArg("select", args, "host")
	if err != nil {
		return err
	}
	a.controller.Restore(ctx)

	session, err := a.controller.Select(ctx, host)
	if err != nil {
		return err
	}
	err = a.await(ctx, session)
	a.printHosts()
	return err
}

func (a *app) runRefresh(ctx context.Context) error {
	if a.controller.Restore(ctx) == "" {
		a.console.RenderEmpty()
		return nil
	}
	err := a.await(ctx, a.controller.Refresh(ctx))
	a.printHosts()
	return err
}

func (a *app) runLaunch(ctx context.Context, command string, args []string) error {
	raw, err := requireArg(command, args, "target index")
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid target index %q", raw)
	}

	if a.controller.Restore(ctx) == "" {
		a.console.RenderEmpty()
		return fmt.Errorf("%s needs an active host", command)
	}
	if err := a.await(ctx, a.controller.Refresh(ctx)); err != nil {
		return err
	}

	if command == "open" {
		return a.controller.OpenTarget(ctx, index)
	}
	return a.controller.CopyTarget(ctx, index)
}

func (a *app) runScan(ctx context.Context, args []string) error {
	flags, err := parseScanFlags(args, a.out)
	if err != nil {
		return err
	}

	candidates, err := discovery.NewScanner(a.cfg.DiscoveryConfig.ScanPorts, a.logger).ScanLocal(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintf(a.out, "No debug servers listening on ports %v\n", a.cfg.DiscoveryConfig.ScanPorts)
		return nil
	}
	for _, candidate := range candidates {
		fmt.Fprintln(a.out, candidate)
	}
	if !flags.Add {
		return nil
	}

	a.controller.Restore(ctx)
	var last *discovery.Session
	for _, candidate := range candidates {
		session, err := a.controller.Add(ctx, candidate)
		if err != nil {
			a.logger.Warn().Err(err).Str("candidate", candidate).Msg("Skipping scan candidate")
			continue
		}
		last = session
	}
	err = a.await(ctx, last)
	a.printHosts()
	return err
}

func (a *app) runHistory(ctx context.Context, args []string) error {
	flags, err := parseHistoryFlags(args, a.out)
	if err != nil {
		return err
	}

	var records []models.ProbeRecord
	if flags.FromExport != "" {
		records, err = datastore.NewParquetReader(&a.cfg.StorageConfig, a.logger).ReadExport(flags.FromExport)
	} else {
		query := models.HistoryQuery{Host: flags.Host, Limit: flags.Limit}
		if flags.Since > 0 {
			query.Since = time.Now().Add(-flags.Since)
		}
		records, err = a.store.History(ctx, query)
	}
	if err != nil {
		return err
	}

	printHistory(a.out, records)

	if flags.Export == "" {
		return nil
	}
	writer, err := datastore.NewParquetWriter(&a.cfg.StorageConfig, a.logger)
	if err != nil {
		return err
	}
	result, err := writer.Write(ctx, records, flags.Export)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d records to %s\n", result.RecordsWritten, result.FilePath)
	return nil
}

func printHistory(out io.Writer, records []models.ProbeRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No discovery results recorded.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tHOST\tSTATUS\tTARGETS\tDURATION\tMESSAGE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2fs\t%s\n",
			r.Timestamp.Local().Format(time.DateTime), r.Host, r.Status, r.TargetCount, r.Duration, r.Message)
	}
	_ = tw.Flush()
}
