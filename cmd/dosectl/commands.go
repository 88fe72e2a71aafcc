package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"dose-timeline/internal/domain/catalog"
	"dose-timeline/internal/domain/doselog"
	"dose-timeline/internal/domain/interactions"
	"dose-timeline/internal/domain/timeline"

	"github.com/dustin/go-humanize"
)

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func parseAt(v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: -at must be RFC3339", errUsage)
	}
	return t, nil
}

func printWarning(w io.Writer, f interactions.Finding) {
	fmt.Fprintf(w, "WARNING: %s interaction with active %s", f.Severity, f.With)
	if f.Note != "" {
		fmt.Fprintf(w, " (%s)", f.Note)
	}
	fmt.Fprintln(w)
}

func formatEntry(e doselog.Entry, now time.Time) string {
	return fmt.Sprintf("%s  %-16s %s %s %s  %s",
		e.ID,
		e.SubstanceName,
		humanize.Ftoa(e.Amount),
		e.Unit,
		e.Route,
		humanize.RelTime(e.Start(), now, "ago", "from now"),
	)
}

func cmdLog(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("log", e)
	substance := fs.String("substance", "", "substance name")
	route := fs.String("route", "", "route of administration")
	amount := fs.String("amount", "", "amount (positive number)")
	unit := fs.String("unit", "", "unit for substances unknown to the catalog")
	at := fs.String("at", "", "timestamp (RFC3339, default now)")
	notes := fs.String("notes", "", "free text")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	ts, err := parseAt(*at)
	if err != nil {
		return err
	}

	d := doselog.Draft{
		SubstanceName: *substance,
		Route:         *route,
		Amount:        *amount,
		Unit:          *unit,
		Timestamp:     ts,
		Notes:         *notes,
	}
	if strings.TrimSpace(*substance) != "" {
		sub, err := e.app.Catalog.GetDetail(ctx, *substance)
		switch {
		case err == nil:
			d = doselog.NewDraft(sub, *route, *amount, ts, *notes)
		case errors.Is(err, catalog.ErrUnavailable):
			fmt.Fprintln(e.stderr, "catalog unavailable, logging as ad hoc entry")
		}
	}

	// la advertencia se calcula antes del alta: la dosis nueva no cuenta como activa
	var (
		f    interactions.Finding
		warn bool
	)
	if strings.TrimSpace(d.SubstanceName) != "" {
		f, warn = e.app.Checker.Check(ctx, d.SubstanceName)
	}

	entry, err := e.app.Doses.Add(ctx, d)
	if err != nil {
		return err
	}
	if warn {
		printWarning(e.stderr, f)
	}
	fmt.Fprintf(e.stdout, "logged %s %s %s %s %s (%d min)\n",
		entry.ID, entry.SubstanceName, humanize.Ftoa(entry.Amount), entry.Unit, entry.Route, entry.EstimatedDurationMinutes)
	return nil
}

func cmdList(ctx context.Context, e *env, args []string) error {
	if err := newFlagSet("list", e).Parse(args); err != nil {
		return errUsage
	}
	items := e.app.Doses.List(ctx)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp > items[j].Timestamp })

	now := e.now()
	for _, it := range items {
		fmt.Fprintln(e.stdout, formatEntry(it, now))
	}
	return nil
}

func cmdTimeline(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("timeline", e)
	at := fs.String("at", "", "reference instant (RFC3339, default now)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	ts, err := parseAt(*at)
	if err != nil {
		return err
	}
	if ts.IsZero() {
		ts = e.now()
	}

	v := timeline.Partition(e.app.Doses.List(ctx), ts)

	fmt.Fprintf(e.stdout, "active (%d)\n", len(v.Active))
	for _, w := range v.Active {
		fmt.Fprintf(e.stdout, "  %-16s %5.1f%%  ends %s\n",
			w.Entry.SubstanceName, w.ProgressPercent, humanize.RelTime(w.End, ts, "ago", "from now"))
	}
	fmt.Fprintf(e.stdout, "history (%d)\n", len(v.History))
	for _, w := range v.History {
		fmt.Fprintf(e.stdout, "  %s\n", formatEntry(w.Entry, ts))
	}
	return nil
}

func cmdCheck(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("%w: check NAME", errUsage)
	}
	f, ok := e.app.Checker.Check(ctx, args[0])
	if !ok {
		fmt.Fprintln(e.stdout, "no interactions with active substances")
		return nil
	}
	printWarning(e.stdout, f)
	return nil
}

func printResult(w io.Writer, r catalog.Result) {
	fmt.Fprintf(w, "> %s\n", r.Query)
	if r.Err != nil {
		fmt.Fprintln(w, "  (catalog unavailable)")
	}
	for _, it := range r.Items {
		fmt.Fprintf(w, "  %s\n", it.Name)
	}
}

func cmdSearch(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("search", e)
	watch := fs.Bool("watch", false, "read queries line by line from stdin (debounced)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if !*watch {
		items, err := e.app.Catalog.Browse(ctx, strings.Join(fs.Args(), " "))
		if errors.Is(err, catalog.ErrUnavailable) {
			fmt.Fprintln(e.stderr, "catalog unavailable")
		}
		for _, it := range items {
			fmt.Fprintln(e.stdout, it.Name)
		}
		return nil
	}
	return watchSearch(ctx, e)
}

// watchSearch manda cada línea al Searcher y al terminar stdin espera
// el resultado de la última consulta.
func watchSearch(ctx context.Context, e *env) error {
	delivered := make(chan string, 1)
	s := catalog.NewSearcher(e.app.Catalog, e.cfg.SearchDebounce, func(r catalog.Result) {
		printResult(e.stdout, r)
		select {
		case <-delivered:
		default:
		}
		delivered <- r.Query
	})
	defer s.Stop()

	last := ""
	sc := bufio.NewScanner(e.stdin)
	for sc.Scan() {
		last = strings.TrimSpace(sc.Text())
		s.Submit(last)
	}
	if err := sc.Err(); err != nil {
		return err
	}

	timeout := e.cfg.SearchDebounce + e.cfg.Catalog.Timeout + time.Second
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case q := <-delivered:
			if q == last {
				return nil
			}
		case <-deadline.C:
			return errors.New("search timed out")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func cmdExport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("export", e)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	b, err := e.app.Doses.Export(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = e.stdout.Write(append(b, '\n'))
		return err
	}
	if err := os.WriteFile(*out, b, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(e.stderr, "exported %d entries to %s (%s)\n", len(e.app.Doses.List(ctx)), *out, humanize.Bytes(uint64(len(b))))
	return nil
}

func cmdImport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("import", e)
	mode := fs.String("mode", string(doselog.ImportReplace), "replace | merge")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: import FILE", errUsage)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	n, err := e.app.Doses.Import(ctx, data, doselog.ImportMode(*mode))
	if err != nil {
		return err
	}
	st := e.app.Doses.Stats(ctx)
	fmt.Fprintf(e.stdout, "imported %d entries (%d total, %d substances)\n", n, st.TotalLogs, st.UniqueSubstances)
	return nil
}

func cmdRemove(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: rm ID", errUsage)
	}
	if err := e.app.Doses.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, "removed", args[0])
	return nil
}

func cmdClear(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("clear", e)
	yes := fs.Bool("yes", false, "confirm deleting the whole history")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if !*yes {
		return errors.New("refusing to clear the history without -yes")
	}
	if err := e.app.Doses.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, "history cleared")
	return nil
}

func cmdStats(ctx context.Context, e *env, _ []string) error {
	st := e.app.Doses.Stats(ctx)
	fmt.Fprintf(e.stdout, "total logs: %s\nunique substances: %s\n",
		humanize.Comma(int64(st.TotalLogs)), humanize.Comma(int64(st.UniqueSubstances)))
	return nil
}

func cmdFav(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: fav add|rm|ls [NAME]", errUsage)
	}
	fav := e.app.Favorites

	switch args[0] {
	case "ls":
		for _, n := range fav.List() {
			fmt.Fprintln(e.stdout, n)
		}
		return nil
	case "add", "rm":
		if len(args) != 2 {
			return fmt.Errorf("%w: fav %s NAME", errUsage, args[0])
		}
		if args[0] == "add" {
			return fav.Add(ctx, args[1])
		}
		return fav.Remove(ctx, args[1])
	}
	return fmt.Errorf("%w: unknown fav subcommand %q", errUsage, args[0])
}
