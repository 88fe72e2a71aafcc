// Command dosectl opera el registro de dosis local sin levantar el servidor HTTP.
// Usa la misma configuración por env que cmd/api.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogadapter "dose-timeline/internal/adapters/catalog"
	"dose-timeline/internal/adapters/storage"
	"dose-timeline/internal/platform/config"
	"dose-timeline/internal/platform/logger"
	"dose-timeline/internal/router"
)

var errUsage = errors.New("usage")

// clock es el reloj de los comandos (tests).
var clock = time.Now

type env struct {
	app    *router.App
	cfg    config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"log":      cmdLog,
	"list":     cmdList,
	"timeline": cmdTimeline,
	"check":    cmdCheck,
	"search":   cmdSearch,
	"export":   cmdExport,
	"import":   cmdImport,
	"rm":       cmdRemove,
	"clear":    cmdClear,
	"stats":    cmdStats,
	"fav":      cmdFav,
}

const usage = `usage: dosectl <command> [flags]

commands:
  log -substance NAME -route ROA -amount N [-unit U] [-at RFC3339] [-notes TEXT]
  list
  timeline [-at RFC3339]
  check NAME
  search [-watch] [TEXT]
  export [-o FILE]
  import [-mode replace|merge] FILE
  rm ID
  clear -yes
  stats
  fav add|rm|ls [NAME]
`

// openApp arma los servicios desde env; los tests lo reemplazan.
var openApp = func(ctx context.Context, stderr io.Writer) (*router.App, config.Config, func(), error) {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "dosectl",
		Writer: stderr,
	})

	store, storeCloser, err := storage.Open(ctx, cfg.Store, log)
	if err != nil {
		return nil, cfg, nil, err
	}
	cat, catCloser, err := catalogadapter.Open(ctx, cfg.Catalog, log)
	if err != nil {
		_ = storeCloser.Close()
		return nil, cfg, nil, err
	}

	app, err := router.New(ctx, router.Options{Config: cfg, Logger: log, Store: store, Catalog: cat})
	closeAll := func() {
		_ = catCloser.Close()
		_ = storeCloser.Close()
	}
	if err != nil {
		closeAll()
		return nil, cfg, nil, err
	}
	return app, cfg, closeAll, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func cli(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "dosectl: unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	app, cfg, closeFn, err := openApp(ctx, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "dosectl:", err)
		return 1
	}
	defer closeFn()

	e := &env{app: app, cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr, now: clock}
	if err := cmd(ctx, e, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "dosectl %s: %v\n\n%s", args[0], err, usage)
			return 2
		}
		fmt.Fprintf(stderr, "dosectl %s: %v\n", args[0], err)
		return 1
	}
	return 0
}
