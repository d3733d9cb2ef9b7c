// Command historyd runs the hand-history archive instance (spec.md
// §1, §6): a standalone service table instances fire-and-forget their
// completed HandHistoryRecords to. Flag-based startup and the
// slog.Backend wiring follow cmd/pokersrv/main.go, with the
// bisonbotkit logging.LogBackend wrapper dropped in favor of slog's
// own backend directly (see DESIGN.md).
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/decred/slog"

	"github.com/icpholdem/tableengine/pkg/archive"
)

func main() {
	var (
		dbPath     string
		host       string
		port       int
		debugLevel string
	)
	flag.StringVar(&dbPath, "db", "historyd.sqlite", "path to SQLite database file (created if missing)")
	flag.StringVar(&host, "host", "127.0.0.1", "host to listen on")
	flag.IntVar(&port, "port", 8090, "port to listen on")
	flag.StringVar(&debugLevel, "debuglevel", "info", "logging level: trace, debug, info, warn, error")
	flag.Parse()

	backend := slog.NewBackend(os.Stdout)
	log := backend.Logger("HISTORYD")
	log.SetLevel(levelFromName(debugLevel))

	store, err := archive.NewStore(dbPath)
	if err != nil {
		log.Errorf("failed to open archive store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	handler, err := archive.NewHandler(store)
	if err != nil {
		log.Errorf("failed to build archive handler: %v", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Infof("archive instance listening on %s, db=%s", addr, dbPath)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Errorf("serve error: %v", err)
		os.Exit(1)
	}
}

// levelFromName maps the -debuglevel flag's accepted names to slog
// levels, defaulting to LevelInfo for an unrecognized value rather than
// failing startup over a logging typo.
func levelFromName(name string) slog.Level {
	switch name {
	case "trace":
		return slog.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return slog.LevelCritical
	default:
		return slog.LevelInfo
	}
}
