// Command pokersrv runs a table-engine instance (spec.md §1, §6):
// a process owning one or more independent poker tables, each a fully
// isolated Engine with its own escrow Bridge, exposed over gorilla/rpc.
// Flag-based startup and the slog.Backend wiring follow cmd/historyd's
// pattern, replacing this file's prior grpc.Server/pokerrpc wiring
// (see DESIGN.md for why that stack was dropped).
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/decred/slog"

	"github.com/icpholdem/tableengine/pkg/archive"
	"github.com/icpholdem/tableengine/pkg/ledger"
	"github.com/icpholdem/tableengine/pkg/server"
)

func main() {
	var (
		dbPath       string
		host         string
		port         int
		debugLevel   string
		archiveURL   string
		icpLedgerURL string
		btcLedgerURL string
		ourRecipient string
	)
	flag.StringVar(&dbPath, "db", "pokersrv.sqlite", "path to SQLite database file (created if missing)")
	flag.StringVar(&host, "host", "127.0.0.1", "host to listen on")
	flag.IntVar(&port, "port", 8091, "port to listen on")
	flag.StringVar(&debugLevel, "debuglevel", "info", "logging level: trace, debug, info, warn, error")
	flag.StringVar(&archiveURL, "archive", "", "base URL of the hand-history archive instance (empty disables archiving)")
	flag.StringVar(&icpLedgerURL, "icp-ledger", "", "base URL of the ICP ledger wire client (empty disables ICP tables)")
	flag.StringVar(&btcLedgerURL, "btc-ledger", "", "base URL of the ckBTC ledger wire client (empty disables BTC tables)")
	flag.StringVar(&ourRecipient, "recipient", "", "this instance's own ledger recipient identifier, for RecipientMatchesInstance checks")
	flag.Parse()

	backend := slog.NewBackend(os.Stdout)
	log := backend.Logger("POKERSRV")
	log.SetLevel(levelFromName(debugLevel))

	store, err := server.NewStore(dbPath)
	if err != nil {
		log.Errorf("failed to open table store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	var archiveClient archive.Client
	if archiveURL != "" {
		archiveClient = archive.NewHTTPClient(archiveURL)
	} else {
		archiveClient = archive.NoopClient{}
	}

	ledgerClients := make(map[ledger.Currency]ledger.Client)
	if icpLedgerURL != "" {
		ledgerClients[ledger.ICP] = ledger.NewHTTPClient(icpLedgerURL, ourRecipient)
	}
	if btcLedgerURL != "" {
		ledgerClients[ledger.BTC] = ledger.NewHTTPClient(btcLedgerURL, ourRecipient)
	}

	srv := server.NewServer(store, server.CryptoRandSource{}, archiveClient, ledgerClients, log)
	if err := srv.RestoreAll(ledgerClients); err != nil {
		log.Errorf("failed to restore persisted tables: %v", err)
		os.Exit(1)
	}

	handler, err := server.NewHandler(srv)
	if err != nil {
		log.Errorf("failed to build table-engine handler: %v", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Infof("table-engine instance listening on %s, db=%s", addr, dbPath)
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
