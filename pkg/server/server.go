package server

import (
	"fmt"
	"sync"

	"github.com/decred/slog"

	"github.com/icpholdem/tableengine/pkg/archive"
	"github.com/icpholdem/tableengine/pkg/engine"
	"github.com/icpholdem/tableengine/pkg/ledger"
)

// Server is the table-instance registry (it is not a lobby catalog):
// the process that owns a registry of independent table instances, each a fully
// isolated *engine.Engine with its own escrow Bridge. Grounded on the
// teacher's Server struct (pkg/server/server.go) holding
// map[string]*poker.Table under a sync.RWMutex, generalized to own an
// engine.Engine (which itself owns a ledger.Bridge) per table instead
// of a bare poker.Table.
type Server struct {
	mu     sync.RWMutex
	tables map[string]*engine.Engine

	store         *Store
	rng           engine.RandomnessSource
	archiveClient archive.Client
	ledgerClients map[ledger.Currency]ledger.Client
	log           slog.Logger
}

// NewServer constructs an empty registry. ledgerClients maps each
// supported currency to its wire client (spec.md §6); a currency with
// no configured client falls back to an error at table-creation time
// rather than silently allowing deposits nobody can verify.
func NewServer(store *Store, rng engine.RandomnessSource, archiveClient archive.Client, ledgerClients map[ledger.Currency]ledger.Client, log slog.Logger) *Server {
	if archiveClient == nil {
		archiveClient = archive.NoopClient{}
	}
	return &Server{
		tables:        make(map[string]*engine.Engine),
		store:         store,
		rng:           rng,
		archiveClient: archiveClient,
		ledgerClients: ledgerClients,
		log:           log,
	}
}

// CreateTable implements the install-time initialization of spec.md
// §6: validates cfg, wires a fresh ledger.Bridge over the configured
// currency's client, and registers the caller as the table's first
// controller.
func (s *Server) CreateTable(tableID string, cfg engine.Config, depositAddr, ownerIdentity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[tableID]; exists {
		return fmt.Errorf("server: table %s already exists", tableID)
	}
	client, ok := s.ledgerClients[cfg.Currency]
	if !ok {
		return fmt.Errorf("server: no ledger client configured for currency %s", cfg.Currency)
	}

	bridge := ledger.NewBridge(cfg.Currency, depositAddr, client)
	var log slog.Logger
	if s.log != nil {
		log = s.log
	}
	e, err := engine.NewEngine(cfg, bridge, s.archiveClient, log)
	if err != nil {
		return err
	}
	e.Controllers[ownerIdentity] = struct{}{}
	s.tables[tableID] = e
	return s.persistLocked(tableID, cfg.Currency.String(), e)
}

func (s *Server) getTable(tableID string) (*engine.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("server: unknown table %s", tableID)
	}
	return e, nil
}

// persistLocked writes tableID's current snapshot to the store. Caller
// already holds whatever lock is appropriate for reading e; this
// itself only touches the Store, which has its own internal
// synchronization via *sql.DB.
func (s *Server) persistLocked(tableID, currency string, e *engine.Engine) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(tableID, currency, e.Snapshot())
}

// saveTable persists a table's state after a mutating RPC call,
// mirroring the teacher's async save-on-mutation pattern but performed
// synchronously: unlike the archive publish (spec.md §5 suspension
// point 5, explicitly fire-and-forget), local persistence is not one
// of the documented suspension points and custodial correctness
// depends on it actually landing before the RPC returns.
func (s *Server) saveTable(tableID string, e *engine.Engine) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(tableID, e.Config.Currency.String(), e.Snapshot()); err != nil && s.log != nil {
		s.log.Errorf("failed to persist table %s: %v", tableID, err)
	}
}

// RestoreAll implements spec.md §4.G's post-upgrade restore across
// every persisted table. It fails loud: the first row that cannot be
// reconstructed aborts the whole restore rather than silently starting
// with partial or empty state, per §7's fatal-restore policy.
func (s *Server) RestoreAll(ledgerClients map[ledger.Currency]ledger.Client) error {
	if s.store == nil {
		return nil
	}
	rows, err := s.store.LoadAll()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		currency := ledger.ICP
		if row.Currency == ledger.BTC.String() {
			currency = ledger.BTC
		}
		client, ok := ledgerClients[currency]
		if !ok {
			return fmt.Errorf("server: restore table %s: no ledger client for currency %s", row.TableID, row.Currency)
		}

		bridge := ledger.NewBridge(currency, "", client)
		e, err := engine.NewEngine(engine.Config{
			SmallBlind: 1, BigBlind: 2, MinBuyIn: 20, MaxBuyIn: 2000, MaxPlayers: 2,
			ActionTimeoutSecs: 30, Currency: currency,
		}, bridge, s.archiveClient, s.log)
		if err != nil {
			return fmt.Errorf("server: restore table %s: placeholder config rejected: %w", row.TableID, err)
		}
		if err := e.UnmarshalSnapshot(row.Payload); err != nil {
			return fmt.Errorf("server: restore table %s: %w", row.TableID, err)
		}
		s.tables[row.TableID] = e
	}
	return nil
}
