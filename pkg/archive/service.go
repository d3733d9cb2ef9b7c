package archive

import (
	"database/sql"
	"net/http"

	rpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"

	"github.com/icpholdem/tableengine/pkg/apperr"
)

// Service is the gorilla/rpc-exposed archive API, named "Archive" so
// its methods are dispatched as "Archive.RecordHand" etc (the gorilla
// convention of ServiceName.Method), matching client.go's call site.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// RecordHand stores a completed hand's history. Idempotent: replaying
// the same (table_id, hand_number) overwrites with the same payload.
func (s *Service) RecordHand(r *http.Request, args *RecordHandArgs, reply *RecordHandReply) error {
	if err := s.store.Save(args.Record); err != nil {
		return apperr.Ledger("archive: %s", err.Error())
	}
	*reply = RecordHandReply{}
	return nil
}

// GetHandHistoryArgs/Reply back the get_hand_history(hand_number) query
// of spec.md §6 when routed through the archive rather than a table
// instance's own ring buffer.
type GetHandHistoryArgs struct {
	TableID    string `json:"table_id"`
	HandNumber uint64 `json:"hand_number"`
}

type GetHandHistoryReply struct {
	Record HandHistoryRecord `json:"record"`
}

func (s *Service) GetHandHistory(r *http.Request, args *GetHandHistoryArgs, reply *GetHandHistoryReply) error {
	record, err := s.store.Load(args.TableID, args.HandNumber)
	if err == sql.ErrNoRows {
		return apperr.NotFound("no hand history for table %s hand %d", args.TableID, args.HandNumber)
	}
	if err != nil {
		return apperr.Ledger("archive: %s", err.Error())
	}
	reply.Record = record
	return nil
}

// ListHandsArgs/Reply enumerate every hand number archived for a table.
type ListHandsArgs struct {
	TableID string `json:"table_id"`
}

type ListHandsReply struct {
	HandNumbers []uint64 `json:"hand_numbers"`
}

func (s *Service) ListHands(r *http.Request, args *ListHandsArgs, reply *ListHandsReply) error {
	numbers, err := s.store.ListByTable(args.TableID)
	if err != nil {
		return apperr.Ledger("archive: %s", err.Error())
	}
	reply.HandNumbers = numbers
	return nil
}

// NewHandler builds the net/http handler exposing Service at the
// gorilla/rpc JSON-RPC 2.0 codec, matching the teacher's server.go
// pattern of a single registered handler mounted by cmd/historyd.
func NewHandler(store *Store) (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	if err := server.RegisterService(NewService(store), "Archive"); err != nil {
		return nil, err
	}
	return server, nil
}
