package server

import (
	"net/http"
	"time"

	rpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"

	"github.com/icpholdem/tableengine/pkg/apperr"
	"github.com/icpholdem/tableengine/pkg/cards"
	"github.com/icpholdem/tableengine/pkg/engine"
	"github.com/icpholdem/tableengine/pkg/ledger"
)

// Service is the gorilla/rpc-exposed table-engine API, named "Table" so
// methods dispatch as "Table.BuyIn" etc — the same ServiceName.Method
// convention archive.Service uses (see archive/service.go), adopted in
// place of the teacher's generated gRPC service interface (see
// DESIGN.md's dropped-dependency note on google.golang.org/grpc).
type Service struct {
	server *Server
}

func NewService(server *Server) *Service {
	return &Service{server: server}
}

// NewHandler builds the net/http handler exposing Service at the
// gorilla/rpc JSON-RPC 2.0 codec, matching archive.NewHandler.
func NewHandler(server *Server) (http.Handler, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(NewService(server), "Table"); err != nil {
		return nil, err
	}
	return rpcServer, nil
}

func reqNow(r *http.Request) time.Time {
	return time.Now()
}

// ---------- Admin ----------

type ConfigArgs struct {
	SmallBlind        uint64 `json:"small_blind"`
	BigBlind          uint64 `json:"big_blind"`
	MinBuyIn          uint64 `json:"min_buy_in"`
	MaxBuyIn          uint64 `json:"max_buy_in"`
	MaxPlayers        int    `json:"max_players"`
	Ante              uint64 `json:"ante"`
	ActionTimeoutSecs int    `json:"action_timeout_secs"`
	TimeBankSecs      int    `json:"time_bank_secs"`
	Currency          string `json:"currency"`
}

func (c ConfigArgs) toEngineConfig() engine.Config {
	currency := ledger.ICP
	if c.Currency == "BTC" {
		currency = ledger.BTC
	}
	return engine.Config{
		SmallBlind:        c.SmallBlind,
		BigBlind:          c.BigBlind,
		MinBuyIn:          c.MinBuyIn,
		MaxBuyIn:          c.MaxBuyIn,
		MaxPlayers:        c.MaxPlayers,
		Ante:              c.Ante,
		ActionTimeoutSecs: c.ActionTimeoutSecs,
		TimeBankSecs:      c.TimeBankSecs,
		Currency:          currency,
	}
}

type InitializeArgs struct {
	TableID       string     `json:"table_id"`
	Config        ConfigArgs `json:"config"`
	DepositAddr   string     `json:"deposit_addr"`
	OwnerIdentity string     `json:"owner_identity"`
}
type InitializeReply struct{}

// Initialize implements spec.md §6's install-time initialization.
func (s *Service) Initialize(r *http.Request, args *InitializeArgs, reply *InitializeReply) error {
	if err := s.server.CreateTable(args.TableID, args.Config.toEngineConfig(), args.DepositAddr, args.OwnerIdentity); err != nil {
		return err
	}
	*reply = InitializeReply{}
	return nil
}

type CallerArgs struct {
	TableID string `json:"table_id"`
	Caller  string `json:"caller"`
}
type EmptyReply struct{}

func (s *Service) Reset(r *http.Request, args *CallerArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.Reset(args.Caller); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type UpdateConfigArgs struct {
	TableID string     `json:"table_id"`
	Caller  string     `json:"caller"`
	Config  ConfigArgs `json:"config"`
}

func (s *Service) UpdateConfig(r *http.Request, args *UpdateConfigArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.UpdateConfig(args.Caller, args.Config.toEngineConfig()); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type ControllerArgs struct {
	TableID  string `json:"table_id"`
	Caller   string `json:"caller"`
	Identity string `json:"identity"`
}

func (s *Service) AddController(r *http.Request, args *ControllerArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.AddController(args.Caller, args.Identity); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

func (s *Service) RemoveController(r *http.Request, args *ControllerArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.RemoveController(args.Caller, args.Identity); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type RestoreBalanceArgs struct {
	TableID  string `json:"table_id"`
	Caller   string `json:"caller"`
	Identity string `json:"identity"`
	Amount   uint64 `json:"amount"`
}

func (s *Service) RestoreBalance(r *http.Request, args *RestoreBalanceArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.RestoreBalance(args.Caller, args.Identity, args.Amount); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type SetArchiveAddressArgs struct {
	TableID string `json:"table_id"`
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

func (s *Service) SetArchiveAddress(r *http.Request, args *SetArchiveAddressArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.SetArchiveAddress(args.Caller, args.Address); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type GetRawStateArgs struct {
	TableID string `json:"table_id"`
	Caller  string `json:"caller"`
}
type GetRawStateReply struct {
	State engine.PersistedState `json:"state"`
}

// GetRawState exposes SPEC_FULL.md's administrative raw-state query: an
// operator debugging a stuck table gets the full PersistedState,
// including the hidden shuffle seed and deck ordering. Never reachable
// through any player-facing method; gated entirely by
// Engine.GetRawState's controller check.
func (s *Service) GetRawState(r *http.Request, args *GetRawStateArgs, reply *GetRawStateReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	state, err := e.GetRawState(args.Caller)
	if err != nil {
		return err
	}
	*reply = GetRawStateReply{State: state}
	return nil
}

// ---------- Player-facing ----------

type RegisterArgs struct {
	TableID     string `json:"table_id"`
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
}

func (s *Service) Register(r *http.Request, args *RegisterArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	e.Register(args.Identity, args.DisplayName)
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type VerifyDepositArgs struct {
	TableID    string `json:"table_id"`
	Identity   string `json:"identity"`
	BlockIndex uint64 `json:"block_index"`
}

// VerifyDeposit implements spec.md §4.A's pull-model deposit.
func (s *Service) VerifyDeposit(r *http.Request, args *VerifyDepositArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.Bridge.VerifyDeposit(r.Context(), args.Identity, args.BlockIndex, reqNow(r)); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type PushDepositArgs struct {
	TableID  string `json:"table_id"`
	Identity string `json:"identity"`
	Amount   uint64 `json:"amount"`
}

// PushDeposit implements spec.md §4.A's push-model deposit.
func (s *Service) PushDeposit(r *http.Request, args *PushDepositArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.Bridge.PushDeposit(r.Context(), args.Identity, args.Amount); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type WithdrawArgs struct {
	TableID  string `json:"table_id"`
	Identity string `json:"identity"`
	Amount   uint64 `json:"amount"`
}
type WithdrawReply struct {
	BlockIndex uint64 `json:"block_index"`
}

func (s *Service) Withdraw(r *http.Request, args *WithdrawArgs, reply *WithdrawReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	result, err := e.Bridge.Withdraw(r.Context(), args.Identity, args.Amount, reqNow(r), e.InHand)
	if err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	reply.BlockIndex = result.BlockIndex
	return nil
}

type AmountArgs struct {
	TableID  string `json:"table_id"`
	Identity string `json:"identity"`
	Amount   uint64 `json:"amount"`
}
type SeatReply struct {
	SeatIndex int `json:"seat_index"`
}

func (s *Service) BuyIn(r *http.Request, args *AmountArgs, reply *SeatReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	idx, err := e.BuyIn(args.Identity, args.Amount, reqNow(r))
	if err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	reply.SeatIndex = idx
	return nil
}

func (s *Service) Reload(r *http.Request, args *AmountArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.Reload(args.Identity, args.Amount, reqNow(r)); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type IdentityArgs struct {
	TableID  string `json:"table_id"`
	Identity string `json:"identity"`
}
type ChipsReply struct {
	Amount uint64 `json:"amount"`
}

func (s *Service) CashOut(r *http.Request, args *IdentityArgs, reply *ChipsReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	amount, err := e.CashOut(args.Identity, reqNow(r))
	if err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	reply.Amount = amount
	return nil
}

func (s *Service) JoinTable(r *http.Request, args *IdentityArgs, reply *SeatReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	idx, err := e.JoinTable(args.Identity, reqNow(r))
	if err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	reply.SeatIndex = idx
	return nil
}

func (s *Service) LeaveTable(r *http.Request, args *IdentityArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.LeaveTable(args.Identity, reqNow(r)); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type PlayerActionArgs struct {
	TableID  string `json:"table_id"`
	Identity string `json:"identity"`
	Kind     string `json:"kind"`
	Amount   uint64 `json:"amount"`
}

func parseActionKind(s string) (engine.ActionKind, error) {
	switch s {
	case "Fold":
		return engine.Fold, nil
	case "Check":
		return engine.Check, nil
	case "Call":
		return engine.Call, nil
	case "Bet":
		return engine.Bet, nil
	case "Raise":
		return engine.Raise, nil
	case "AllIn":
		return engine.AllIn, nil
	default:
		return 0, apperr.Precondition("unknown action kind %q", s)
	}
}

func (s *Service) PlayerAction(r *http.Request, args *PlayerActionArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	kind, err := parseActionKind(args.Kind)
	if err != nil {
		return err
	}
	if err := e.PlayerAction(args.Identity, kind, args.Amount, reqNow(r)); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type TableIDArgs struct {
	TableID string `json:"table_id"`
}

func (s *Service) StartNewHand(r *http.Request, args *TableIDArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.StartNewHand(r.Context(), s.server.rng, reqNow(r)); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

type CheckTimeoutsReply struct {
	Signal string `json:"signal"`
}

func (s *Service) CheckTimeouts(r *http.Request, args *TableIDArgs, reply *CheckTimeoutsReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	signal := e.CheckTimeouts(reqNow(r))
	s.server.saveTable(args.TableID, e)
	if signal == engine.AutoDealReady {
		reply.Signal = "AutoDealReady"
	} else {
		reply.Signal = "NoAction"
	}
	return nil
}

func (s *Service) Heartbeat(r *http.Request, args *IdentityArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.Heartbeat(args.Identity, reqNow(r)); err != nil {
		return err
	}
	*reply = EmptyReply{}
	return nil
}

func (s *Service) SitOut(r *http.Request, args *IdentityArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.SitOut(args.Identity, reqNow(r)); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

func (s *Service) SitIn(r *http.Request, args *IdentityArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.SitIn(args.Identity); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

func (s *Service) SitOutNextHand(r *http.Request, args *IdentityArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.SitOutNextHand(args.Identity); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

func (s *Service) UseTimeBank(r *http.Request, args *IdentityArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.UseTimeBank(args.Identity, reqNow(r)); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

func (s *Service) ShowCards(r *http.Request, args *IdentityArgs, reply *EmptyReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	if err := e.ShowCards(args.Identity); err != nil {
		return err
	}
	s.server.saveTable(args.TableID, e)
	*reply = EmptyReply{}
	return nil
}

// ---------- Queries ----------

type GetTableViewArgs struct {
	TableID string `json:"table_id"`
	Caller  string `json:"caller"`
}
type GetTableViewReply struct {
	View engine.TableView `json:"view"`
}

func (s *Service) GetTableView(r *http.Request, args *GetTableViewArgs, reply *GetTableViewReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	reply.View = e.GetTableView(args.Caller)
	return nil
}

type CardsReply struct {
	Cards []cards.Card `json:"cards"`
}

func (s *Service) GetMyCards(r *http.Request, args *IdentityArgs, reply *CardsReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	c, err := e.GetMyCards(args.Identity)
	if err != nil {
		return err
	}
	reply.Cards = c
	return nil
}

func (s *Service) GetCommunityCards(r *http.Request, args *TableIDArgs, reply *CardsReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	reply.Cards = e.GetCommunityCards()
	return nil
}

type GetPotReply struct {
	Pot      uint64          `json:"pot"`
	SidePots []cards.SidePot `json:"side_pots,omitempty"`
}

func (s *Service) GetPot(r *http.Request, args *TableIDArgs, reply *GetPotReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	pot, sidePots := e.GetPot()
	reply.Pot = pot
	reply.SidePots = sidePots
	return nil
}

type GetActionTimerReply struct {
	Timer *engine.ActionTimer `json:"timer,omitempty"`
}

func (s *Service) GetActionTimer(r *http.Request, args *TableIDArgs, reply *GetActionTimerReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	reply.Timer = e.GetActionTimer()
	return nil
}

type GetTimeRemainingReply struct {
	RemainingMs int64 `json:"remaining_ms"`
}

func (s *Service) GetTimeRemaining(r *http.Request, args *TableIDArgs, reply *GetTimeRemainingReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	reply.RemainingMs = e.GetTimeRemaining(reqNow(r)).Milliseconds()
	return nil
}

type GetHandHistoryArgs struct {
	TableID    string `json:"table_id"`
	HandNumber uint64 `json:"hand_number"`
}
type GetHandHistoryReply struct {
	History engine.HandHistory `json:"history"`
}

func (s *Service) GetHandHistory(r *http.Request, args *GetHandHistoryArgs, reply *GetHandHistoryReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	h, err := e.GetHandHistory(args.HandNumber)
	if err != nil {
		return err
	}
	reply.History = h
	return nil
}

func (s *Service) GetBalance(r *http.Request, args *IdentityArgs, reply *ChipsReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	reply.Amount = e.GetBalance(args.Identity)
	return nil
}

type GetDepositAddressReply struct {
	Address string `json:"address"`
}

func (s *Service) GetDepositAddress(r *http.Request, args *TableIDArgs, reply *GetDepositAddressReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	reply.Address = e.GetDepositAddress()
	return nil
}

type VerifyShuffleArgs struct {
	SeedHash     string `json:"seed_hash"`
	RevealedSeed string `json:"revealed_seed"`
}
type VerifyShuffleReply struct {
	Valid bool `json:"valid"`
}

func (s *Service) VerifyShuffle(r *http.Request, args *VerifyShuffleArgs, reply *VerifyShuffleReply) error {
	ok, err := engine.VerifyShuffle(args.SeedHash, args.RevealedSeed)
	if err != nil {
		return err
	}
	reply.Valid = ok
	return nil
}

type GetShownCardsArgs struct {
	TableID string `json:"table_id"`
	Seat    int    `json:"seat"`
}

func (s *Service) GetShownCards(r *http.Request, args *GetShownCardsArgs, reply *CardsReply) error {
	e, err := s.server.getTable(args.TableID)
	if err != nil {
		return err
	}
	reply.Cards = e.GetShownCards(args.Seat)
	return nil
}
