package engine

import (
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/icpholdem/tableengine/pkg/archive"
	"github.com/icpholdem/tableengine/pkg/cards"
	"github.com/icpholdem/tableengine/pkg/ledger"
	"github.com/icpholdem/tableengine/pkg/ratelimit"
	"github.com/icpholdem/tableengine/pkg/statemachine"
)

// Phase is one of the Hand State Machine's phases (spec.md §4.D).
type Phase int

const (
	WaitingForPlayers Phase = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
	HandComplete
)

func (p Phase) String() string {
	switch p {
	case PreFlop:
		return "PreFlop"
	case Flop:
		return "Flop"
	case Turn:
		return "Turn"
	case River:
		return "River"
	case Showdown:
		return "Showdown"
	case HandComplete:
		return "HandComplete"
	default:
		return "WaitingForPlayers"
	}
}

// PlayerStatus is a seated player's connectivity/sit-out state.
type PlayerStatus int

const (
	Active PlayerStatus = iota
	SittingOut
	Disconnected
)

// Player is the occupant of a Seat (spec.md §3).
type Player struct {
	Identity          string
	SeatIndex         int
	Chips             uint64
	HoleCards         []cards.Card
	CurrentStreetBet  uint64
	TotalHandBet      uint64
	Folded            bool
	ActedThisRound    bool
	AllIn             bool
	Status            PlayerStatus
	LastSeen          time.Time
	ConsecutiveTimeouts int
	TimeBankRemaining time.Duration
	SitOutNextHand    bool
	BrokeSince        *time.Time
	SittingOutSince   *time.Time
	DisplayName       string
}

// Seat is one of the fixed MaxSeats slots; Occupant is nil when empty.
type Seat struct {
	Occupant *Player
}

// ActionTimer tracks the acting seat's deadline (spec.md §3).
type ActionTimer struct {
	Seat          int
	StartedAt     time.Time
	ExpiresAt     time.Time
	UsingTimeBank bool
}

// ActionRecord is one logged player action within the current hand.
type ActionRecord struct {
	Seat        int
	Action      string
	Amount      uint64
	Timestamp   time.Time
	StreetLabel string
}

// Winner is one seat's payout at hand end.
type Winner struct {
	Seat     int
	Identity string
	Amount   uint64
	HandRank *string
	Cards    []cards.Card
}

// HandHistory is one completed hand's append-only record (spec.md §3).
type HandHistory struct {
	HandNumber      uint64
	Commitment      cards.ShuffleCommitment
	Actions         []ActionRecord
	Winners         []Winner
	Community       []cards.Card
	ShowdownPlayers []archive.ShowdownPlayer
}

// handHistoryRingSize bounds the retained in-memory history, per
// spec.md §3's "the last N entries are retained."
const handHistoryRingSize = 100

// Engine is the root aggregate (spec.md §3): one table instance.
// Grounded on the teacher's *Game/*Table combination (pkg/poker/game.go,
// pkg/poker/table.go) but collapsed into a single mutex-guarded struct
// since this spec's Engine, unlike the teacher's Table+Game split,
// owns ledger escrow, reservation sets, and rate limiting directly.
type Engine struct {
	mu sync.Mutex

	Config Config

	Seats       [MaxSeats]Seat
	Dealer      int
	SBSeat      int
	BBSeat      int
	ActionOn    int
	CurrentBet  uint64
	MinRaise    uint64
	Pot         uint64
	SidePots    []cards.SidePot
	BBHasOption bool
	LastAggressor int

	Deck       *cards.Deck
	Community  []cards.Card
	Commitment cards.ShuffleCommitment
	hiddenSeed []byte

	phaseMachine *statemachine.StateMachine[Engine]
	Phase        Phase

	ActionTimer  *ActionTimer
	AutoDealAt   *time.Time
	HandNumber   uint64

	CurrentHandActions []ActionRecord
	LastHandWinners    []Winner
	History            []HandHistory
	StartingChips      map[string]uint64
	ShownCards         map[int][]cards.Card

	DisplayNames map[string]string
	Controllers  map[string]struct{}
	ArchiveAddr  string

	Bridge       *ledger.Bridge
	ArchiveClient archive.Client

	ActionRate    *ratelimit.Bucket
	HeartbeatRate *ratelimit.Bucket

	Log slog.Logger
}

// NewEngine constructs an Engine in WaitingForPlayers with a validated
// Config. Grounded on the teacher's NewGame/NewTable constructors,
// generalized to own the ledger Bridge and rate limiters directly.
func NewEngine(cfg Config, bridge *ledger.Bridge, archiveClient archive.Client, log slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if archiveClient == nil {
		archiveClient = archive.NoopClient{}
	}

	e := &Engine{
		Config:        cfg,
		Dealer:        -1,
		ActionOn:      -1,
		Phase:         WaitingForPlayers,
		StartingChips: make(map[string]uint64),
		ShownCards:    make(map[int][]cards.Card),
		DisplayNames:  make(map[string]string),
		Controllers:   make(map[string]struct{}),
		Bridge:        bridge,
		ArchiveClient: archiveClient,
		ActionRate:    ratelimit.NewBucket(10, time.Second),
		HeartbeatRate: ratelimit.NewBucket(2, time.Second),
		Log:           log,
	}
	e.phaseMachine = statemachine.NewStateMachine(e, stateWaitingForPlayers)
	return e, nil
}

// activeSeatsWithChips counts seats occupied by an Active player with
// chips > 0, the precondition for start_new_hand (spec.md §4.C).
func (e *Engine) activeSeatsWithChips() int {
	n := 0
	for i := 0; i < e.Config.MaxPlayers; i++ {
		p := e.Seats[i].Occupant
		if p != nil && p.Status == Active && p.Chips > 0 {
			n++
		}
	}
	return n
}

func (e *Engine) seatAt(i int) *Player {
	if i < 0 || i >= e.Config.MaxPlayers {
		return nil
	}
	return e.Seats[i].Occupant
}

func (e *Engine) nextOccupiedSeat(from int) int {
	for i := 1; i <= e.Config.MaxPlayers; i++ {
		idx := (from + i) % e.Config.MaxPlayers
		if e.Seats[idx].Occupant != nil {
			return idx
		}
	}
	return -1
}

// nextActiveWithChips returns the next seat clockwise from from that is
// occupied by an Active player with chips > 0 (dealer eligibility).
func (e *Engine) nextActiveWithChips(from int) int {
	for i := 1; i <= e.Config.MaxPlayers; i++ {
		idx := (from + i) % e.Config.MaxPlayers
		p := e.Seats[idx].Occupant
		if p != nil && p.Status == Active && p.Chips > 0 {
			return idx
		}
	}
	return -1
}
