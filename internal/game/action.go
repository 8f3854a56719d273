package game

import (
	"fmt"
	"strings"
)

// ActionKind enumerates the inputs the engine accepts.
type ActionKind int

const (
	ActionDeal ActionKind = iota
	ActionJoin
	ActionLeave
	ActionPass
	ActionServe
	ActionSelectFromPile
	ActionSelectAndPass
	ActionOneChance
	ActionFlushTimerFired
	ActionFlushTimerCanceled
)

var actionNames = map[ActionKind]string{
	ActionDeal:               "deal",
	ActionJoin:               "join",
	ActionLeave:              "leave",
	ActionPass:               "pass",
	ActionServe:              "serve",
	ActionSelectFromPile:     "select_from_pile",
	ActionSelectAndPass:      "select_and_pass",
	ActionOneChance:          "one_chance",
	ActionFlushTimerFired:    "flush_timer_fired",
	ActionFlushTimerCanceled: "flush_timer_canceled",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseActionKind looks up an action kind by its wire name.
func ParseActionKind(s string) (ActionKind, error) {
	for k, name := range actionNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	kind, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Pool names a card source for a prompt or a flush destination.
type Pool int

const (
	PoolNone Pool = iota
	PoolDiscard
	PoolExcluded
	PoolHand
)

func (p Pool) String() string {
	switch p {
	case PoolDiscard:
		return "discard"
	case PoolExcluded:
		return "excluded"
	case PoolHand:
		return "hand"
	default:
		return "none"
	}
}

// ParsePool looks up a pool by name.
func ParsePool(s string) (Pool, error) {
	switch strings.ToLower(s) {
	case "discard":
		return PoolDiscard, nil
	case "excluded":
		return PoolExcluded, nil
	case "hand":
		return PoolHand, nil
	case "", "none":
		return PoolNone, nil
	default:
		return PoolNone, fmt.Errorf("unknown pool %q", s)
	}
}

func (p Pool) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pool) UnmarshalText(text []byte) error {
	pool, err := ParsePool(string(text))
	if err != nil {
		return err
	}
	*p = pool
	return nil
}

// Action is one input to Engine.Apply.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Player string     `json:"player,omitempty"`
	Cards  []Card     `json:"cards,omitempty"`
	Pool   Pool       `json:"pool,omitempty"`
	Task   TaskHandle `json:"task,omitempty"`
}

func (a Action) String() string {
	var sb strings.Builder
	sb.WriteString(a.Kind.String())
	if a.Player != "" {
		sb.WriteString(" by " + a.Player)
	}
	if len(a.Cards) > 0 {
		sb.WriteString(" " + Pile(a.Cards).String())
	}
	if a.Pool != PoolNone {
		sb.WriteString(" from " + a.Pool.String())
	}
	if a.Task != "" {
		sb.WriteString(" task=" + string(a.Task))
	}
	return sb.String()
}

// --- Constructors ---

func Deal() Action { return Action{Kind: ActionDeal} }

func Join(player string) Action { return Action{Kind: ActionJoin, Player: player} }

func Leave(player string) Action { return Action{Kind: ActionLeave, Player: player} }

func Pass(player string) Action { return Action{Kind: ActionPass, Player: player} }

func Serve(player string, cards ...Card) Action {
	return Action{Kind: ActionServe, Player: player, Cards: cards}
}

func SelectFromPile(player string, pool Pool, cards ...Card) Action {
	return Action{Kind: ActionSelectFromPile, Player: player, Pool: pool, Cards: cards}
}

func SelectAndPass(player string, cards ...Card) Action {
	return Action{Kind: ActionSelectAndPass, Player: player, Cards: cards}
}

func OneChance(player string, cards ...Card) Action {
	return Action{Kind: ActionOneChance, Player: player, Cards: cards}
}

func FlushTimerFired(task TaskHandle, pool Pool) Action {
	return Action{Kind: ActionFlushTimerFired, Task: task, Pool: pool}
}

func FlushTimerCanceled(task TaskHandle) Action {
	return Action{Kind: ActionFlushTimerCanceled, Task: task}
}
