package game

import "time"

// TaskHandle identifies a scheduled flush. The empty handle means none.
type TaskHandle string

// Scheduler delivers a payload action back to the engine after a delay.
// The host fills in payload.Task with the returned handle when it fires.
// Cancel must be idempotent and a no-op for unknown or fired handles.
type Scheduler interface {
	Schedule(actor string, delay time.Duration, payload Action) TaskHandle
	Cancel(task TaskHandle)
}

// Random is the source used for shuffling and the one-chance draw.
// *math/rand/v2.Rand satisfies it.
type Random interface {
	Uint32() uint32
}
