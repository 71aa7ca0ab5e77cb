package fleet

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Random is the source of every stochastic decision in the reducers.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// NewRandom returns a seeded source. A zero seed uses the current time.
func NewRandom(seed int64) Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Env carries the injected dependencies of reducers that need randomness,
// fresh ids or the wall clock.
type Env struct {
	Rand  Random
	NewID func() string
	Now   func() time.Time
}

// NewEnv returns an Env using uuid ids and the real clock.
func NewEnv(rnd Random) Env {
	return Env{Rand: rnd, NewID: uuid.NewString, Now: time.Now}
}

func (e Env) id(prefix string) string {
	return prefix + "-" + e.NewID()
}

// stamp formats a ledger timestamp the way entries display it.
func (e Env) stamp() string {
	return e.Now().Format("03:04 PM")
}
