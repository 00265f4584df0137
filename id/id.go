package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string stamped with the current time. Used for run IDs,
// which are meant to be unique across processes.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		panic(err)
	}
	return id.String()
}

// Generator produces ULIDs from a seeded entropy source and caller supplied
// timestamps, so two generators with the same seed fed the same times
// return the same IDs. A Generator is not safe for concurrent use; each
// simulation owns one.
type Generator struct {
	entropy *ulid.MonotonicEntropy
}

func NewGenerator(seed int64) *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// At returns a ULID for t. IDs generated for the same millisecond stay
// lexicographically increasing. t must lie between the unix epoch and
// ulid.MaxTime.
func (g *Generator) At(t time.Time) (string, error) {
	if t.Before(time.Unix(0, 0)) {
		return "", fmt.Errorf("id: %s predates the unix epoch", t.UTC().Format(time.RFC3339))
	}
	ms := ulid.Timestamp(t)
	if ms > ulid.MaxTime() {
		return "", fmt.Errorf("id: %s: %w", t.UTC().Format(time.RFC3339), ulid.ErrBigTime)
	}
	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		return "", fmt.Errorf("id: %w", err)
	}
	return id.String(), nil
}
