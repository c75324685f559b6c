package expand

import (
	"math/rand"
	"sync"
	"time"
)

// defaultRand backs $RANDOM when a Context supplies no Rand func. The
// original's get_RANDOM() is C's rand() % 32767; this uses math/rand's
// Intn(32768), so values fall in [0, 32767], as the Go source for an
// unseeded-by-the-caller pseudo-random shell variable.
var (
	randOnce sync.Once
	randSrc  *rand.Rand
)

func defaultRand() int {
	randOnce.Do(func() {
		randSrc = rand.New(rand.NewSource(time.Now().UnixNano()))
	})
	return randSrc.Intn(32768)
}
