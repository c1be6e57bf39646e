package memo

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// flights collapses concurrent misses for one cache key into a single
// invocation.
//
// Flight names are handed out per key while a flight is live. Keys are
// matched with ==, as the store matches them, so pointers stay distinct by
// identity and a string never aliases a key of another type.
type flights struct {
	group singleflight.Group

	mu    sync.Mutex
	names map[any]*flightName
	next  uint64
}

type flightName struct {
	name string
	refs int
}

func newFlights() *flights {
	return &flights{names: make(map[any]*flightName)}
}

// do runs compute unless a flight for key is already running, in which case
// it waits for and shares that flight's result.
func (f *flights) do(key any, compute func() (any, error)) (any, error) {
	name := f.acquire(key)
	defer f.release(key)
	v, err, _ := f.group.Do(name, compute)
	return v, err
}

func (f *flights) acquire(key any) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.names[key]
	if !ok {
		f.next++
		n = &flightName{name: strconv.FormatUint(f.next, 36)}
		f.names[key] = n
	}
	n.refs++
	return n.name
}

func (f *flights) release(key any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.names[key]
	if n.refs--; n.refs == 0 {
		delete(f.names, key)
	}
}

// live returns the number of keys with a flight in progress.
func (f *flights) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.names)
}
