package resilience

import "sync"

// SingleFlight coalesces concurrent calls for the same key into one
// execution. Late arrivals block until the leader finishes and receive its
// result with shared=true.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightResult
}

type flightResult struct {
	done  chan struct{}
	value any
	err   error
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (value any, err error, shared bool) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flightResult)
	}
	if r, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-r.done
		return r.value, r.err, true
	}

	r := &flightResult{done: make(chan struct{})}
	g.inflight[key] = r
	g.mu.Unlock()

	r.value, r.err = fn()
	close(r.done)

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()

	return r.value, r.err, false
}
