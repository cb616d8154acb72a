package scan

import (
	"sort"
	"sync"
	"time"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
)

// Network is a beaconing device seen during this run
type Network struct {
	PAN         mac.PANID
	Address     mac.Address
	Channel     radio.Channel // channel of the latest beacon
	Coordinator bool
	PermitJoin  bool
	FirstSeen   time.Time
	LastSeen    time.Time
	BeaconCount uint32
}

// NetworkTracker keeps the set of networks heard this run. It is in-memory
// only and starts empty on every run.
type NetworkTracker struct {
	networks map[mac.Address]*Network
	mu       sync.RWMutex

	// Callbacks
	onDiscovered func(*Network)
	onExpired    func(*Network)
}

// NewNetworkTracker creates an empty tracker
func NewNetworkTracker() *NetworkTracker {
	return &NetworkTracker{
		networks: make(map[mac.Address]*Network),
	}
}

// SetCallbacks sets the discovery and expiry callbacks. Callbacks run on
// their own goroutine with a copy of the entry.
func (t *NetworkTracker) SetCallbacks(onDiscovered, onExpired func(*Network)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDiscovered = onDiscovered
	t.onExpired = onExpired
}

// Update records an observation and reports whether it is a network not
// seen before.
func (t *NetworkTracker) Update(obs Observation) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, exists := t.networks[obs.Source]
	if !exists {
		info = &Network{
			PAN:         obs.PAN,
			Address:     obs.Source,
			Channel:     obs.Channel,
			Coordinator: obs.Coordinator,
			PermitJoin:  obs.PermitJoin,
			FirstSeen:   obs.Time,
			LastSeen:    obs.Time,
			BeaconCount: 1,
		}
		t.networks[obs.Source] = info

		if t.onDiscovered != nil {
			infoCopy := *info
			go t.onDiscovered(&infoCopy)
		}
		return true
	}

	info.Channel = obs.Channel
	info.Coordinator = obs.Coordinator
	info.PermitJoin = obs.PermitJoin
	info.LastSeen = obs.Time
	info.BeaconCount++
	return false
}

// Get returns a copy of the entry for addr
func (t *NetworkTracker) Get(addr mac.Address) (*Network, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info, ok := t.networks[addr]
	if !ok {
		return nil, false
	}
	infoCopy := *info
	return &infoCopy, true
}

// GetAllNetworks returns copies of all entries ordered by PAN then address
func (t *NetworkTracker) GetAllNetworks() []*Network {
	t.mu.RLock()
	defer t.mu.RUnlock()

	networks := make([]*Network, 0, len(t.networks))
	for _, info := range t.networks {
		infoCopy := *info
		networks = append(networks, &infoCopy)
	}

	sort.Slice(networks, func(i, j int) bool {
		a, b := networks[i].Address, networks[j].Address
		if a.PAN != b.PAN {
			return a.PAN < b.PAN
		}
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		if a.Short != b.Short {
			return a.Short < b.Short
		}
		return a.Extended < b.Extended
	})
	return networks
}

// Count returns the number of tracked networks
func (t *NetworkTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.networks)
}

// Clear removes all tracked networks
func (t *NetworkTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.networks = make(map[mac.Address]*Network)
}

// PruneOld removes networks not heard since the given time
func (t *NetworkTracker) PruneOld(since time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for key, info := range t.networks {
		if info.LastSeen.Before(since) {
			delete(t.networks, key)
			count++
			if t.onExpired != nil {
				infoCopy := *info
				go t.onExpired(&infoCopy)
			}
		}
	}
	return count
}
