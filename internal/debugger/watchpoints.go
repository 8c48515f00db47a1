package debugger

import (
	"fmt"
	"sync"
)

// WatchType classifies a watchpoint's trigger condition. Like the
// teacher's implementation, only value-change detection is actually
// implemented: all three types behave identically today, triggering
// whenever the monitored value differs from its last observed value.
// True read-only or write-only tracking would require hooking memsys's
// Read/Write directly.
type WatchType int

const (
	WatchWrite WatchType = iota
	WatchRead
	WatchReadWrite
)

// Watchpoint monitors a register or memory word for change.
type Watchpoint struct {
	ID         int
	Type       WatchType
	Expression string
	Address    uint32
	IsRegister bool
	Register   int
	Enabled    bool
	LastValue  uint32
	HitCount   int
}

// WatchpointManager manages all watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates an empty watchpoint set.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint registers a new watchpoint.
func (wm *WatchpointManager) AddWatchpoint(wpType WatchType, expression string, address uint32, isRegister bool, register int) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Type:       wpType,
		Expression: expression,
		Address:    address,
		IsRegister: isRegister,
		Register:   register,
		Enabled:    true,
	}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

// DeleteWatchpoint removes a watchpoint by ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

// EnableWatchpoint enables a watchpoint by ID.
func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = true
	return nil
}

// DisableWatchpoint disables a watchpoint by ID.
func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = false
	return nil
}

// GetWatchpoint returns the watchpoint with the given ID, or nil.
func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.watchpoints[id]
}

// GetAllWatchpoints returns every watchpoint in no particular order.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

// CheckWatchpoints returns the first enabled watchpoint whose value has
// changed since it was last observed.
func (wm *WatchpointManager) CheckWatchpoints(m *Machine) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		var current uint32
		if wp.IsRegister {
			current = m.Hart.GetX(uint32(wp.Register))
		} else {
			v, err := m.ReadWord(wp.Address)
			if err != nil {
				continue
			}
			current = v
		}

		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}
	return nil, false
}

// InitializeWatchpoint seeds LastValue so the next CheckWatchpoints call
// only reports genuine changes.
func (wm *WatchpointManager) InitializeWatchpoint(id int, m *Machine) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	if wp.IsRegister {
		wp.LastValue = m.Hart.GetX(uint32(wp.Register))
		return nil
	}
	v, err := m.ReadWord(wp.Address)
	if err != nil {
		return fmt.Errorf("failed to initialize watchpoint: %w", err)
	}
	wp.LastValue = v
	return nil
}

// Clear removes every watchpoint.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
