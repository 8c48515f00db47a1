package debugger

import "testing"

func TestWatchpointRegisterChangeDetected(t *testing.T) {
	m := newTestMachine()
	m.Hart.SetX(1, 0)

	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint(WatchWrite, "ra", 0, true, 1)
	if err := wm.InitializeWatchpoint(wp.ID, m); err != nil {
		t.Fatalf("InitializeWatchpoint: %v", err)
	}

	if hit, changed := wm.CheckWatchpoints(m); changed {
		t.Errorf("no change yet, but CheckWatchpoints reported %+v", hit)
	}

	m.Hart.SetX(1, 42)
	hit, changed := wm.CheckWatchpoints(m)
	if !changed || hit == nil {
		t.Fatalf("expected a change after SetX, got changed=%v hit=%+v", changed, hit)
	}
	if hit.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", hit.HitCount)
	}
}

func TestWatchpointMemoryChangeDetected(t *testing.T) {
	m := newTestMachine()
	writeWord(m, memsysDataAddr, 0)

	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint(WatchWrite, "[0x200000]", memsysDataAddr, false, 0)
	if err := wm.InitializeWatchpoint(wp.ID, m); err != nil {
		t.Fatalf("InitializeWatchpoint: %v", err)
	}

	writeWord(m, memsysDataAddr, 99)
	_, changed := wm.CheckWatchpoints(m)
	if !changed {
		t.Errorf("expected memory watchpoint to fire after write")
	}
}

func TestDisabledWatchpointNeverFires(t *testing.T) {
	m := newTestMachine()
	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint(WatchWrite, "ra", 0, true, 1)
	if err := wm.InitializeWatchpoint(wp.ID, m); err != nil {
		t.Fatalf("InitializeWatchpoint: %v", err)
	}
	if err := wm.DisableWatchpoint(wp.ID); err != nil {
		t.Fatalf("DisableWatchpoint: %v", err)
	}

	m.Hart.SetX(1, 1234)
	if _, changed := wm.CheckWatchpoints(m); changed {
		t.Errorf("disabled watchpoint must not fire")
	}
}

func TestDeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint(WatchWrite, "ra", 0, true, 1)
	if err := wm.DeleteWatchpoint(wp.ID); err != nil {
		t.Fatalf("DeleteWatchpoint: %v", err)
	}
	if wm.Count() != 0 {
		t.Errorf("Count() = %d, want 0", wm.Count())
	}
	if err := wm.DeleteWatchpoint(wp.ID); err == nil {
		t.Errorf("deleting an already-removed watchpoint should error")
	}
}
