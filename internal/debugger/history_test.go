package debugger

import "testing"

func TestCommandHistoryAddAndGetLast(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("continue")
	if got := h.GetLast(); got != "continue" {
		t.Errorf("GetLast() = %q, want continue", got)
	}
	if h.Size() != 2 {
		t.Errorf("Size() = %d, want 2", h.Size())
	}
}

func TestCommandHistoryCollapsesConsecutiveDuplicates(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("step")
	h.Add("step")
	if h.Size() != 1 {
		t.Errorf("Size() = %d, want 1 (consecutive duplicates collapse)", h.Size())
	}
}

func TestCommandHistoryEmptyAddIsIgnored(t *testing.T) {
	h := NewCommandHistory()
	h.Add("")
	if h.Size() != 0 {
		t.Errorf("Size() = %d, want 0", h.Size())
	}
}

func TestCommandHistoryPreviousNextNavigation(t *testing.T) {
	h := NewCommandHistory()
	h.Add("a")
	h.Add("b")
	h.Add("c")

	if got := h.Previous(); got != "c" {
		t.Errorf("Previous() = %q, want c", got)
	}
	if got := h.Previous(); got != "b" {
		t.Errorf("Previous() = %q, want b", got)
	}
	if got := h.Next(); got != "c" {
		t.Errorf("Next() = %q, want c", got)
	}
}

func TestCommandHistoryPreviousAtStartReturnsEmpty(t *testing.T) {
	h := NewCommandHistory()
	h.Add("only")
	h.Previous()
	if got := h.Previous(); got != "" {
		t.Errorf("Previous() past the start = %q, want empty", got)
	}
}

func TestCommandHistorySearchByPrefix(t *testing.T) {
	h := NewCommandHistory()
	h.Add("break 0x1000")
	h.Add("continue")
	h.Add("break 0x2000")

	got := h.Search("break")
	if len(got) != 2 {
		t.Fatalf("Search(\"break\") returned %d entries, want 2", len(got))
	}
}

func TestCommandHistoryClear(t *testing.T) {
	h := NewCommandHistory()
	h.Add("x")
	h.Clear()
	if h.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", h.Size())
	}
}
