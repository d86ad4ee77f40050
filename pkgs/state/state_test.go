package state

import (
	"math"
	"testing"

	"github.com/carcosa-lang/yellow/pkgs/config"
	"github.com/carcosa-lang/yellow/pkgs/value"
)

func newTestState() *State {
	return New(config.Default())
}

func TestLookupOrderInnermostThenGlobal(t *testing.T) {
	s := newTestState()
	s.Global["x"] = value.NewNumber(1)
	s.PushFrame()
	s.Assign("x", value.NewNumber(2), 1)

	v, ok := s.Lookup("x")
	if !ok || v.Num != 2 {
		t.Fatalf("expected innermost frame's x=2, got %v ok=%v", v, ok)
	}

	s.PopFrame()
	v, ok = s.Lookup("x")
	if !ok || v.Num != 1 {
		t.Fatalf("expected global x=1 after pop, got %v ok=%v", v, ok)
	}
}

func TestLookupDoesNotWalkParentFrames(t *testing.T) {
	// This is the load-bearing property behind Yellow's dynamic
	// scoping: a frame pushed for a nested scene/call can never see an
	// enclosing frame's bindings, only globals.
	s := newTestState()
	s.PushFrame()
	s.Assign("outer", value.NewNumber(1), 1)
	s.PushFrame()
	if _, ok := s.Lookup("outer"); ok {
		t.Fatal("inner frame should not see outer frame's binding")
	}
	s.PopFrame()
	if _, ok := s.Lookup("outer"); !ok {
		t.Fatal("outer frame's binding should still resolve once it's innermost again")
	}
}

func TestAssignGoesGlobalWithNoFrame(t *testing.T) {
	s := newTestState()
	s.Assign("x", value.NewNumber(5), 1)
	if v, ok := s.Global["x"]; !ok || v.Num != 5 {
		t.Fatalf("expected global assignment, got %v", s.Global)
	}
}

func TestAssignAppendsEcho(t *testing.T) {
	s := newTestState()
	s.Assign("x", value.NewNumber(5), 0.8)
	if len(s.Echoes) != 1 {
		t.Fatalf("expected one echo, got %d", len(s.Echoes))
	}
	if s.Echoes[0].Name != "x" || s.Echoes[0].Stability != 0.8 {
		t.Errorf("got %+v", s.Echoes[0])
	}
}

func TestEchoCapacityDrainsOnOverflow(t *testing.T) {
	s := newTestState()
	for i := 0; i < 51; i++ {
		s.Assign("x", value.NewNumber(float64(i)), 1)
	}
	// capacity 50, drain 10 once it overflows: after the 51st write
	// triggers the overflow check, 10 are drained.
	if len(s.Echoes) != 41 {
		t.Errorf("expected 41 echoes after drain, got %d", len(s.Echoes))
	}
}

func TestPopEchoLIFO(t *testing.T) {
	s := newTestState()
	s.Assign("a", value.NewNumber(1), 1)
	s.Assign("b", value.NewNumber(2), 1)
	e, ok := s.PopEcho()
	if !ok || e.Name != "b" {
		t.Fatalf("expected most recent echo 'b', got %+v ok=%v", e, ok)
	}
}

func TestRememberManifestFIFO(t *testing.T) {
	s := newTestState()
	s.Remember("x", value.NewNumber(1))
	s.Remember("x", value.NewNumber(2))
	v, ok := s.Manifest("x")
	if !ok || v.Num != 2 {
		t.Fatalf("expected newest fragment 2, got %v ok=%v", v, ok)
	}
	v, ok = s.Manifest("x")
	if !ok || v.Num != 1 {
		t.Fatalf("expected remaining fragment 1, got %v ok=%v", v, ok)
	}
	if _, ok := s.Manifest("x"); ok {
		t.Fatal("expected no fragments left")
	}
}

func TestRememberCapacityEvictsOldest(t *testing.T) {
	s := newTestState()
	for i := 0; i < 12; i++ {
		s.Remember("x", value.NewNumber(float64(i)))
	}
	frags := s.MemoryFragments["x"]
	if len(frags) != 10 {
		t.Fatalf("expected capacity-10 fragment queue, got %d", len(frags))
	}
	if frags[0].Num != 2 {
		t.Errorf("expected oldest two entries evicted, got oldest=%v", frags[0].Num)
	}
}

func TestManifestOnEmptyNameReturnsFalse(t *testing.T) {
	s := newTestState()
	if _, ok := s.Manifest("never-remembered"); ok {
		t.Fatal("expected false for a name with no fragments")
	}
}

func TestAppendTranscriptCap(t *testing.T) {
	cfg := config.Default()
	cfg.TranscriptCapChars = 10
	s := New(cfg)
	s.AppendTranscript("0123456789ABCDEF")
	if got := s.Transcript(); got != "0123456789" {
		t.Errorf("expected transcript truncated to cap, got %q", got)
	}
	s.AppendTranscript("more text that should be dropped")
	if got := s.Transcript(); got != "0123456789" {
		t.Errorf("expected no further growth past cap, got %q", got)
	}
}

func TestResetTranscriptOnlyClearsTranscript(t *testing.T) {
	s := newTestState()
	s.Sanity = 42
	s.AppendTranscript("hello")
	s.ResetTranscript()
	if s.Transcript() != "" {
		t.Error("expected transcript cleared")
	}
	if s.Sanity != 42 {
		t.Error("expected sanity untouched by ResetTranscript")
	}
}

func TestGetSanityNormalisesNaNAndNegative(t *testing.T) {
	s := newTestState()
	s.Sanity = math.NaN()
	if got := s.GetSanity(); got != 0 {
		t.Errorf("NaN sanity should report 0, got %v", got)
	}
	s.Sanity = -5
	if got := s.GetSanity(); got != 0 {
		t.Errorf("negative sanity should report 0, got %v", got)
	}
	s.Sanity = 50
	if got := s.GetSanity(); got != 50 {
		t.Errorf("expected 50, got %v", got)
	}
}

func TestAddSanityCapsAt100(t *testing.T) {
	s := newTestState()
	s.Sanity = 95
	s.AddSanity(10)
	if s.Sanity != 100 {
		t.Errorf("expected sanity capped at 100, got %v", s.Sanity)
	}
}

func TestScopeNamesPrefersInnermostFrame(t *testing.T) {
	s := newTestState()
	s.Global["g"] = value.NewNumber(1)
	s.PushFrame()
	s.Assign("f", value.NewNumber(2), 1)
	names := s.ScopeNames()
	if len(names) != 1 || names[0] != "f" {
		t.Errorf("expected only the innermost frame's names, got %v", names)
	}
}

func TestPhantomLookupOnlyBelowThreshold(t *testing.T) {
	s := newTestState()
	s.Phantoms["ghost"] = value.NewPhantom()
	s.Sanity = 100
	if _, ok := s.Lookup("ghost"); ok {
		t.Fatal("phantom should not resolve above the phantom lookup threshold")
	}
	s.Sanity = 5
	if _, ok := s.Lookup("ghost"); !ok {
		t.Fatal("phantom should resolve once sanity drops below the threshold")
	}
}
