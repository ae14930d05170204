package game

import "testing"

func newTestState(players ...string) *State {
	s := NewState(players)
	s.Start()
	return s
}

func TestNewState_Initialization(t *testing.T) {
	s := NewState([]string{"alice", "bob"})

	if s.Status() != StatusWaiting {
		t.Errorf("Status = %v, want %v", s.Status(), StatusWaiting)
	}
	for _, p := range []string{"alice", "bob"} {
		if s.Score(p) != 0 {
			t.Errorf("Score(%s) = %d, want 0", p, s.Score(p))
		}
		if s.PH(p) != InitialPH {
			t.Errorf("PH(%s) = %v, want %v", p, s.PH(p), InitialPH)
		}
	}
}

func TestState_Lifecycle(t *testing.T) {
	s := NewState([]string{"alice", "bob"})

	s.Start()
	if s.Status() != StatusInProgress {
		t.Fatalf("Status after Start = %v, want %v", s.Status(), StatusInProgress)
	}

	s.End()
	if s.Status() != StatusFinished {
		t.Fatalf("Status after End = %v, want %v", s.Status(), StatusFinished)
	}

	// Finished is terminal
	s.Start()
	if s.Status() != StatusFinished {
		t.Errorf("Status after Start on finished match = %v, want %v", s.Status(), StatusFinished)
	}
}

func TestState_AddWord_RejectsDuplicateText(t *testing.T) {
	s := newTestState("alice", "bob")

	if !s.AddWord(Word{Text: "public", X: 100}) {
		t.Fatal("first AddWord should succeed")
	}
	if s.AddWord(Word{Text: "public", X: 300}) {
		t.Error("AddWord with active text should be rejected")
	}
	if got := len(s.ActiveWords()); got != 1 {
		t.Errorf("active words = %d, want 1", got)
	}
}

func TestState_MatchWord(t *testing.T) {
	s := newTestState("alice", "bob")
	s.AddWord(Word{Text: "public", X: 150})

	w := s.MatchWord("public", "bob")
	if w == nil {
		t.Fatal("MatchWord returned nil for active word")
	}

	if got := s.Score("bob"); got != 60 {
		t.Errorf("Score(bob) = %d, want 60", got)
	}
	if got := s.PH("bob"); got != InitialPH {
		t.Errorf("PH(bob) = %v, want %v (capped)", got, InitialPH)
	}
	if got := s.PH("alice"); got != InitialPH-0.2 {
		t.Errorf("PH(alice) = %v, want %v", got, InitialPH-0.2)
	}

	// The word is gone; typing it again is a no-op
	if s.MatchWord("public", "alice") != nil {
		t.Error("MatchWord should return nil after the word was removed")
	}
	if got := s.Score("alice"); got != 0 {
		t.Errorf("Score(alice) = %d, want 0 after missed race", got)
	}
}

func TestState_MatchWord_ScoreBoost(t *testing.T) {
	s := newTestState("alice", "bob")
	s.AddWord(Word{Text: "class", X: 150, Effect: EffectScoreBoost})

	s.MatchWord("class", "alice")

	// 5 letters * 10 * 1.5 = 75
	if got := s.Score("alice"); got != 75 {
		t.Errorf("Score(alice) = %d, want 75", got)
	}
}

func TestState_MatchWord_UnknownText(t *testing.T) {
	s := newTestState("alice", "bob")

	if s.MatchWord("nothing", "alice") != nil {
		t.Error("MatchWord should return nil for inactive text")
	}
	if got := s.Score("alice"); got != 0 {
		t.Errorf("Score(alice) = %d, want 0", got)
	}
}

func TestState_MissWord(t *testing.T) {
	s := newTestState("alice", "bob", "carol")
	s.AddWord(Word{Text: "while", X: 400})

	if !s.MissWord("while") {
		t.Fatal("MissWord should succeed for an active word")
	}
	for _, p := range []string{"alice", "bob", "carol"} {
		if got := s.PH(p); got != InitialPH-0.2 {
			t.Errorf("PH(%s) = %v, want %v", p, got, InitialPH-0.2)
		}
	}

	if s.MissWord("while") {
		t.Error("MissWord should fail for an already removed word")
	}
}

func TestState_PHClamping(t *testing.T) {
	s := newTestState("alice", "bob")

	s.RaisePH("alice", 5)
	if got := s.PH("alice"); got != InitialPH {
		t.Errorf("PH(alice) = %v, want cap %v", got, InitialPH)
	}

	s.LowerPH("bob", 100)
	if got := s.PH("bob"); got != MinPH {
		t.Errorf("PH(bob) = %v, want floor %v", got, MinPH)
	}
	if !s.AnyExhausted() {
		t.Error("AnyExhausted should report the floored player")
	}
}

func TestState_Winner_SoleSurvivor(t *testing.T) {
	s := newTestState("alice", "bob", "carol")
	s.AddScore("bob", 500)

	s.LowerPH("bob", InitialPH)
	s.LowerPH("carol", InitialPH)

	// alice survives alone despite the lower score
	if got := s.Winner(); got != "alice" {
		t.Errorf("Winner = %q, want %q", got, "alice")
	}
}

func TestState_Winner_BestScoreAmongSurvivors(t *testing.T) {
	s := newTestState("alice", "bob", "carol")
	s.AddScore("alice", 100)
	s.AddScore("bob", 300)
	s.LowerPH("carol", InitialPH)

	if got := s.Winner(); got != "bob" {
		t.Errorf("Winner = %q, want %q", got, "bob")
	}
}

func TestState_Winner_NobodySurvived(t *testing.T) {
	s := newTestState("alice", "bob")
	s.AddScore("alice", 100)
	s.AddScore("bob", 300)
	s.LowerPH("alice", InitialPH)
	s.LowerPH("bob", InitialPH)

	if got := s.Winner(); got != "bob" {
		t.Errorf("Winner = %q, want %q", got, "bob")
	}
}

func TestState_Opponents(t *testing.T) {
	s := newTestState("alice", "bob", "carol")

	got := s.Opponents("bob")
	if len(got) != 2 || got[0] != "alice" || got[1] != "carol" {
		t.Errorf("Opponents(bob) = %v, want [alice carol]", got)
	}
}

func TestState_OpponentScore(t *testing.T) {
	s := newTestState("alice", "bob", "carol")
	s.AddScore("alice", 200)
	s.AddScore("carol", 350)

	if got := s.OpponentScore("bob"); got != 350 {
		t.Errorf("OpponentScore(bob) = %d, want 350", got)
	}
}

func TestState_UnknownPlayerIsIgnored(t *testing.T) {
	s := newTestState("alice", "bob")

	s.AddScore("mallory", 100)
	s.RaisePH("mallory", 1)

	if got := s.Score("mallory"); got != 0 {
		t.Errorf("Score(mallory) = %d, want 0", got)
	}
	if got := s.PH("mallory"); got != MinPH {
		t.Errorf("PH(mallory) = %v, want %v", got, MinPH)
	}
}
