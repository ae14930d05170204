package leaderboard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gyeongmin0113/acid-rain/internal/game"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestQualifyingScore(t *testing.T) {
	tests := []struct {
		difficulty game.DifficultyLevel
		want       int
	}{
		{game.DifficultyEasy, 500},
		{game.DifficultyMedium, 750},
		{game.DifficultyHard, 1000},
	}
	for _, tt := range tests {
		if got := QualifyingScore(tt.difficulty); got != tt.want {
			t.Errorf("QualifyingScore(%s) = %d, want %d", tt.difficulty, got, tt.want)
		}
	}
}

func TestStore_SubmitBelowFloorRejected(t *testing.T) {
	s := newTestStore(t)

	if s.Submit("alice", 499, game.ModeJava, game.DifficultyEasy) {
		t.Error("score below the floor should be rejected")
	}
	if got := s.Rank("alice", game.ModeJava, game.DifficultyEasy); got != -1 {
		t.Errorf("Rank = %d, want -1", got)
	}

	// A rejected score leaves no file behind
	if _, err := os.Stat(s.boardPath("java_easy")); !os.IsNotExist(err) {
		t.Error("rejected submission should not write a board file")
	}
}

func TestStore_SubmitAndRank(t *testing.T) {
	s := newTestStore(t)

	s.Submit("alice", 600, game.ModeJava, game.DifficultyEasy)
	s.Submit("bob", 800, game.ModeJava, game.DifficultyEasy)
	s.Submit("carol", 700, game.ModeJava, game.DifficultyEasy)

	if got := s.Rank("bob", game.ModeJava, game.DifficultyEasy); got != 1 {
		t.Errorf("Rank(bob) = %d, want 1", got)
	}
	if got := s.Rank("alice", game.ModeJava, game.DifficultyEasy); got != 3 {
		t.Errorf("Rank(alice) = %d, want 3", got)
	}

	// Tables are independent per (mode, difficulty)
	if got := s.Rank("bob", game.ModeJava, game.DifficultyHard); got != -1 {
		t.Errorf("Rank(bob, hard) = %d, want -1", got)
	}
}

func TestStore_SubmitReplacesSameUser(t *testing.T) {
	s := newTestStore(t)

	s.Submit("alice", 600, game.ModePython, game.DifficultyEasy)
	s.Submit("alice", 900, game.ModePython, game.DifficultyEasy)

	entries := s.TopEntries(game.ModePython, game.DifficultyEasy)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Score != 900 {
		t.Errorf("Score = %d, want 900", entries[0].Score)
	}
}

func TestStore_TieBreakByEarlierTimestamp(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	i := 0
	s.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	}

	s.Submit("first", 800, game.ModeC, game.DifficultyMedium)
	s.Submit("second", 800, game.ModeC, game.DifficultyMedium)

	entries := s.TopEntries(game.ModeC, game.DifficultyMedium)
	if len(entries) != 2 || entries[0].Username != "first" {
		t.Errorf("entries[0] = %v, want the earlier submission first", entries)
	}
}

func TestStore_TruncatesToBound(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < MaxEntriesPerCategory+10; i++ {
		s.Submit(fmt.Sprintf("user%03d", i), 1000+i, game.ModeJava, game.DifficultyHard)
	}

	entries := s.TopEntries(game.ModeJava, game.DifficultyHard)
	if len(entries) != MaxEntriesPerCategory {
		t.Fatalf("entries = %d, want %d", len(entries), MaxEntriesPerCategory)
	}
	// The weakest submissions fell off
	if got := s.Rank("user000", game.ModeJava, game.DifficultyHard); got != -1 {
		t.Errorf("Rank(user000) = %d, want -1", got)
	}
}

func TestStore_PersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()

	s1, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	s1.Submit("alice", 1200, game.ModeKotlin, game.DifficultyHard)
	s1.Submit("bob", 1100, game.ModeKotlin, game.DifficultyHard)

	s2, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := s2.Rank("alice", game.ModeKotlin, game.DifficultyHard); got != 1 {
		t.Errorf("Rank(alice) after reload = %d, want 1", got)
	}
	if got := s2.Rank("bob", game.ModeKotlin, game.DifficultyHard); got != 2 {
		t.Errorf("Rank(bob) after reload = %d, want 2", got)
	}
}

func TestStore_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"alice,600,JAVA,EASY,2026-08-01 10:00:00",
		"not a valid line",
		"bob,notanumber,JAVA,EASY,2026-08-01 10:00:00",
		"carol,550,JAVA,EASY,2026-08-01 11:00:00",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "java_easy.txt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	entries := s.TopEntries(game.ModeJava, game.DifficultyEasy)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (malformed skipped)", len(entries))
	}
	if entries[0].Username != "alice" || entries[1].Username != "carol" {
		t.Errorf("entries = %v, want alice then carol", entries)
	}
}

func TestStore_UserEntriesAcrossTables(t *testing.T) {
	s := newTestStore(t)

	s.Submit("alice", 600, game.ModeJava, game.DifficultyEasy)
	s.Submit("alice", 1300, game.ModeJava, game.DifficultyHard)
	s.Submit("bob", 800, game.ModeJava, game.DifficultyEasy)

	entries := s.UserEntries("alice")
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Score != 1300 {
		t.Errorf("best entry score = %d, want 1300", entries[0].Score)
	}
}

func TestEntry_FileStringRoundTrip(t *testing.T) {
	e := Entry{
		Username:   "alice",
		Score:      1234,
		Mode:       game.ModePython,
		Difficulty: game.DifficultyMedium,
		Timestamp:  time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC),
	}

	line := e.FileString()
	if line != "alice,1234,PYTHON,MEDIUM,2026-08-31 09:30:00" {
		t.Fatalf("FileString = %q", line)
	}

	got, err := ParseEntry(line)
	if err != nil {
		t.Fatal(err)
	}
	if got != e {
		t.Errorf("ParseEntry = %+v, want %+v", got, e)
	}
}
