// Package leaderboard persists per-(mode,difficulty) high score tables
// backed by flat text files
package leaderboard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gyeongmin0113/acid-rain/internal/game"
	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

const (
	// MaxEntriesPerCategory bounds every (mode,difficulty) table
	MaxEntriesPerCategory = 100

	timestampLayout = "2006-01-02 15:04:05"
)

// Entry is one immutable leaderboard row
type Entry struct {
	Username   string
	Score      int
	Mode       game.GameMode
	Difficulty game.DifficultyLevel
	Timestamp  time.Time
}

// FileString renders the entry in the persisted line format, which is
// also the wire format for leaderboard data
func (e Entry) FileString() string {
	return fmt.Sprintf("%s,%d,%s,%s,%s",
		e.Username, e.Score, e.Mode, e.Difficulty,
		e.Timestamp.Format(timestampLayout))
}

// ParseEntry parses a persisted leaderboard line
func ParseEntry(line string) (Entry, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return Entry{}, fmt.Errorf("wrong field count: %d", len(fields))
	}

	score, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid score: %w", err)
	}
	mode, err := game.ParseGameMode(strings.TrimSpace(fields[2]))
	if err != nil {
		return Entry{}, err
	}
	difficulty, err := game.ParseDifficulty(strings.TrimSpace(fields[3]))
	if err != nil {
		return Entry{}, err
	}
	ts, err := time.Parse(timestampLayout, strings.TrimSpace(fields[4]))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	return Entry{
		Username:   strings.TrimSpace(fields[0]),
		Score:      score,
		Mode:       mode,
		Difficulty: difficulty,
		Timestamp:  ts,
	}, nil
}

// Store is the process-wide leaderboard. One instance is constructed at
// server start and injected wherever submissions happen; submissions
// across concurrent matches are serialized by its mutex.
type Store struct {
	mu     sync.Mutex
	dir    string
	boards map[string][]Entry
	log    *logger.Logger
	now    func() time.Time
}

// New loads every (mode,difficulty) table from dir, creating the
// directory when missing. Malformed lines are skipped with a warning.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create leaderboard directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		boards: make(map[string][]Entry),
		log:    logger.Board,
		now:    time.Now,
	}

	for _, mode := range game.Modes {
		for _, diff := range game.Difficulties {
			key := boardKey(mode, diff)
			s.boards[key] = s.loadBoard(key)
		}
	}

	s.log.Info("Leaderboard store initialized: %s", dir)
	return s, nil
}

func boardKey(mode game.GameMode, difficulty game.DifficultyLevel) string {
	return strings.ToLower(string(mode)) + "_" + strings.ToLower(string(difficulty))
}

func (s *Store) boardPath(key string) string {
	return filepath.Join(s.dir, key+".txt")
}

func (s *Store) loadBoard(key string) []Entry {
	data, err := os.ReadFile(s.boardPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error("Failed to load leaderboard %s: %v", key, err)
		}
		return nil
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			s.log.Warn("Skipping malformed leaderboard entry %q: %v", line, err)
			continue
		}
		entries = append(entries, entry)
	}

	sortEntries(entries)
	return entries
}

func (s *Store) saveBoard(key string, entries []Entry) {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.FileString())
	}
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(s.boardPath(key), []byte(content), 0644); err != nil {
		s.log.Error("Failed to save leaderboard %s: %v", key, err)
	}
}

// sortEntries orders by score descending, ties broken by earlier timestamp
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}

// QualifyingScore returns the minimum score accepted for a difficulty
func QualifyingScore(difficulty game.DifficultyLevel) int {
	switch difficulty {
	case game.DifficultyEasy:
		return 500
	case game.DifficultyMedium:
		return 750
	case game.DifficultyHard:
		return 1000
	}
	return 0
}

// Submit records a score when it clears the difficulty's qualification
// floor. A prior entry for the same user in the same table is replaced,
// the table is re-sorted, truncated to the size bound and persisted.
// Returns false (with no file write) for non-qualifying scores.
func (s *Store) Submit(username string, score int, mode game.GameMode, difficulty game.DifficultyLevel) bool {
	if score < QualifyingScore(difficulty) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := boardKey(mode, difficulty)
	entries := s.boards[key]

	kept := entries[:0]
	for _, e := range entries {
		if e.Username != username {
			kept = append(kept, e)
		}
	}
	entries = append(kept, Entry{
		Username:   username,
		Score:      score,
		Mode:       mode,
		Difficulty: difficulty,
		Timestamp:  s.now(),
	})

	sortEntries(entries)
	if len(entries) > MaxEntriesPerCategory {
		entries = entries[:MaxEntriesPerCategory]
	}

	s.boards[key] = entries
	s.saveBoard(key, entries)

	s.log.Info("Leaderboard entry recorded: %s (%d, %s, %s)", username, score, mode, difficulty)
	return true
}

// Rank returns the 1-based position of a user in a table, or -1 when the
// user is not ranked
func (s *Store) Rank(username string, mode game.GameMode, difficulty game.DifficultyLevel) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.boards[boardKey(mode, difficulty)] {
		if e.Username == username {
			return i + 1
		}
	}
	return -1
}

// TopEntries returns a copy of a table in rank order
func (s *Store) TopEntries(mode game.GameMode, difficulty game.DifficultyLevel) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.boards[boardKey(mode, difficulty)]...)
}

// UserEntries returns a user's entries across every table, best first
func (s *Store) UserEntries(username string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, entries := range s.boards {
		for _, e := range entries {
			if e.Username == username {
				out = append(out, e)
			}
		}
	}
	sortEntries(out)
	return out
}
