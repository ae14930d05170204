package game

import (
	"fmt"
	"strings"
)

// GameMode selects the vocabulary used in a match
type GameMode string

const (
	ModeJava   GameMode = "JAVA"
	ModePython GameMode = "PYTHON"
	ModeKotlin GameMode = "KOTLIN"
	ModeC      GameMode = "C"
)

// Modes lists every supported game mode
var Modes = []GameMode{ModeJava, ModePython, ModeKotlin, ModeC}

var modeDisplayNames = map[GameMode]string{
	ModeJava:   "Java",
	ModePython: "Python",
	ModeKotlin: "Kotlin",
	ModeC:      "C",
}

// DisplayName returns the human-readable mode name used on the wire
func (m GameMode) DisplayName() string {
	return modeDisplayNames[m]
}

// ParseGameMode accepts either the display name or the constant name,
// case-insensitively
func ParseGameMode(s string) (GameMode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, m.DisplayName()) || strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid game mode: %q", s)
}

// DifficultyLevel controls spawn rate and leaderboard qualification
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

// Difficulties lists every supported difficulty
var Difficulties = []DifficultyLevel{DifficultyEasy, DifficultyMedium, DifficultyHard}

var difficultyDisplayNames = map[DifficultyLevel]string{
	DifficultyEasy:   "Easy",
	DifficultyMedium: "Medium",
	DifficultyHard:   "Hard",
}

// DisplayName returns the human-readable difficulty name used on the wire
func (d DifficultyLevel) DisplayName() string {
	return difficultyDisplayNames[d]
}

// ParseDifficulty accepts either the display name or the constant name,
// case-insensitively
func ParseDifficulty(s string) (DifficultyLevel, error) {
	for _, d := range Difficulties {
		if strings.EqualFold(s, d.DisplayName()) || strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid difficulty: %q", s)
}

// GameStatus tracks a match through its lifecycle. Transitions only move
// forward: WAITING -> IN_PROGRESS -> FINISHED.
type GameStatus int

const (
	StatusWaiting GameStatus = iota
	StatusInProgress
	StatusFinished
)

func (s GameStatus) String() string {
	switch s {
	case StatusWaiting:
		return "WAITING"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusFinished:
		return "FINISHED"
	}
	return "UNKNOWN"
}

// SpecialEffect marks a word with a bonus behavior when matched
type SpecialEffect string

const (
	EffectNone          SpecialEffect = ""
	EffectScoreBoost    SpecialEffect = "SCORE_BOOST"
	EffectBlindOpponent SpecialEffect = "BLIND_OPPONENT"
)

// Word is a spawned vocabulary item. Identity is the text: two active
// words in the same match never share text.
type Word struct {
	Text   string
	X      int
	Effect SpecialEffect
}

// HasEffect reports whether the word carries a special effect
func (w Word) HasEffect() bool {
	return w.Effect != EffectNone
}
