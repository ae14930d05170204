package game

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

// Spawn band for the horizontal word position
const (
	spawnXMin  = 100
	spawnXSpan = 600

	effectChance = 0.2
)

var defaultWords = map[GameMode][]string{
	ModeJava: {
		"public", "class", "extends", "implements", "void",
		"int", "boolean", "String", "final", "static",
		"private", "protected", "abstract", "try", "catch",
		"throw", "import", "return", "for", "while",
		"interface", "package", "synchronized", "volatile", "transient",
	},
	ModePython: {
		"def", "class", "import", "from", "as",
		"if", "elif", "else", "while", "for",
		"in", "try", "except", "finally", "with",
		"print", "lambda", "yield", "global", "nonlocal",
		"async", "await", "raise", "assert", "pass",
	},
	ModeKotlin: {
		"fun", "val", "var", "class", "object",
		"interface", "override", "private", "public", "protected",
		"data", "sealed", "companion", "init", "constructor",
		"suspend", "coroutine", "flow", "sequence", "lateinit",
	},
	ModeC: {
		"int", "char", "float", "double", "void",
		"long", "short", "signed", "unsigned", "struct",
		"union", "enum", "typedef", "const", "static",
		"extern", "register", "volatile", "sizeof", "switch",
	},
}

// WordManager supplies the vocabulary for one match. It loads the
// mode-specific word list once at construction, creating the file from
// the built-in defaults when missing, and hands out uniformly random
// words with randomized spawn positions and occasional special effects.
// A manager belongs to a single match and is not safe for concurrent use.
type WordManager struct {
	mode  GameMode
	words []string
	rng   *rand.Rand
	log   *logger.Logger
}

// NewWordManager loads the word list for a mode from dir
func NewWordManager(mode GameMode, dir string) *WordManager {
	wm := &WordManager{
		mode: mode,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		log:  logger.Game,
	}
	wm.words = wm.loadWords(dir)
	wm.log.Info("Word manager ready: mode=%s, %d words", mode, len(wm.words))
	return wm
}

func (wm *WordManager) loadWords(dir string) []string {
	if err := os.MkdirAll(dir, 0755); err != nil {
		wm.log.Error("Failed to create words directory: %v", err)
		return defaultWords[wm.mode]
	}

	path := filepath.Join(dir, wm.fileName())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := wm.writeDefaultFile(path); err != nil {
			wm.log.Error("Failed to create default word file: %v", err)
			return defaultWords[wm.mode]
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		wm.log.Error("Failed to read word file %s: %v", path, err)
		return defaultWords[wm.mode]
	}

	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if w := strings.TrimSpace(line); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		wm.log.Warn("Word file %s is empty, using defaults", path)
		return defaultWords[wm.mode]
	}
	return words
}

func (wm *WordManager) fileName() string {
	return fmt.Sprintf("words_%s.txt", strings.ToLower(string(wm.mode)))
}

func (wm *WordManager) writeDefaultFile(path string) error {
	content := strings.Join(defaultWords[wm.mode], "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write default words: %w", err)
	}
	wm.log.Info("Created default word file for mode %s", wm.mode)
	return nil
}

// Next picks a uniformly random word, assigns it a spawn position in the
// fixed horizontal band and, with 20% probability, a special effect split
// evenly between SCORE_BOOST and BLIND_OPPONENT.
func (wm *WordManager) Next() Word {
	if len(wm.words) == 0 {
		return Word{Text: "default", X: spawnXMin}
	}

	w := Word{
		Text: wm.words[wm.rng.Intn(len(wm.words))],
		X:    wm.rng.Intn(spawnXSpan) + spawnXMin,
	}
	if wm.rng.Float64() < effectChance {
		if wm.rng.Intn(2) == 0 {
			w.Effect = EffectScoreBoost
		} else {
			w.Effect = EffectBlindOpponent
		}
	}
	return w
}

// WordCount returns the size of the loaded vocabulary
func (wm *WordManager) WordCount() int {
	return len(wm.words)
}
