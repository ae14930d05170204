package game

import (
	"sync"
	"time"

	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

const (
	decayCheckInterval = 1000 * time.Millisecond
	blindEffectMs      = 5000
)

// SpawnInterval returns the word spawn period for a difficulty
func SpawnInterval(d DifficultyLevel) time.Duration {
	switch d {
	case DifficultyEasy:
		return 4000 * time.Millisecond
	case DifficultyMedium:
		return 3500 * time.Millisecond
	case DifficultyHard:
		return 2000 * time.Millisecond
	}
	return 4000 * time.Millisecond
}

// WordSource supplies the falling words of a match
type WordSource interface {
	Next() Word
}

// EventSink receives the outbound events of a live match. The server
// implements it by encoding protocol lines and broadcasting to the room.
type EventSink interface {
	WordSpawned(roomID string, w Word)
	WordMatched(roomID, text, player string, score int)
	PHUpdate(roomID, player string, ph float64)
	WordMissed(roomID, text, player string, ph float64)
	BlindEffect(roomID, target string, durationMs int)
	LeaderboardResult(roomID, player string, rank int)
	GameOver(roomID, winner string, winnerScore, loserScore int, forfeit bool)
}

// ScoreRecorder accepts the winner's score at match end. The leaderboard
// store satisfies it; it is injected at construction instead of being a
// process-wide singleton.
type ScoreRecorder interface {
	Submit(username string, score int, mode GameMode, difficulty DifficultyLevel) bool
	Rank(username string, mode GameMode, difficulty DifficultyLevel) int
}

// Controller drives one match. It is the single owner of the match State:
// a dedicated goroutine runs the spawn ticker, the pH decay ticker and
// every player action in one select loop, so the State needs no locks.
type Controller struct {
	roomID     string
	mode       GameMode
	difficulty DifficultyLevel
	state      *State
	words      WordSource
	board      ScoreRecorder
	sink       EventSink
	log        *logger.Logger

	actions  chan func()
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewController prepares a match for the given players. The room's
// configuration is copied in; later lobby changes never reach a running
// match.
func NewController(roomID string, mode GameMode, difficulty DifficultyLevel, players []string,
	words WordSource, board ScoreRecorder, sink EventSink) *Controller {
	return &Controller{
		roomID:     roomID,
		mode:       mode,
		difficulty: difficulty,
		state:      NewState(players),
		words:      words,
		board:      board,
		sink:       sink,
		log:        logger.Game,
		actions:    make(chan func(), 16),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start resets the match state and launches the loop goroutine
func (c *Controller) Start() {
	c.state.Start()
	go c.run()
	c.log.Info("Game started: room %s, mode %s, difficulty %s",
		c.roomID, c.mode, c.difficulty)
}

// Stop shuts the match down. It is idempotent and synchronous: when it
// returns the loop has exited and no further spawn or decay tick will
// run.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.quit)
	})
	<-c.done
}

func (c *Controller) run() {
	defer close(c.done)

	spawn := time.NewTicker(SpawnInterval(c.difficulty))
	defer spawn.Stop()
	decay := time.NewTicker(decayCheckInterval)
	defer decay.Stop()

	// First word goes out immediately rather than one period in
	c.spawnWord()

	for c.state.Status() == StatusInProgress {
		select {
		case <-c.quit:
			c.state.End()
			return
		case fn := <-c.actions:
			fn()
		case <-spawn.C:
			c.spawnWord()
		case <-decay.C:
			c.checkPH()
		}
	}
}

// do hands an action to the loop goroutine. Actions submitted after the
// match ended are dropped.
func (c *Controller) do(fn func()) {
	select {
	case c.actions <- fn:
	case <-c.done:
	}
}

// doWait is do, but returns only after the loop ran the action (or the
// match ended first)
func (c *Controller) doWait(fn func()) {
	ran := make(chan struct{})
	select {
	case c.actions <- func() {
		fn()
		close(ran)
	}:
		select {
		case <-ran:
		case <-c.done:
		}
	case <-c.done:
	}
}

// HandleInput processes a typed word from a player
func (c *Controller) HandleInput(player, typed string) {
	c.do(func() {
		if c.state.Status() != StatusInProgress {
			return
		}
		w := c.state.MatchWord(typed, player)
		if w == nil {
			return
		}

		c.sink.WordMatched(c.roomID, w.Text, player, c.state.Score(player))
		c.sink.PHUpdate(c.roomID, player, c.state.PH(player))
		for _, opp := range c.state.Opponents(player) {
			c.sink.PHUpdate(c.roomID, opp, c.state.PH(opp))
		}

		if w.Effect == EffectBlindOpponent {
			for _, opp := range c.state.Opponents(player) {
				c.sink.BlindEffect(c.roomID, opp, blindEffectMs)
			}
		}
	})
}

// HandleMissed processes a client report of a word scrolling off-screen.
// Every player pays the penalty; a pH hitting the floor ends the match
// before anything else happens.
func (c *Controller) HandleMissed(word string) {
	c.do(func() {
		if c.state.Status() != StatusInProgress {
			return
		}
		if !c.state.MissWord(word) {
			return
		}
		for _, p := range c.state.Players() {
			ph := c.state.PH(p)
			c.sink.WordMissed(c.roomID, word, p, ph)
			if ph <= MinPH {
				c.finishMatch(c.state.Winner(), false)
				return
			}
		}
	})
}

// HandleLeave ends the match as a forfeit by the leaving player. The
// best-scoring remaining player takes the win at their current score.
// It returns only after the forfeit has been applied, so callers may
// tear the room down immediately afterwards.
func (c *Controller) HandleLeave(leaver string) {
	c.doWait(func() {
		if c.state.Status() != StatusInProgress {
			return
		}
		remaining := c.state.Opponents(leaver)
		if len(remaining) == 0 {
			c.state.End()
			return
		}
		winner := c.state.bestScore(remaining)
		c.log.Info("Forfeit in room %s: %s left, %s wins", c.roomID, leaver, winner)
		c.finishMatch(winner, true)
	})
}

func (c *Controller) spawnWord() {
	if c.state.Status() != StatusInProgress {
		return
	}
	w := c.words.Next()
	if !c.state.AddWord(w) {
		// Same text already falling; wait for the next tick
		return
	}
	c.sink.WordSpawned(c.roomID, w)
}

func (c *Controller) checkPH() {
	if c.state.Status() != StatusInProgress {
		return
	}
	if c.state.AnyExhausted() {
		c.finishMatch(c.state.Winner(), false)
	}
}

// finishMatch runs on the loop goroutine: records the result, announces
// it and moves the state to FINISHED so the loop exits.
func (c *Controller) finishMatch(winner string, forfeit bool) {
	winnerScore := c.state.Score(winner)
	loserScore := c.state.OpponentScore(winner)

	if c.board.Submit(winner, winnerScore, c.mode, c.difficulty) {
		rank := c.board.Rank(winner, c.mode, c.difficulty)
		c.sink.LeaderboardResult(c.roomID, winner, rank)
	}

	c.state.End()
	c.sink.GameOver(c.roomID, winner, winnerScore, loserScore, forfeit)
	c.log.Info("Game over: room %s, winner %s (%d)", c.roomID, winner, winnerScore)
}

// State exposes the match state for the owning server's read paths in
// tests; external callers must not mutate it.
func (c *Controller) State() *State {
	return c.state
}
