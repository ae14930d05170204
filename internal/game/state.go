package game

// Scoring and health tuning
const (
	InitialPH = 7.0
	MinPH     = 0.0

	pointsPerLetter = 10
	boostMultiplier = 1.5

	matchPHGain    = 0.3
	matchPHPenalty = 0.2
	missPHPenalty  = 0.2
)

// State holds the mutable state of one live match: per-player scores and
// pH plus the active word set. It performs no I/O and no locking of its
// own; the Controller goroutine is its single owner.
type State struct {
	players []string
	scores  map[string]int
	ph      map[string]float64
	words   []Word
	status  GameStatus
}

// NewState prepares match state for the given players in seat order
func NewState(players []string) *State {
	s := &State{players: append([]string(nil), players...)}
	s.reset()
	return s
}

func (s *State) reset() {
	s.scores = make(map[string]int, len(s.players))
	s.ph = make(map[string]float64, len(s.players))
	for _, p := range s.players {
		s.scores[p] = 0
		s.ph[p] = InitialPH
	}
	s.words = nil
}

// Start resets every player and moves the match to IN_PROGRESS. It is a
// no-op once the match has finished.
func (s *State) Start() {
	if s.status == StatusFinished {
		return
	}
	s.reset()
	s.status = StatusInProgress
}

// End moves the match to FINISHED and clears the active words. The status
// never moves backward afterwards.
func (s *State) End() {
	s.status = StatusFinished
	s.words = nil
}

// Status returns the current lifecycle phase
func (s *State) Status() GameStatus {
	return s.status
}

// Players returns the seat-ordered player list
func (s *State) Players() []string {
	return append([]string(nil), s.players...)
}

// AddWord registers a spawned word. Words are identified by text, so a
// spawn whose text is already active is rejected.
func (s *State) AddWord(w Word) bool {
	for _, active := range s.words {
		if active.Text == w.Text {
			return false
		}
	}
	s.words = append(s.words, w)
	return true
}

// RemoveWord drops the first active word with the given text and returns
// it, or nil when no such word is active.
func (s *State) RemoveWord(text string) *Word {
	for i, w := range s.words {
		if w.Text == text {
			s.words = append(s.words[:i], s.words[i+1:]...)
			return &w
		}
	}
	return nil
}

// ActiveWords returns a copy of the words currently in play
func (s *State) ActiveWords() []Word {
	return append([]Word(nil), s.words...)
}

// MatchWord resolves a typed word for a player. The first active word with
// the exact text wins; it is removed, the typer is credited
// len(text)*10 points (x1.5 rounded down for SCORE_BOOST), the typer
// gains 0.3 pH and every opponent loses 0.2 pH. Returns nil when nothing
// matched; a repeated input after removal is a no-op.
func (s *State) MatchWord(typed, player string) *Word {
	w := s.RemoveWord(typed)
	if w == nil {
		return nil
	}

	points := len(w.Text) * pointsPerLetter
	if w.Effect == EffectScoreBoost {
		points = int(float64(points) * boostMultiplier)
	}
	s.AddScore(player, points)
	s.RaisePH(player, matchPHGain)
	for _, opp := range s.Opponents(player) {
		s.LowerPH(opp, matchPHPenalty)
	}
	return w
}

// MissWord drops a word that scrolled off-screen and lowers every
// player's pH by 0.2. Returns false when the word was not active.
func (s *State) MissWord(text string) bool {
	if s.RemoveWord(text) == nil {
		return false
	}
	for _, p := range s.players {
		s.LowerPH(p, missPHPenalty)
	}
	return true
}

// AddScore credits points to a known player
func (s *State) AddScore(player string, points int) {
	if _, ok := s.scores[player]; ok {
		s.scores[player] += points
	}
}

// Score returns a player's score, zero for unknown players
func (s *State) Score(player string) int {
	return s.scores[player]
}

// Scores returns a copy of the score table
func (s *State) Scores() map[string]int {
	out := make(map[string]int, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out
}

// PH returns a player's pH, MinPH for unknown players
func (s *State) PH(player string) float64 {
	if ph, ok := s.ph[player]; ok {
		return ph
	}
	return MinPH
}

// RaisePH raises a player's pH, capped at InitialPH
func (s *State) RaisePH(player string, amount float64) {
	ph, ok := s.ph[player]
	if !ok {
		return
	}
	ph += amount
	if ph > InitialPH {
		ph = InitialPH
	}
	s.ph[player] = ph
}

// LowerPH lowers a player's pH, floored at MinPH
func (s *State) LowerPH(player string, amount float64) {
	ph, ok := s.ph[player]
	if !ok {
		return
	}
	ph -= amount
	if ph < MinPH {
		ph = MinPH
	}
	s.ph[player] = ph
}

// Opponents returns every player other than the given one, in seat order
func (s *State) Opponents(player string) []string {
	var out []string
	for _, p := range s.players {
		if p != player {
			out = append(out, p)
		}
	}
	return out
}

// AnyExhausted reports whether some player's pH has reached the floor
func (s *State) AnyExhausted() bool {
	for _, p := range s.players {
		if s.ph[p] <= MinPH {
			return true
		}
	}
	return false
}

// Winner picks the match winner: a sole survivor by pH wins outright;
// otherwise the highest score among the survivors, or among everyone when
// nobody survived. Exact score ties fall to whichever candidate is seen
// first, which is implementation-defined.
func (s *State) Winner() string {
	var alive []string
	for _, p := range s.players {
		if s.ph[p] > MinPH {
			alive = append(alive, p)
		}
	}

	switch len(alive) {
	case 1:
		return alive[0]
	case 0:
		return s.bestScore(s.players)
	default:
		return s.bestScore(alive)
	}
}

func (s *State) bestScore(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	best := candidates[0]
	for _, p := range candidates[1:] {
		if s.scores[p] > s.scores[best] {
			best = p
		}
	}
	return best
}

// OpponentScore returns the highest score among the given player's
// opponents, used for the losing side of the game-over report
func (s *State) OpponentScore(player string) int {
	best := 0
	for _, opp := range s.Opponents(player) {
		if s.scores[opp] >= best {
			best = s.scores[opp]
		}
	}
	return best
}
