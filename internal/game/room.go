package game

// Room is a match lobby grouping 2-4 players around one configured game.
// Rooms carry no synchronization of their own; the server serializes all
// access to them.
type Room struct {
	ID         string
	Name       string
	Password   string
	HostName   string
	Mode       GameMode
	Difficulty DifficultyLevel
	MaxPlayers int
	InGame     bool

	players []string
}

// NewRoom creates a lobby with no members yet
func NewRoom(id, name, password string, mode GameMode, difficulty DifficultyLevel, maxPlayers int) *Room {
	return &Room{
		ID:         id,
		Name:       name,
		Password:   password,
		Mode:       mode,
		Difficulty: difficulty,
		MaxPlayers: maxPlayers,
	}
}

// Players returns a copy of the member list in join order
func (r *Room) Players() []string {
	out := make([]string, len(r.players))
	copy(out, r.players)
	return out
}

// PlayerCount returns the current member count
func (r *Room) PlayerCount() int {
	return len(r.players)
}

// AddPlayer appends a member unless already present
func (r *Room) AddPlayer(username string) {
	if r.HasPlayer(username) {
		return
	}
	r.players = append(r.players, username)
}

// RemovePlayer drops a member, preserving the order of the rest
func (r *Room) RemovePlayer(username string) {
	for i, p := range r.players {
		if p == username {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
}

// HasPlayer reports whether a username is a member
func (r *Room) HasPlayer(username string) bool {
	for _, p := range r.players {
		if p == username {
			return true
		}
	}
	return false
}

// IsFull reports whether the room reached its capacity
func (r *Room) IsFull() bool {
	return len(r.players) >= r.MaxPlayers
}

// PasswordRequired reports whether joining needs a password
func (r *Room) PasswordRequired() bool {
	return r.Password != ""
}

// PasswordValid checks the supplied password against the room's
func (r *Room) PasswordValid(input string) bool {
	if r.Password == "" {
		return true
	}
	return r.Password == input
}

// CanStart reports whether the host may start the match: every seat taken
// and no match already live
func (r *Room) CanStart() bool {
	return len(r.players) == r.MaxPlayers && !r.InGame
}
