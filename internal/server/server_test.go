package server

import (
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gyeongmin0113/acid-rain/internal/game"
	"github.com/gyeongmin0113/acid-rain/internal/leaderboard"
)

// fakeConn is an in-memory lineConn for driving protocol scenarios
type fakeConn struct {
	inbox  chan string
	outbox chan string
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbox:  make(chan string, 16),
		outbox: make(chan string, 256),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadLine() (string, error) {
	select {
	case line := <-c.inbox:
		return line, nil
	case <-c.closed:
		return "", net.ErrClosed
	}
}

func (c *fakeConn) WriteLine(line string) error {
	select {
	case c.outbox <- line:
		return nil
	case <-c.closed:
		return net.ErrClosed
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) RemoteAddr() string { return "fake" }

// send queues one client line
func (c *fakeConn) send(t *testing.T, line string) {
	t.Helper()
	select {
	case c.inbox <- line:
	case <-time.After(time.Second):
		t.Fatalf("client inbox full sending %q", line)
	}
}

// expect consumes server lines until one starts with prefix
func (c *fakeConn) expect(t *testing.T, prefix string) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line := <-c.outbox:
			if strings.HasPrefix(line, prefix) {
				return line
			}
		case <-deadline:
			t.Fatalf("timed out waiting for line with prefix %q", prefix)
		}
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	board, err := leaderboard.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewServer("127.0.0.1:0", board, t.TempDir())
}

// login attaches a fake connection and logs in
func login(t *testing.T, s *Server, username string) *fakeConn {
	t.Helper()
	c := newFakeConn()
	go s.serveConn(c)
	t.Cleanup(func() { c.Close() })

	c.send(t, "LOGIN|"+username)
	c.expect(t, "USERS|")
	return c
}

func TestServer_UserCountBroadcast(t *testing.T) {
	s := newTestServer(t)

	alice := login(t, s, "alice")
	login(t, s, "bob")

	alice.expect(t, "USERS|2")
}

func TestServer_CreateRoom(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")

	alice.send(t, "CREATE_ROOM|speedrun||Java|Easy|2")

	resp := alice.expect(t, "CREATE_ROOM_RESPONSE|")
	want := "CREATE_ROOM_RESPONSE|true|Room created.|R1,speedrun,1,2,Java,Easy,alice|R1"
	if resp != want {
		t.Errorf("got %q, want %q", resp, want)
	}

	if got := alice.expect(t, "PLAYER_UPDATE|"); got != "PLAYER_UPDATE|R1|1|alice" {
		t.Errorf("got %q", got)
	}
	alice.expect(t, "ROOM_LIST_RESPONSE|R1,")
}

func TestServer_CreateRoom_InvalidSettings(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")

	alice.send(t, "CREATE_ROOM|lonely||Java|Easy|1")

	resp := alice.expect(t, "CREATE_ROOM_RESPONSE|")
	if resp != "CREATE_ROOM_RESPONSE|false|Invalid room settings." {
		t.Errorf("got %q", resp)
	}
}

func TestServer_JoinRoomFailures(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")
	carol := login(t, s, "carol")

	bob.send(t, "JOIN_ROOM|R9")
	if got := bob.expect(t, "JOIN_ROOM_RESPONSE|"); got != "JOIN_ROOM_RESPONSE|false|No such room." {
		t.Errorf("got %q", got)
	}

	alice.send(t, "CREATE_ROOM|secret|hunter2|Java|Easy|2")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")

	bob.send(t, "JOIN_ROOM|R1|wrong")
	if got := bob.expect(t, "JOIN_ROOM_RESPONSE|"); got != "JOIN_ROOM_RESPONSE|false|Wrong password." {
		t.Errorf("got %q", got)
	}

	bob.send(t, "JOIN_ROOM|R1|hunter2")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")

	carol.send(t, "JOIN_ROOM|R1|hunter2")
	if got := carol.expect(t, "JOIN_ROOM_RESPONSE|"); got != "JOIN_ROOM_RESPONSE|false|The room is full." {
		t.Errorf("got %q", got)
	}
}

func TestServer_ChatRelay(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	alice.send(t, "CREATE_ROOM|chatty||Python|Medium|2")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")
	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")

	alice.send(t, "CHAT|R1|good luck")

	for _, c := range []*fakeConn{alice, bob} {
		if got := c.expect(t, "CHAT|"); got != "CHAT|alice|good luck" {
			t.Errorf("got %q", got)
		}
	}
}

func TestServer_SettingsHostOnly(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	alice.send(t, "CREATE_ROOM|mine||Java|Easy|2")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")
	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")

	// A non-host update is rejected; the PONG proves no settings
	// broadcast slipped out before it
	bob.send(t, "SETTINGS_UPDATED|R1|MODE|Python")
	bob.expect(t, "ERROR|")
	bob.send(t, "PING")
	deadline := time.After(2 * time.Second)
	for {
		var line string
		select {
		case line = <-bob.outbox:
		case <-deadline:
			t.Fatal("timed out waiting for PONG")
		}
		if strings.HasPrefix(line, "SETTINGS_UPDATED|") {
			t.Fatalf("non-host settings update was applied: %q", line)
		}
		if line == "PONG" {
			break
		}
	}

	alice.send(t, "SETTINGS_UPDATED|R1|DIFFICULTY|Hard")
	if got := bob.expect(t, "SETTINGS_UPDATED|"); got != "SETTINGS_UPDATED|R1|JAVA|HARD" {
		t.Errorf("got %q", got)
	}

	alice.send(t, "SETTINGS_UPDATED|R1|MODE|Rust")
	alice.expect(t, "ERROR|")
}

func TestServer_StartGameValidation(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	alice.send(t, "CREATE_ROOM|race||Java|Easy|2")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")

	// Not full yet
	alice.send(t, "START_GAME|R1")
	alice.expect(t, "ERROR|")

	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")

	// Not the host
	bob.send(t, "START_GAME|R1")
	bob.expect(t, "ERROR|")
}

func TestServer_MatchFlow(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	alice.send(t, "CREATE_ROOM|race||Java|Easy|2")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")
	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")

	alice.send(t, "START_GAME|R1")

	for _, c := range []*fakeConn{alice, bob} {
		if got := c.expect(t, "GAME_CONFIG|"); got != "GAME_CONFIG|JAVA|EASY|alice;bob" {
			t.Errorf("got %q", got)
		}
		c.expect(t, "GAME_START")
	}

	// Type the first falling word as bob
	spawned := bob.expect(t, "WORD_SPAWNED|R1|")
	word := strings.Split(spawned, "|")[2]
	bob.send(t, "GAME_ACTION|R1|WORD_INPUT|"+word)

	matched := alice.expect(t, "WORD_MATCHED|")
	if !strings.HasPrefix(matched, "WORD_MATCHED|R1|"+word+"|bob|") {
		t.Errorf("got %q, want a match of %q by bob", matched, word)
	}
	alice.expect(t, "PH_UPDATE|R1|bob|")
	alice.expect(t, "PH_UPDATE|R1|alice|6.80")

	// Bob quits the match; alice wins by forfeit
	bob.send(t, "GAME_ACTION|R1|PLAYER_LEAVE_GAME|bob")

	over := alice.expect(t, "GAME_OVER|")
	if !strings.HasPrefix(over, "GAME_OVER|R1|alice|") || !strings.HasSuffix(over, "|FORFEIT") {
		t.Errorf("got %q, want an alice forfeit win", over)
	}
}

// stubSource feeds a fixed word for start-sequence tests
type stubSource struct{}

func (stubSource) Next() game.Word { return game.Word{Text: "stub", X: 100} }

func TestServer_StartAbortsWhenMemberLeavesDuringLoad(t *testing.T) {
	s := newTestServer(t)

	inLoad := make(chan struct{})
	leaveDone := make(chan struct{})
	s.newWords = func(game.GameMode) game.WordSource {
		close(inLoad)
		<-leaveDone
		return stubSource{}
	}

	alice := login(t, s, "alice")
	bob := login(t, s, "bob")
	alice.send(t, "CREATE_ROOM|race||Java|Easy|2")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")
	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")
	alice.expect(t, "PLAYER_UPDATE|R1|2|")

	// Bob leaves in the window between the start being accepted and the
	// controller being registered
	alice.send(t, "START_GAME|R1")
	select {
	case <-inLoad:
	case <-time.After(2 * time.Second):
		t.Fatal("start never reached the word list load")
	}
	bob.send(t, "LEAVE_ROOM|R1")
	alice.expect(t, "PLAYER_UPDATE|R1|1|alice")
	close(leaveDone)

	// The start is abandoned: an ERROR arrives and no GAME_START may
	// precede it
	deadline := time.After(2 * time.Second)
	for {
		var line string
		select {
		case line = <-alice.outbox:
		case <-deadline:
			t.Fatal("timed out waiting for the aborted start's ERROR")
		}
		if line == "GAME_START" {
			t.Fatal("match started against a departed member")
		}
		if strings.HasPrefix(line, "ERROR|") {
			break
		}
	}

	// The room rolled back to idle and the seat is free again
	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")
}

func TestServer_DisconnectDuringMatchForfeits(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	alice.send(t, "CREATE_ROOM|race||Java|Easy|2")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")
	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")

	alice.send(t, "START_GAME|R1")
	alice.expect(t, "GAME_START")

	// Bob's socket dies mid-match; the cleanup path forfeits the game
	bob.Close()

	over := alice.expect(t, "GAME_OVER|")
	if !strings.HasPrefix(over, "GAME_OVER|R1|alice|") || !strings.HasSuffix(over, "|FORFEIT") {
		t.Errorf("got %q, want an alice forfeit win", over)
	}
}

func TestServer_GameActionWithoutLiveGame(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")

	alice.send(t, "GAME_ACTION|R1|WORD_INPUT|public")
	if got := alice.expect(t, "ERROR|"); got != "ERROR|Invalid game action." {
		t.Errorf("got %q", got)
	}
}

func TestServer_HostTransferOnLeave(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	alice.send(t, "CREATE_ROOM|shared||Java|Easy|3")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")
	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")

	alice.send(t, "LEAVE_ROOM|R1")

	bob.expect(t, "HOST_LEFT|R1|")
	if got := bob.expect(t, "NEW_HOST|"); got != "NEW_HOST|R1|bob" {
		t.Errorf("got %q", got)
	}
	if got := bob.expect(t, "PLAYER_UPDATE|"); got != "PLAYER_UPDATE|R1|1|bob" {
		t.Errorf("got %q", got)
	}
}

func TestServer_RoomClosedWhenEmpty(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	alice.send(t, "CREATE_ROOM|brief||C|Hard|2")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")

	alice.send(t, "LEAVE_ROOM|R1")

	bob.expect(t, "ROOM_CLOSED|R1|")
	// The follow-up room list is empty again
	if got := bob.expect(t, "ROOM_LIST_RESPONSE"); got != "ROOM_LIST_RESPONSE" {
		t.Errorf("got %q, want empty room list", got)
	}
}

func TestServer_DisconnectLeavesRoom(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	alice.send(t, "CREATE_ROOM|sticky||Java|Easy|3")
	alice.expect(t, "CREATE_ROOM_RESPONSE|true")
	bob.send(t, "JOIN_ROOM|R1")
	bob.expect(t, "JOIN_ROOM_RESPONSE|true")
	alice.expect(t, "PLAYER_UPDATE|R1|2|")

	// Bob's socket dies; the cleanup path removes him from the room
	bob.Close()

	if got := alice.expect(t, "PLAYER_UPDATE|"); got != "PLAYER_UPDATE|R1|1|alice" {
		t.Errorf("got %q", got)
	}
}

func TestServer_LeaderboardQuery(t *testing.T) {
	s := newTestServer(t)
	s.board.Submit("alice", 900, game.ModeJava, game.DifficultyEasy)
	s.board.Submit("bob", 700, game.ModeJava, game.DifficultyEasy)

	carol := login(t, s, "carol")
	carol.send(t, "LEADERBOARD_ACTION|GET_TOP|JAVA|EASY")

	top := carol.expect(t, "LEADERBOARD_DATA|TOP|")
	if !strings.HasPrefix(top, "LEADERBOARD_DATA|TOP|alice,900,JAVA,EASY,") {
		t.Errorf("got %q, want alice first", top)
	}
	if !strings.Contains(top, "|bob,700,JAVA,EASY,") {
		t.Errorf("got %q, want bob included", top)
	}
}

func TestServer_MalformedLineAnswersError(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")

	alice.send(t, "TELEPORT|R1")
	alice.expect(t, "ERROR|")

	// The connection survives bad input
	alice.send(t, "PING")
	alice.expect(t, "PONG")
}
