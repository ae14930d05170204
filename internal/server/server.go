// Package server implements the TCP server for the acid-rain typing game
package server

import (
	"fmt"
	"net"
	"sync"

	"github.com/gyeongmin0113/acid-rain/internal/game"
	"github.com/gyeongmin0113/acid-rain/internal/leaderboard"
	"github.com/gyeongmin0113/acid-rain/internal/network"
	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

// Server is the session registry: it owns every connection, every room
// and the mapping from room to connected members, and mediates room
// lifecycle and broadcasts. Match loops run in game.Controller actors;
// the registry only starts and stops them.
//
// Lock discipline: s.mu guards the maps and every Room. Nothing sends on
// a socket or waits on a controller while holding it: broadcasts take a
// snapshot of recipients first, and controller shutdown happens after
// the lock is released.
type Server struct {
	addr     string
	wordsDir string
	board    *leaderboard.Store
	log      *logger.Logger

	listener net.Listener

	// newWords overrides word-list construction when set; tests use it
	// to control the start sequence
	newWords func(game.GameMode) game.WordSource

	mu          sync.RWMutex
	running     bool
	clients     map[string]*ClientHandler
	rooms       map[string]*game.Room
	roomClients map[string]map[string]*ClientHandler
	controllers map[string]*game.Controller
	roomSeq     int
}

// NewServer wires the registry with its injected leaderboard store
func NewServer(addr string, board *leaderboard.Store, wordsDir string) *Server {
	return &Server{
		addr:        addr,
		wordsDir:    wordsDir,
		board:       board,
		log:         logger.Server,
		clients:     make(map[string]*ClientHandler),
		rooms:       make(map[string]*game.Room),
		roomClients: make(map[string]map[string]*ClientHandler),
		controllers: make(map[string]*game.Controller),
	}
}

// Start begins accepting TCP connections and blocks until Stop
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.log.Info("Server listening on %s", s.addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if !s.isRunning() {
				return nil
			}
			s.log.Error("Failed to accept connection: %v", err)
			continue
		}
		go s.serveConn(newTCPConn(conn))
	}
}

// serveConn registers a connection (TCP or WebSocket) and runs its loop
func (s *Server) serveConn(conn lineConn) {
	client := newClientHandler(conn, s)

	s.mu.Lock()
	s.clients[client.ID()] = client
	s.mu.Unlock()

	s.log.Info("New client connected: %s", conn.RemoteAddr())
	s.broadcastUserCount()

	client.Run()
}

func (s *Server) isRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Stop closes the listener and every connection, stops all match loops
// and clears the in-memory state
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	listener := s.listener

	clients := make([]*ClientHandler, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	controllers := make([]*game.Controller, 0, len(s.controllers))
	for _, ctrl := range s.controllers {
		controllers = append(controllers, ctrl)
	}
	s.rooms = make(map[string]*game.Room)
	s.roomClients = make(map[string]map[string]*ClientHandler)
	s.controllers = make(map[string]*game.Controller)
	s.clients = make(map[string]*ClientHandler)
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	for _, ctrl := range controllers {
		ctrl.Stop()
	}
	for _, c := range clients {
		c.stop()
		c.conn.Close()
	}

	s.log.Info("Server stopped")
}

// removeClient deregisters a connection after its loop ended
func (s *Server) removeClient(c *ClientHandler) {
	s.mu.Lock()
	delete(s.clients, c.ID())
	s.mu.Unlock()
	s.broadcastUserCount()
}

// createRoom allocates a room with the creator as host and sole member
func (s *Server) createRoom(cmd network.CreateRoom, creator *ClientHandler) {
	if cmd.Name == "" || cmd.MaxPlayers < 2 || cmd.MaxPlayers > 4 {
		creator.Send(network.CreateRoomFailure("Invalid room settings."))
		return
	}

	s.mu.Lock()
	s.roomSeq++
	roomID := fmt.Sprintf("R%d", s.roomSeq)
	room := game.NewRoom(roomID, cmd.Name, cmd.Password, cmd.Mode, cmd.Difficulty, cmd.MaxPlayers)
	room.HostName = creator.Username()
	room.AddPlayer(creator.Username())
	s.rooms[roomID] = room
	s.roomClients[roomID] = map[string]*ClientHandler{creator.ID(): creator}
	creator.setRoomID(roomID)

	roomInfo := network.FormatRoomInfo(room)
	playerUpdate := network.PlayerUpdate(roomID, room.PlayerCount(), room.Players())
	s.mu.Unlock()

	creator.Send(network.CreateRoomSuccess("Room created.", roomInfo, roomID))
	s.broadcastToRoom(roomID, playerUpdate)
	s.broadcastRoomList()
	s.log.Info("Room created: %s, host: %s", roomID, creator.Username())
}

// joinRoom admits a client, or reports the exact reason it cannot:
// missing room, wrong password, full room, or a match already running
func (s *Server) joinRoom(roomID string, client *ClientHandler, password string) {
	s.mu.Lock()
	room := s.rooms[roomID]
	switch {
	case room == nil:
		s.mu.Unlock()
		client.Send(network.JoinRoomFailure("No such room."))
		return
	case room.PasswordRequired() && !room.PasswordValid(password):
		s.mu.Unlock()
		client.Send(network.JoinRoomFailure("Wrong password."))
		return
	case room.IsFull():
		s.mu.Unlock()
		client.Send(network.JoinRoomFailure("The room is full."))
		return
	case room.InGame:
		s.mu.Unlock()
		client.Send(network.JoinRoomFailure("The game has already started."))
		return
	}

	s.roomClients[roomID][client.ID()] = client
	room.AddPlayer(client.Username())
	client.setRoomID(roomID)

	roomInfo := network.FormatRoomInfo(room)
	playerUpdate := network.PlayerUpdate(roomID, room.PlayerCount(), room.Players())
	s.mu.Unlock()

	client.Send(network.JoinRoomSuccess("Joined the room.", roomInfo))
	s.broadcastToRoom(roomID, playerUpdate)
	s.broadcastRoomList()
	s.log.Info("%s joined room %s", client.Username(), roomID)
}

// leaveRoom removes a member. A live match ends first as a forfeit; an
// emptied room is destroyed; a departing host hands the role to an
// arbitrary remaining member.
//
// The forfeit happens outside the lock because the controller's
// game-over path re-enters the registry; the loop then re-checks for a
// controller under the write lock, so a leave racing a concurrent start
// either forfeits the new match or removes the member before the start
// can commit.
func (s *Server) leaveRoom(roomID string, client *ClientHandler) {
	username := client.Username()

	var room *game.Room
	for {
		s.mu.Lock()
		room = s.rooms[roomID]
		if room == nil {
			s.mu.Unlock()
			client.setRoomID("")
			return
		}
		var ctrl *game.Controller
		if room.InGame {
			ctrl = s.controllers[roomID]
		}
		if ctrl == nil {
			break
		}
		s.mu.Unlock()

		// HandleLeave is synchronous: by the time it returns the
		// game-over path has run and the controller is deregistered.
		ctrl.HandleLeave(username)
		ctrl.Stop()
	}

	members := s.roomClients[roomID]
	if members == nil {
		s.mu.Unlock()
		client.setRoomID("")
		return
	}

	wasHost := username == room.HostName
	delete(members, client.ID())
	room.RemovePlayer(username)
	client.setRoomID("")

	destroyed := len(members) == 0
	var newHost, playerUpdate string
	if destroyed {
		delete(s.rooms, roomID)
		delete(s.roomClients, roomID)
		if ctrl := s.controllers[roomID]; ctrl != nil {
			defer ctrl.Stop()
			delete(s.controllers, roomID)
		}
	} else {
		if wasHost {
			for _, m := range members {
				newHost = m.Username()
				break
			}
			room.HostName = newHost
		}
		playerUpdate = network.PlayerUpdate(roomID, room.PlayerCount(), room.Players())
	}
	s.mu.Unlock()

	if destroyed {
		s.broadcast(network.RoomClosed(roomID, "The room was closed."))
	} else {
		if wasHost {
			s.broadcastToRoom(roomID, network.HostLeft(roomID, "The host has left the room."))
			s.broadcastToRoom(roomID, network.NewHost(roomID, newHost))
		}
		s.broadcastToRoom(roomID, playerUpdate)
	}
	s.broadcastRoomList()
	s.log.Info("%s left room %s", username, roomID)
}

// updateSettings lets the host change the room's mode or difficulty in
// the lobby
func (s *Server) updateSettings(roomID, setting, value string, updater *ClientHandler) {
	s.mu.Lock()
	room := s.rooms[roomID]
	if room == nil || room.HostName != updater.Username() {
		s.mu.Unlock()
		s.log.Warn("Settings update rejected for %s in %s", updater.Username(), roomID)
		updater.Send(network.Error("Only the host may change settings."))
		return
	}

	switch setting {
	case "MODE":
		mode, err := game.ParseGameMode(value)
		if err != nil {
			s.mu.Unlock()
			updater.Send(network.Error("Invalid setting value: " + value))
			return
		}
		room.Mode = mode
	case "DIFFICULTY":
		difficulty, err := game.ParseDifficulty(value)
		if err != nil {
			s.mu.Unlock()
			updater.Send(network.Error("Invalid setting value: " + value))
			return
		}
		room.Difficulty = difficulty
	default:
		s.mu.Unlock()
		updater.Send(network.Error("Unknown setting type: " + setting))
		return
	}

	notice := network.SettingsUpdated(roomID, room.Mode, room.Difficulty)
	s.mu.Unlock()

	s.broadcastToRoom(roomID, notice)
	s.broadcastRoomList()
}

// startGame begins the room's match: host only, every seat taken, no
// match already live
func (s *Server) startGame(roomID string, starter *ClientHandler) {
	s.mu.Lock()
	room := s.rooms[roomID]
	if room == nil || room.HostName != starter.Username() {
		s.mu.Unlock()
		starter.Send(network.Error("You are not allowed to start this game."))
		return
	}
	if !room.CanStart() {
		s.mu.Unlock()
		starter.Send(network.Error("The game cannot start yet."))
		return
	}

	room.InGame = true
	mode, difficulty := room.Mode, room.Difficulty
	players := room.Players()
	s.mu.Unlock()

	words := s.wordSource(mode)
	ctrl := game.NewController(roomID, mode, difficulty, players, words, s.board, s)

	// The word list load ran unlocked, so the roster may have changed;
	// the start only commits against the exact lineup it was built for.
	s.mu.Lock()
	if s.rooms[roomID] != room || !room.IsFull() {
		room.InGame = false
		s.mu.Unlock()
		starter.Send(network.Error("The game cannot start yet."))
		s.log.Warn("Game start aborted in room %s: lineup changed", roomID)
		return
	}
	s.controllers[roomID] = ctrl
	s.mu.Unlock()

	s.broadcastToRoom(roomID, network.GameConfig(mode, difficulty, players))
	s.broadcastToRoom(roomID, network.GameStart())
	ctrl.Start()
	s.broadcastRoomList()
	s.log.Info("Game started in room %s", roomID)
}

// wordSource builds the vocabulary for a match
func (s *Server) wordSource(mode game.GameMode) game.WordSource {
	if s.newWords != nil {
		return s.newWords(mode)
	}
	return game.NewWordManager(mode, s.wordsDir)
}

// controllerFor returns the live match loop for a room, nil when none
func (s *Server) controllerFor(roomID string) *game.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room := s.rooms[roomID]
	if room == nil || !room.InGame {
		return nil
	}
	return s.controllers[roomID]
}

func (s *Server) handleWordInput(roomID string, client *ClientHandler, word string) {
	ctrl := s.controllerFor(roomID)
	if ctrl == nil {
		client.Send(network.Error("Invalid game action."))
		return
	}
	ctrl.HandleInput(client.Username(), word)
}

func (s *Server) handleWordMissed(roomID string, client *ClientHandler, word string) {
	ctrl := s.controllerFor(roomID)
	if ctrl == nil {
		client.Send(network.Error("Invalid game action."))
		return
	}
	ctrl.HandleMissed(word)
}

func (s *Server) handlePlayerLeaveGame(roomID string, client *ClientHandler) {
	ctrl := s.controllerFor(roomID)
	if ctrl == nil {
		client.Send(network.Error("Invalid game action."))
		return
	}
	s.log.Info("Player leaving live game: %s, room %s", client.Username(), roomID)
	ctrl.HandleLeave(client.Username())
}

// handleChat relays a chat line to the sender's room
func (s *Server) handleChat(roomID string, sender *ClientHandler, text string) {
	s.mu.RLock()
	_, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	s.broadcastToRoom(roomID, network.ChatRelay(sender.Username(), text))
}

// handleLeaderboardQuery answers GET_TOP and GET_MY_RECORDS
func (s *Server) handleLeaderboardQuery(cmd network.LeaderboardQuery, client *ClientHandler) {
	var entries []leaderboard.Entry
	var kind string
	switch cmd.Action {
	case network.ActionGetTop:
		entries = s.board.TopEntries(cmd.Mode, cmd.Difficulty)
		kind = "TOP"
	case network.ActionGetMyRecords:
		entries = s.board.UserEntries(client.Username())
		kind = "USER"
	default:
		client.Send(network.Error("Unknown leaderboard action."))
		return
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.FileString())
	}
	client.Send(network.LeaderboardData(kind, lines))
}

// sendPlayerList broadcasts the current roster of a room
func (s *Server) sendPlayerList(roomID string) {
	s.mu.RLock()
	room := s.rooms[roomID]
	var playerUpdate string
	if room != nil {
		playerUpdate = network.PlayerUpdate(roomID, room.PlayerCount(), room.Players())
	}
	s.mu.RUnlock()
	if playerUpdate != "" {
		s.broadcastToRoom(roomID, playerUpdate)
	}
}

// broadcast sends a line to every connection. Recipients are snapshotted
// first so joins and leaves during the send never skip or double anyone.
func (s *Server) broadcast(message string) {
	s.mu.RLock()
	recipients := make([]*ClientHandler, 0, len(s.clients))
	for _, c := range s.clients {
		recipients = append(recipients, c)
	}
	s.mu.RUnlock()

	for _, c := range recipients {
		c.Send(message)
	}
}

// broadcastToRoom sends a line to every member of one room
func (s *Server) broadcastToRoom(roomID, message string) {
	s.mu.RLock()
	members := s.roomClients[roomID]
	recipients := make([]*ClientHandler, 0, len(members))
	for _, c := range members {
		recipients = append(recipients, c)
	}
	s.mu.RUnlock()

	for _, c := range recipients {
		c.Send(message)
	}
}

// broadcastRoomList pushes the full room listing to everyone
func (s *Server) broadcastRoomList() {
	s.mu.RLock()
	infos := make([]string, 0, len(s.rooms))
	for _, room := range s.rooms {
		infos = append(infos, network.FormatRoomInfo(room))
	}
	s.mu.RUnlock()

	s.broadcast(network.RoomListResponse(infos))
}

// broadcastUserCount pushes the connected-user count to everyone
func (s *Server) broadcastUserCount() {
	s.mu.RLock()
	count := len(s.clients)
	s.mu.RUnlock()

	s.broadcast(network.Users(count))
}

// game.EventSink implementation: encode match events and fan them out.

func (s *Server) WordSpawned(roomID string, w game.Word) {
	s.broadcastToRoom(roomID, network.WordSpawned(roomID, w))
}

func (s *Server) WordMatched(roomID, text, player string, score int) {
	s.broadcastToRoom(roomID, network.WordMatched(roomID, text, player, score))
}

func (s *Server) PHUpdate(roomID, player string, ph float64) {
	s.broadcastToRoom(roomID, network.PHUpdate(roomID, player, ph))
}

func (s *Server) WordMissed(roomID, text, player string, ph float64) {
	s.broadcastToRoom(roomID, network.WordMissedNotice(roomID, text, player, ph))
}

func (s *Server) BlindEffect(roomID, target string, durationMs int) {
	s.broadcastToRoom(roomID, network.BlindEffect(roomID, target, durationMs))
}

func (s *Server) LeaderboardResult(roomID, player string, rank int) {
	s.broadcastToRoom(roomID, network.LeaderboardUpdate(roomID, player, rank))
}

// GameOver marks the room idle again, drops the finished match loop and
// announces the result
func (s *Server) GameOver(roomID, winner string, winnerScore, loserScore int, forfeit bool) {
	s.mu.Lock()
	if room := s.rooms[roomID]; room != nil {
		room.InGame = false
	}
	delete(s.controllers, roomID)
	s.mu.Unlock()

	s.broadcastToRoom(roomID, network.GameOver(roomID, winner, winnerScore, loserScore, forfeit))
}
