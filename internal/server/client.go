package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gyeongmin0113/acid-rain/internal/network"
	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

// ClientHandler owns exactly one client connection. It runs the blocking
// read loop, decodes protocol lines and dispatches them to the server.
// Whatever ends the loop (logout, EOF, an I/O error or server shutdown),
// the cleanup path runs exactly once: leave the current room, deregister,
// close the socket.
type ClientHandler struct {
	id     string
	conn   lineConn
	server *Server
	log    *logger.Logger

	mu            sync.Mutex
	username      string
	currentRoomID string
	running       bool

	cleanupOnce sync.Once
}

func newClientHandler(conn lineConn, s *Server) *ClientHandler {
	return &ClientHandler{
		id:      uuid.NewString(),
		conn:    conn,
		server:  s,
		log:     logger.Server,
		running: true,
	}
}

// ID returns the server-assigned connection ID
func (c *ClientHandler) ID() string {
	return c.id
}

// Username returns the name set at login, empty before login
func (c *ClientHandler) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *ClientHandler) setUsername(name string) {
	c.mu.Lock()
	c.username = name
	c.mu.Unlock()
}

// RoomID returns the client's current room, empty when in none
func (c *ClientHandler) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRoomID
}

func (c *ClientHandler) setRoomID(roomID string) {
	c.mu.Lock()
	c.currentRoomID = roomID
	c.mu.Unlock()
}

func (c *ClientHandler) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *ClientHandler) stop() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Send writes one protocol line. A write failure marks the connection
// dead and closes the socket, which unblocks the read loop and lets the
// normal cleanup path run.
func (c *ClientHandler) Send(message string) {
	if !c.isRunning() {
		return
	}
	if err := c.conn.WriteLine(message); err != nil {
		c.log.Warn("Write failed for %s (%s): %v", c.Username(), c.conn.RemoteAddr(), err)
		c.stop()
		c.conn.Close()
	}
}

// Run is the blocking per-connection loop
func (c *ClientHandler) Run() {
	defer c.cleanup()

	for c.isRunning() {
		line, err := c.conn.ReadLine()
		if err != nil {
			if c.isRunning() {
				c.log.Info("Connection closed: %s", c.conn.RemoteAddr())
			}
			return
		}
		if line == "" {
			continue
		}
		c.process(line)
	}
}

// process decodes and dispatches one line. Failures here never kill the
// loop: syntax problems and processing panics both surface as an ERROR
// line to this client only.
func (c *ClientHandler) process(line string) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Panic while handling message from %s: %v", c.Username(), r)
			c.Send(network.Error("Internal error while processing the request."))
		}
	}()

	cmd, err := network.ParseCommand(line)
	if err != nil {
		c.log.Warn("Bad message from %s: %v", c.conn.RemoteAddr(), err)
		c.Send(network.Error(err.Error()))
		return
	}

	switch cmd := cmd.(type) {
	case network.Login:
		c.setUsername(cmd.Username)
		c.log.Info("Login: %s", cmd.Username)
		c.server.broadcastUserCount()
		c.server.broadcastRoomList()

	case network.Logout:
		c.log.Info("Logout: %s", c.Username())
		c.stop()

	case network.RoomList:
		c.server.broadcastRoomList()

	case network.PlayerList:
		c.server.sendPlayerList(cmd.RoomID)

	case network.CreateRoom:
		c.server.createRoom(cmd, c)

	case network.JoinRoom:
		c.server.joinRoom(cmd.RoomID, c, cmd.Password)

	case network.LeaveRoom:
		if roomID := c.RoomID(); roomID != "" {
			c.server.leaveRoom(roomID, c)
		}

	case network.Chat:
		if roomID := c.RoomID(); roomID != "" {
			c.server.handleChat(roomID, c, cmd.Text)
		} else {
			c.Send(network.Error("Not in a room."))
		}

	case network.UpdateSettings:
		if roomID := c.RoomID(); roomID != "" {
			c.server.updateSettings(roomID, cmd.Setting, cmd.Value, c)
		} else {
			c.Send(network.Error("Not in a room."))
		}

	case network.StartGame:
		if roomID := c.RoomID(); roomID != "" {
			c.server.startGame(roomID, c)
		} else {
			c.Send(network.Error("No room to start a game in."))
		}

	case network.WordInput:
		c.server.handleWordInput(cmd.RoomID, c, cmd.Word)

	case network.WordMissed:
		c.server.handleWordMissed(cmd.RoomID, c, cmd.Word)

	case network.PlayerLeaveGame:
		c.server.handlePlayerLeaveGame(cmd.RoomID, c)

	case network.LeaderboardQuery:
		c.server.handleLeaderboardQuery(cmd, c)

	case network.Ping:
		c.Send(network.Pong())

	case network.UsersRequest:
		c.server.broadcastUserCount()
	}
}

// cleanup runs exactly once regardless of how the loop ended
func (c *ClientHandler) cleanup() {
	c.cleanupOnce.Do(func() {
		c.stop()
		if roomID := c.RoomID(); roomID != "" {
			c.server.leaveRoom(roomID, c)
		}
		c.server.removeClient(c)
		c.conn.Close()
		c.log.Info("Client disconnected: %s", c.conn.RemoteAddr())
	})
}
