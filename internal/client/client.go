// Package client handles the TCP client and game interaction
package client

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

// Client represents the game client
type Client struct {
	conn        net.Conn
	display     *Display
	input       *InputHandler
	logger      *logger.Logger
	writer      *bufio.Writer
	reader      *bufio.Scanner
	serverAddr  string
	isConnected bool

	mu            sync.Mutex
	username      string
	currentRoomID string
	inGame        bool
}

// NewClient creates a new client instance
func NewClient(serverAddr string) *Client {
	display := NewDisplay()
	return &Client{
		display:    display,
		input:      NewInputHandler(display),
		logger:     logger.Client,
		serverAddr: serverAddr,
	}
}

// Start connects, logs in and runs the interactive loop until EOF or quit
func (c *Client) Start() error {
	conn, err := net.Dial("tcp", c.serverAddr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.serverAddr, err)
	}
	c.conn = conn
	c.writer = bufio.NewWriter(conn)
	c.reader = bufio.NewScanner(conn)
	c.isConnected = true

	c.display.PrintBanner()
	c.display.PrintServerStatus("Connected to " + c.serverAddr)

	username := c.input.GetUsername()
	c.mu.Lock()
	c.username = username
	c.mu.Unlock()

	if err := c.send("LOGIN|" + username); err != nil {
		return err
	}
	c.display.PrintConnection(username)
	c.display.PrintHelp()

	go c.readLoop()

	c.commandLoop()
	return nil
}

// Close tears the connection down
func (c *Client) Close() {
	c.isConnected = false
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) send(line string) error {
	if _, err := c.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *Client) roomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRoomID
}

func (c *Client) setRoomID(id string) {
	c.mu.Lock()
	c.currentRoomID = id
	c.mu.Unlock()
}

// readLoop consumes server lines and renders them
func (c *Client) readLoop() {
	for c.reader.Scan() {
		line := c.reader.Text()
		if line == "" {
			continue
		}
		c.handleServerMessage(line)
	}
	if c.isConnected {
		c.display.PrintServerStatus("Connection lost")
		c.Close()
	}
}

// handleServerMessage dispatches one server line to the display
func (c *Client) handleServerMessage(line string) {
	parts := strings.Split(line, "|")

	switch parts[0] {
	case "USERS":
		if len(parts) >= 2 {
			c.display.PrintUserCount(parts[1])
		}

	case "ROOM_LIST_RESPONSE":
		c.display.PrintRoomList(parts[1:])

	case "CREATE_ROOM_RESPONSE":
		if len(parts) >= 2 && parts[1] == "true" {
			if len(parts) >= 5 {
				c.setRoomID(parts[4])
			}
			c.display.PrintInfo("Room created")
		} else if len(parts) >= 3 {
			c.display.PrintError(parts[2])
		}

	case "JOIN_ROOM_RESPONSE":
		if len(parts) >= 2 && parts[1] == "true" {
			if len(parts) >= 3 {
				if fields := strings.Split(parts[2], ","); len(fields) > 0 {
					c.setRoomID(fields[0])
				}
			}
			c.display.PrintInfo("Joined the room")
		} else if len(parts) >= 3 {
			c.display.PrintError(parts[2])
		}

	case "PLAYER_UPDATE":
		if len(parts) >= 4 {
			c.display.PrintPlayerUpdate(parts[1], parts[2], parts[3])
		}

	case "HOST_LEFT":
		if len(parts) >= 3 {
			c.display.PrintWarning(parts[2])
		}

	case "NEW_HOST":
		if len(parts) >= 3 {
			c.display.PrintInfo("New host: " + parts[2])
		}

	case "ROOM_CLOSED":
		if len(parts) >= 2 && parts[1] == c.roomID() {
			c.setRoomID("")
			if len(parts) >= 3 {
				c.display.PrintWarning(parts[2])
			}
		}

	case "SETTINGS_UPDATED":
		if len(parts) >= 4 {
			c.display.PrintInfo(fmt.Sprintf("Room settings: mode %s, difficulty %s", parts[2], parts[3]))
		}

	case "GAME_CONFIG":
		if len(parts) >= 4 {
			c.display.PrintGameConfig(parts[1], parts[2], parts[3])
		}

	case "GAME_START":
		c.mu.Lock()
		c.inGame = true
		c.mu.Unlock()
		c.display.PrintGameStart()

	case "WORD_SPAWNED":
		switch len(parts) {
		case 4:
			c.display.PrintWordSpawned(parts[2], parts[3], "")
		case 5:
			c.display.PrintWordSpawned(parts[2], parts[3], parts[4])
		}

	case "WORD_MATCHED":
		if len(parts) >= 5 {
			c.display.PrintWordMatched(parts[2], parts[3], parts[4])
		}

	case "WORD_MISSED":
		if len(parts) >= 5 {
			c.display.PrintWordMissed(parts[2], parts[3], parts[4])
		}

	case "PH_UPDATE":
		if len(parts) >= 4 {
			c.display.PrintPHUpdate(parts[2], parts[3])
		}

	case "BLIND_EFFECT":
		if len(parts) >= 4 {
			c.display.PrintBlindEffect(parts[2], parts[3])
		}

	case "GAME_OVER":
		if len(parts) >= 5 {
			c.mu.Lock()
			c.inGame = false
			mine := parts[2] == c.username
			c.mu.Unlock()
			forfeit := len(parts) >= 6 && parts[5] == "FORFEIT"
			c.display.PrintGameOver(parts[2], parts[3], parts[4], forfeit, mine)
		}

	case "LEADERBOARD_DATA":
		if len(parts) >= 2 {
			c.display.PrintLeaderboard(parts[1], parts[2:])
		}

	case "LEADERBOARD_UPDATE":
		if len(parts) >= 4 {
			c.display.PrintLeaderboardRank(parts[2], parts[3])
		}

	case "CHAT":
		if len(parts) >= 3 {
			c.display.PrintChat(parts[1], parts[2])
		}

	case "ERROR":
		if len(parts) >= 2 {
			c.display.PrintError(parts[1])
		}

	case "PONG":
		c.display.PrintInfo("pong")

	default:
		c.logger.Debug("Unhandled server message: %s", line)
	}
}

// commandLoop translates interactive commands into protocol lines
func (c *Client) commandLoop() {
	for c.isConnected {
		line, ok := c.input.ReadCommand()
		if !ok {
			break
		}
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		switch args[0] {
		case "help":
			c.display.PrintHelp()

		case "rooms":
			c.send("ROOM_LIST")

		case "create":
			if len(args) != 5 {
				c.display.PrintWarning("usage: create <name> <mode> <diff> <maxPlayers>")
				continue
			}
			c.send(fmt.Sprintf("CREATE_ROOM|%s||%s|%s|%s", args[1], args[2], args[3], args[4]))

		case "pcreate":
			if len(args) != 6 {
				c.display.PrintWarning("usage: pcreate <name> <password> <mode> <diff> <maxPlayers>")
				continue
			}
			c.send(fmt.Sprintf("CREATE_ROOM|%s|%s|%s|%s|%s", args[1], args[2], args[3], args[4], args[5]))

		case "join":
			switch len(args) {
			case 2:
				c.send("JOIN_ROOM|" + args[1])
			case 3:
				c.send("JOIN_ROOM|" + args[1] + "|" + args[2])
			default:
				c.display.PrintWarning("usage: join <roomID> [password]")
			}

		case "leave":
			if roomID := c.roomID(); roomID != "" {
				c.send("LEAVE_ROOM|" + roomID)
				c.setRoomID("")
			} else {
				c.display.PrintWarning("not in a room")
			}

		case "say":
			roomID := c.roomID()
			if roomID == "" {
				c.display.PrintWarning("not in a room")
				continue
			}
			if len(args) < 2 {
				c.display.PrintWarning("usage: say <text>")
				continue
			}
			c.send("CHAT|" + roomID + "|" + strings.Join(args[1:], " "))

		case "mode", "diff":
			roomID := c.roomID()
			if roomID == "" {
				c.display.PrintWarning("not in a room")
				continue
			}
			if len(args) != 2 {
				c.display.PrintWarning("usage: " + args[0] + " <value>")
				continue
			}
			setting := "MODE"
			if args[0] == "diff" {
				setting = "DIFFICULTY"
			}
			c.send("SETTINGS_UPDATED|" + roomID + "|" + setting + "|" + args[1])

		case "start":
			if roomID := c.roomID(); roomID != "" {
				c.send("START_GAME|" + roomID)
			} else {
				c.display.PrintWarning("not in a room")
			}

		case "t":
			roomID := c.roomID()
			if roomID == "" {
				c.display.PrintWarning("not in a game")
				continue
			}
			if len(args) != 2 {
				c.display.PrintWarning("usage: t <word>")
				continue
			}
			c.send("GAME_ACTION|" + roomID + "|WORD_INPUT|" + args[1])

		case "top":
			if len(args) != 3 {
				c.display.PrintWarning("usage: top <mode> <diff>")
				continue
			}
			c.send("LEADERBOARD_ACTION|GET_TOP|" + args[1] + "|" + args[2])

		case "mine":
			// Mode and difficulty are required fields; the server ignores
			// them for GET_MY_RECORDS
			c.send("LEADERBOARD_ACTION|GET_MY_RECORDS|JAVA|EASY")

		case "ping":
			c.send("PING")

		case "quit":
			c.send("LOGOUT")
			c.Close()
			return

		default:
			// A bare word during a match counts as typing it
			if roomID := c.roomID(); roomID != "" && len(args) == 1 {
				c.send("GAME_ACTION|" + roomID + "|WORD_INPUT|" + args[0])
			} else {
				c.display.PrintWarning("unknown command; 'help' lists commands")
			}
		}
	}
}
