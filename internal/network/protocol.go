// Package network handles all network communication protocols
package network

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gyeongmin0113/acid-rain/internal/game"
)

// Wire message type names. Messages are UTF-8 lines with pipe-separated
// fields; the first field is the type.
const (
	// Client commands
	MsgLogin             = "LOGIN"
	MsgLogout            = "LOGOUT"
	MsgRoomList          = "ROOM_LIST"
	MsgPlayerList        = "PLAYER_LIST"
	MsgCreateRoom        = "CREATE_ROOM"
	MsgJoinRoom          = "JOIN_ROOM"
	MsgLeaveRoom         = "LEAVE_ROOM"
	MsgChat              = "CHAT"
	MsgSettingsUpdated   = "SETTINGS_UPDATED"
	MsgStartGame         = "START_GAME"
	MsgGameAction        = "GAME_ACTION"
	MsgLeaderboardAction = "LEADERBOARD_ACTION"
	MsgPing              = "PING"
	MsgUsersRequest      = "USERS_REQUEST"

	// GAME_ACTION subtypes
	ActionWordInput       = "WORD_INPUT"
	ActionWordMissed      = "WORD_MISSED"
	ActionPlayerLeaveGame = "PLAYER_LEAVE_GAME"

	// LEADERBOARD_ACTION subtypes
	ActionGetTop       = "GET_TOP"
	ActionGetMyRecords = "GET_MY_RECORDS"

	// Server messages
	MsgUsers              = "USERS"
	MsgRoomListResponse   = "ROOM_LIST_RESPONSE"
	MsgCreateRoomResponse = "CREATE_ROOM_RESPONSE"
	MsgJoinRoomResponse   = "JOIN_ROOM_RESPONSE"
	MsgPlayerUpdate       = "PLAYER_UPDATE"
	MsgHostLeft           = "HOST_LEFT"
	MsgNewHost            = "NEW_HOST"
	MsgRoomClosed         = "ROOM_CLOSED"
	MsgGameStart          = "GAME_START"
	MsgGameConfig         = "GAME_CONFIG"
	MsgWordSpawned        = "WORD_SPAWNED"
	MsgWordMatched        = "WORD_MATCHED"
	MsgWordMissed         = "WORD_MISSED"
	MsgPHUpdate           = "PH_UPDATE"
	MsgBlindEffect        = "BLIND_EFFECT"
	MsgGameOver           = "GAME_OVER"
	MsgLeaderboardData    = "LEADERBOARD_DATA"
	MsgLeaderboardUpdate  = "LEADERBOARD_UPDATE"
	MsgError              = "ERROR"
	MsgPong               = "PONG"
)

// Command is a decoded client request. Each concrete command carries the
// typed fields of one wire command.
type Command interface {
	command()
}

type Login struct{ Username string }
type Logout struct{}
type RoomList struct{}
type PlayerList struct{ RoomID string }
type Ping struct{}
type UsersRequest struct{}

type CreateRoom struct {
	Name       string
	Password   string
	Mode       game.GameMode
	Difficulty game.DifficultyLevel
	MaxPlayers int
}

type JoinRoom struct {
	RoomID   string
	Password string
}

type LeaveRoom struct{ RoomID string }

type Chat struct {
	RoomID string
	Text   string
}

type UpdateSettings struct {
	RoomID  string
	Setting string // "MODE" or "DIFFICULTY"
	Value   string
}

type StartGame struct{ RoomID string }

type WordInput struct {
	RoomID string
	Word   string
}

type WordMissed struct {
	RoomID string
	Word   string
}

type PlayerLeaveGame struct {
	RoomID   string
	Username string
}

type LeaderboardQuery struct {
	Action     string // GET_TOP or GET_MY_RECORDS
	Mode       game.GameMode
	Difficulty game.DifficultyLevel
}

func (Login) command()            {}
func (Logout) command()           {}
func (RoomList) command()         {}
func (PlayerList) command()       {}
func (Ping) command()             {}
func (UsersRequest) command()     {}
func (CreateRoom) command()       {}
func (JoinRoom) command()         {}
func (LeaveRoom) command()        {}
func (Chat) command()             {}
func (UpdateSettings) command()   {}
func (StartGame) command()        {}
func (WordInput) command()        {}
func (WordMissed) command()       {}
func (PlayerLeaveGame) command()  {}
func (LeaderboardQuery) command() {}

// ParseCommand decodes one client line into a typed command. Syntax
// problems (missing fields, bad numbers, unknown types) come back as
// errors; the caller answers those with an ERROR line.
func ParseCommand(line string) (Command, error) {
	parts := strings.Split(line, "|")
	msgType := parts[0]

	switch msgType {
	case MsgLogin:
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("invalid login request")
		}
		return Login{Username: parts[1]}, nil

	case MsgLogout:
		return Logout{}, nil

	case MsgRoomList:
		return RoomList{}, nil

	case MsgPlayerList:
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid player list request")
		}
		return PlayerList{RoomID: parts[1]}, nil

	case MsgCreateRoom:
		if len(parts) < 6 {
			return nil, fmt.Errorf("invalid room creation request")
		}
		mode, err := game.ParseGameMode(parts[3])
		if err != nil {
			return nil, err
		}
		difficulty, err := game.ParseDifficulty(parts[4])
		if err != nil {
			return nil, err
		}
		maxPlayers, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid max players: %q", parts[5])
		}
		return CreateRoom{
			Name:       parts[1],
			Password:   parts[2],
			Mode:       mode,
			Difficulty: difficulty,
			MaxPlayers: maxPlayers,
		}, nil

	case MsgJoinRoom:
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid room join request")
		}
		cmd := JoinRoom{RoomID: parts[1]}
		if len(parts) >= 3 {
			cmd.Password = parts[2]
		}
		return cmd, nil

	case MsgLeaveRoom:
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid room leave request")
		}
		return LeaveRoom{RoomID: parts[1]}, nil

	case MsgChat:
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid chat message")
		}
		return Chat{RoomID: parts[1], Text: parts[2]}, nil

	case MsgSettingsUpdated:
		if len(parts) < 4 {
			return nil, fmt.Errorf("invalid settings update request")
		}
		return UpdateSettings{RoomID: parts[1], Setting: parts[2], Value: parts[3]}, nil

	case MsgStartGame:
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid game start request")
		}
		return StartGame{RoomID: parts[1]}, nil

	case MsgGameAction:
		return parseGameAction(parts)

	case MsgLeaderboardAction:
		return parseLeaderboardAction(parts)

	case MsgPing:
		return Ping{}, nil

	case MsgUsersRequest:
		return UsersRequest{}, nil
	}

	return nil, fmt.Errorf("unsupported message type: %q", msgType)
}

func parseGameAction(parts []string) (Command, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid game action request")
	}
	roomID, action := parts[1], parts[2]

	switch action {
	case ActionWordInput:
		if len(parts) < 4 || parts[3] == "" {
			return nil, fmt.Errorf("no word supplied")
		}
		return WordInput{RoomID: roomID, Word: parts[3]}, nil
	case ActionWordMissed:
		if len(parts) < 4 || parts[3] == "" {
			return nil, fmt.Errorf("no missed word supplied")
		}
		return WordMissed{RoomID: roomID, Word: parts[3]}, nil
	case ActionPlayerLeaveGame:
		cmd := PlayerLeaveGame{RoomID: roomID}
		if len(parts) >= 4 {
			cmd.Username = parts[3]
		}
		return cmd, nil
	}
	return nil, fmt.Errorf("unknown game action: %q", action)
}

func parseLeaderboardAction(parts []string) (Command, error) {
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid leaderboard request")
	}
	action := parts[1]
	if action != ActionGetTop && action != ActionGetMyRecords {
		return nil, fmt.Errorf("unknown leaderboard action: %q", action)
	}
	mode, err := game.ParseGameMode(parts[2])
	if err != nil {
		return nil, err
	}
	difficulty, err := game.ParseDifficulty(parts[3])
	if err != nil {
		return nil, err
	}
	return LeaderboardQuery{Action: action, Mode: mode, Difficulty: difficulty}, nil
}

// FormatRoomInfo renders the comma-separated room summary used by the
// room list and the create/join responses:
// id,name,currentPlayers,maxPlayers,mode,difficulty,hostName
func FormatRoomInfo(r *game.Room) string {
	return fmt.Sprintf("%s,%s,%d,%d,%s,%s,%s",
		r.ID, r.Name, r.PlayerCount(), r.MaxPlayers,
		r.Mode.DisplayName(), r.Difficulty.DisplayName(), r.HostName)
}

// Outbound message builders. Every server line is produced here.

func Users(count int) string {
	return fmt.Sprintf("%s|%d", MsgUsers, count)
}

func RoomListResponse(roomInfos []string) string {
	if len(roomInfos) == 0 {
		return MsgRoomListResponse
	}
	return MsgRoomListResponse + "|" + strings.Join(roomInfos, "|")
}

func CreateRoomSuccess(message, roomInfo, roomID string) string {
	return fmt.Sprintf("%s|true|%s|%s|%s", MsgCreateRoomResponse, message, roomInfo, roomID)
}

func CreateRoomFailure(message string) string {
	return fmt.Sprintf("%s|false|%s", MsgCreateRoomResponse, message)
}

func JoinRoomSuccess(message, roomInfo string) string {
	return fmt.Sprintf("%s|true|%s|%s", MsgJoinRoomResponse, message, roomInfo)
}

func JoinRoomFailure(message string) string {
	return fmt.Sprintf("%s|false|%s", MsgJoinRoomResponse, message)
}

func PlayerUpdate(roomID string, count int, players []string) string {
	return fmt.Sprintf("%s|%s|%d|%s", MsgPlayerUpdate, roomID, count, strings.Join(players, ";"))
}

func HostLeft(roomID, message string) string {
	return fmt.Sprintf("%s|%s|%s", MsgHostLeft, roomID, message)
}

func NewHost(roomID, username string) string {
	return fmt.Sprintf("%s|%s|%s", MsgNewHost, roomID, username)
}

func RoomClosed(roomID, reason string) string {
	return fmt.Sprintf("%s|%s|%s", MsgRoomClosed, roomID, reason)
}

func SettingsUpdated(roomID string, mode game.GameMode, difficulty game.DifficultyLevel) string {
	return fmt.Sprintf("%s|%s|%s|%s", MsgSettingsUpdated, roomID, mode, difficulty)
}

func GameStart() string {
	return MsgGameStart
}

func GameConfig(mode game.GameMode, difficulty game.DifficultyLevel, players []string) string {
	return fmt.Sprintf("%s|%s|%s|%s", MsgGameConfig, mode, difficulty, strings.Join(players, ";"))
}

func WordSpawned(roomID string, w game.Word) string {
	if w.HasEffect() {
		return fmt.Sprintf("%s|%s|%s|%d|%s", MsgWordSpawned, roomID, w.Text, w.X, w.Effect)
	}
	return fmt.Sprintf("%s|%s|%s|%d", MsgWordSpawned, roomID, w.Text, w.X)
}

func WordMatched(roomID, text, player string, score int) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d", MsgWordMatched, roomID, text, player, score)
}

func WordMissedNotice(roomID, text, player string, ph float64) string {
	return fmt.Sprintf("%s|%s|%s|%s|%.2f", MsgWordMissed, roomID, text, player, ph)
}

func PHUpdate(roomID, player string, ph float64) string {
	return fmt.Sprintf("%s|%s|%s|%.2f", MsgPHUpdate, roomID, player, ph)
}

func BlindEffect(roomID, target string, durationMs int) string {
	return fmt.Sprintf("%s|%s|%s|%d", MsgBlindEffect, roomID, target, durationMs)
}

func GameOver(roomID, winner string, winnerScore, loserScore int, forfeit bool) string {
	msg := fmt.Sprintf("%s|%s|%s|%d|%d", MsgGameOver, roomID, winner, winnerScore, loserScore)
	if forfeit {
		msg += "|FORFEIT"
	}
	return msg
}

// LeaderboardData renders a TOP or USER data line from pre-formatted
// entry strings (the leaderboard file format doubles as the wire format)
func LeaderboardData(kind string, entries []string) string {
	msg := MsgLeaderboardData + "|" + kind
	for _, e := range entries {
		msg += "|" + e
	}
	return msg
}

func LeaderboardUpdate(roomID, player string, rank int) string {
	return fmt.Sprintf("%s|%s|%s|%d", MsgLeaderboardUpdate, roomID, player, rank)
}

func ChatRelay(username, text string) string {
	return fmt.Sprintf("%s|%s|%s", MsgChat, username, text)
}

func Error(message string) string {
	return fmt.Sprintf("%s|%s", MsgError, message)
}

func Pong() string {
	return MsgPong
}
