// Package client is a terminal client for the acid rain typing game
package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

type Display struct {
	serverColor  *color.Color
	connectColor *color.Color
	gameColor    *color.Color
	matchColor   *color.Color
	missColor    *color.Color
	winColor     *color.Color
	loseColor    *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	chatColor    *color.Color
	wordColor    *color.Color
	effectColor  *color.Color
}

// NewDisplay creates a new display instance with configured colors
func NewDisplay() *Display {
	return &Display{
		serverColor:  color.New(color.FgCyan, color.Bold),
		connectColor: color.New(color.FgGreen, color.Bold),
		gameColor:    color.New(color.FgYellow, color.Bold),
		matchColor:   color.New(color.FgGreen),
		missColor:    color.New(color.FgRed),
		winColor:     color.New(color.FgGreen, color.Bold, color.BgBlack),
		loseColor:    color.New(color.FgRed, color.Bold, color.BgBlack),
		warningColor: color.New(color.FgYellow),
		infoColor:    color.New(color.FgWhite),
		chatColor:    color.New(color.FgMagenta),
		wordColor:    color.New(color.FgBlue, color.Bold),
		effectColor:  color.New(color.FgRed, color.Bold, color.BgYellow),
	}
}

// PrintBanner displays the game banner
func (d *Display) PrintBanner() {
	banner := `
╔═══════════════════════════════════════╗
║        ACID RAIN TYPING CLIENT        ║
║           Type or Dissolve            ║
╚═══════════════════════════════════════╝
`
	d.gameColor.Println(banner)
}

func (d *Display) timestamp() string {
	return time.Now().Format("15:04:05")
}

// PrintServerStatus displays server connection status
func (d *Display) PrintServerStatus(message string) {
	d.serverColor.Printf("[%s] [SERVER] %s\n", d.timestamp(), message)
}

// PrintConnection displays connection events
func (d *Display) PrintConnection(username string) {
	d.connectColor.Printf("[%s] [CONNECTED] logged in as %s\n", d.timestamp(), username)
}

// PrintUserCount displays the online user count
func (d *Display) PrintUserCount(count string) {
	d.infoColor.Printf("[%s] [LOBBY] %s user(s) online\n", d.timestamp(), count)
}

// PrintRoomList renders the lobby room listing
func (d *Display) PrintRoomList(roomInfos []string) {
	if len(roomInfos) == 0 {
		d.infoColor.Printf("[%s] [LOBBY] no rooms open\n", d.timestamp())
		return
	}
	d.infoColor.Printf("[%s] [LOBBY] open rooms:\n", d.timestamp())
	for _, info := range roomInfos {
		fields := strings.Split(info, ",")
		if len(fields) != 7 {
			continue
		}
		d.infoColor.Printf("    %s  %-16s %s/%s  %s %s  host: %s\n",
			fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], fields[6])
	}
}

// PrintPlayerUpdate renders a room roster
func (d *Display) PrintPlayerUpdate(roomID, count, players string) {
	d.infoColor.Printf("[%s] [ROOM %s] players (%s): %s\n",
		d.timestamp(), roomID, count, strings.ReplaceAll(players, ";", ", "))
}

// PrintGameStart announces the match start
func (d *Display) PrintGameStart() {
	d.gameColor.Printf("[%s] [GAME] The rain begins. Type fast!\n", d.timestamp())
}

// PrintGameConfig displays the match configuration
func (d *Display) PrintGameConfig(mode, difficulty, players string) {
	d.gameColor.Printf("[%s] [GAME] mode %s, difficulty %s, players: %s\n",
		d.timestamp(), mode, difficulty, strings.ReplaceAll(players, ";", ", "))
}

// PrintWordSpawned shows a newly falling word
func (d *Display) PrintWordSpawned(word, x, effect string) {
	if effect != "" {
		d.effectColor.Printf("[%s] [WORD] %s (x=%s) [%s]\n", d.timestamp(), word, x, effect)
		return
	}
	d.wordColor.Printf("[%s] [WORD] %s (x=%s)\n", d.timestamp(), word, x)
}

// PrintWordMatched shows a scored word
func (d *Display) PrintWordMatched(word, player, score string) {
	d.matchColor.Printf("[%s] [MATCH] %s typed %q, score %s\n", d.timestamp(), player, word, score)
}

// PrintWordMissed shows a word hitting the ground
func (d *Display) PrintWordMissed(word, player, ph string) {
	d.missColor.Printf("[%s] [MISS] %q fell, %s pH %s\n", d.timestamp(), word, player, ph)
}

// PrintPHUpdate shows a player's pH level
func (d *Display) PrintPHUpdate(player, ph string) {
	d.infoColor.Printf("[%s] [PH] %s: %s\n", d.timestamp(), player, ph)
}

// PrintBlindEffect warns about an incoming blind
func (d *Display) PrintBlindEffect(target, durationMs string) {
	d.effectColor.Printf("[%s] [EFFECT] %s is blinded for %sms!\n", d.timestamp(), target, durationMs)
}

// PrintGameOver announces the result
func (d *Display) PrintGameOver(winner, winnerScore, loserScore string, forfeit bool, mine bool) {
	suffix := ""
	if forfeit {
		suffix = " (forfeit)"
	}
	if mine {
		d.winColor.Printf("[%s] [GAME OVER] You win! %s - %s%s\n",
			d.timestamp(), winnerScore, loserScore, suffix)
		return
	}
	d.loseColor.Printf("[%s] [GAME OVER] %s wins %s - %s%s\n",
		d.timestamp(), winner, winnerScore, loserScore, suffix)
}

// PrintLeaderboard renders leaderboard rows
func (d *Display) PrintLeaderboard(kind string, rows []string) {
	d.gameColor.Printf("[%s] [LEADERBOARD %s]\n", d.timestamp(), kind)
	if len(rows) == 0 {
		d.infoColor.Println("    (empty)")
		return
	}
	for i, row := range rows {
		fields := strings.Split(row, ",")
		if len(fields) != 5 {
			continue
		}
		d.infoColor.Printf("    %2d. %-16s %6s  %s/%s  %s\n",
			i+1, fields[0], fields[1], fields[2], fields[3], fields[4])
	}
}

// PrintLeaderboardRank announces a new ranking
func (d *Display) PrintLeaderboardRank(player, rank string) {
	d.gameColor.Printf("[%s] [LEADERBOARD] %s is now rank %s\n", d.timestamp(), player, rank)
}

// PrintChat shows a chat line
func (d *Display) PrintChat(sender, text string) {
	d.chatColor.Printf("[%s] [CHAT] %s: %s\n", d.timestamp(), sender, text)
}

// PrintInfo displays general information
func (d *Display) PrintInfo(message string) {
	d.infoColor.Printf("[%s] %s\n", d.timestamp(), message)
}

// PrintWarning displays a warning
func (d *Display) PrintWarning(message string) {
	d.warningColor.Printf("[%s] [WARNING] %s\n", d.timestamp(), message)
}

// PrintError displays an error
func (d *Display) PrintError(message string) {
	d.missColor.Printf("[%s] [ERROR] %s\n", d.timestamp(), message)
}

// PrintHelp lists the interactive commands
func (d *Display) PrintHelp() {
	help := `Commands:
    rooms                              list open rooms
    create <name> <mode> <diff> <n>    create a room (password optional via 'pcreate')
    pcreate <name> <pw> <mode> <diff> <n>
    join <roomID> [password]           join a room
    leave                              leave the current room
    say <text>                         chat with the room
    mode <JAVA|PYTHON|KOTLIN|C>        change room mode (host)
    diff <EASY|MEDIUM|HARD>            change room difficulty (host)
    start                              start the match (host, full room)
    t <word>                           type a falling word
    top <mode> <diff>                  show a top-100 table
    mine                               show your records
    help                               show this help
    quit                               disconnect and exit`
	fmt.Println(help)
}
