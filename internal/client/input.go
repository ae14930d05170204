// Package client handles user input validation and processing
package client

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// InputHandler manages user input for the game
type InputHandler struct {
	scanner *bufio.Scanner
	display *Display
}

// NewInputHandler creates a new input handler
func NewInputHandler(display *Display) *InputHandler {
	return &InputHandler{
		scanner: bufio.NewScanner(os.Stdin),
		display: display,
	}
}

// GetUsername prompts for and validates username input
func (ih *InputHandler) GetUsername() string {
	for {
		fmt.Print("Enter your username (3-20 characters): ")

		if !ih.scanner.Scan() {
			ih.display.PrintError("Failed to read input")
			continue
		}

		username := strings.TrimSpace(ih.scanner.Text())
		if len(username) < 3 || len(username) > 20 {
			ih.display.PrintWarning("Username must be 3-20 characters")
			continue
		}
		if strings.ContainsAny(username, "|,;") {
			ih.display.PrintWarning("Username must not contain '|', ',' or ';'")
			continue
		}

		return username
	}
}

// ReadCommand reads one command line, returning ok=false on EOF
func (ih *InputHandler) ReadCommand() (string, bool) {
	if !ih.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(ih.scanner.Text()), true
}
