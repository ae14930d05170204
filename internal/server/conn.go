package server

import (
	"bufio"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// lineConn is a transport delivering newline-framed UTF-8 text in both
// directions. The TCP listener and the WebSocket gateway both produce
// lineConns, so the rest of the server never cares which one a client
// arrived on.
type lineConn interface {
	// ReadLine blocks for the next line; it returns an error on EOF or
	// any transport failure.
	ReadLine() (string, error)
	// WriteLine sends one line. Safe for concurrent use.
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

// maxLineBytes caps a single protocol line. Lines beyond the cap drop
// the connection; no legitimate command comes close to it.
const maxLineBytes = 1024 * 1024

// tcpConn frames lines over a raw TCP socket
type tcpConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
	writer  *bufio.Writer
	mu      sync.Mutex
}

func newTCPConn(conn net.Conn) *tcpConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &tcpConn{
		conn:    conn,
		scanner: scanner,
		writer:  bufio.NewWriter(conn),
	}
}

func (c *tcpConn) ReadLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", net.ErrClosed
	}
	return c.scanner.Text(), nil
}

func (c *tcpConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

func (c *tcpConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// wsConn frames lines as WebSocket text messages for browser clients
// connecting through the gateway
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) ReadLine() (string, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if msgType == websocket.TextMessage {
			return string(data), nil
		}
	}
}

func (c *wsConn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
