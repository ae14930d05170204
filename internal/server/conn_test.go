package server

import (
	"net"
	"strings"
	"testing"
)

func TestTCPConn_ReadWriteLine(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	c := newTCPConn(serverSide)
	defer c.Close()

	go clientSide.Write([]byte("LOGIN|alice\n"))

	got, err := c.ReadLine()
	if err != nil {
		t.Fatal(err)
	}
	if got != "LOGIN|alice" {
		t.Errorf("ReadLine = %q", got)
	}

	done := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := clientSide.Read(buf)
		done <- string(buf[:n])
	}()
	if err := c.WriteLine("PONG"); err != nil {
		t.Fatal(err)
	}
	if got := <-done; got != "PONG\n" {
		t.Errorf("wrote %q, want %q", got, "PONG\n")
	}
}

func TestTCPConn_LongLineSurvives(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	c := newTCPConn(serverSide)
	defer c.Close()

	// Well past the bufio default 64 KiB token limit
	line := "CHAT|R1|" + strings.Repeat("a", 100*1024)
	go clientSide.Write([]byte(line + "\n"))

	got, err := c.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed on a long line: %v", err)
	}
	if got != line {
		t.Errorf("ReadLine returned %d bytes, want %d", len(got), len(line))
	}
}
