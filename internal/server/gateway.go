package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients may come from any origin; the protocol carries no
	// cookies or ambient credentials, so cross-origin upgrades are safe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSGateway exposes the line protocol over WebSocket for browser clients.
// Each upgraded connection joins the same session registry as a TCP
// client; the rest of the server cannot tell them apart.
type WSGateway struct {
	addr   string
	server *Server
	log    *logger.Logger
	http   *http.Server
}

// NewWSGateway prepares a gateway listening on addr, feeding the given
// registry
func NewWSGateway(addr string, server *Server) *WSGateway {
	return &WSGateway{
		addr:   addr,
		server: server,
		log:    logger.Server,
	}
}

// Start serves WebSocket upgrades on /ws and blocks until Stop
func (g *WSGateway) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleUpgrade)

	g.http = &http.Server{Addr: g.addr, Handler: mux}
	g.log.Info("WebSocket gateway listening on %s", g.addr)

	if err := g.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("websocket gateway failed: %w", err)
	}
	return nil
}

// Stop closes the HTTP listener. Established WebSocket sessions end
// through the registry's own shutdown.
func (g *WSGateway) Stop() {
	if g.http != nil {
		g.http.Close()
	}
}

func (g *WSGateway) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("WebSocket upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}
	go g.server.serveConn(newWSConn(conn))
}
