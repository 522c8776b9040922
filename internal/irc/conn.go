package irc

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 6144
)

// Conn is a line-oriented IRC connection over a websocket transport.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
	closed  bool
}

// Dial opens a websocket connection to the given chat endpoint, e.g.
// "wss://irc-ws.chat.twitch.tv:443".
func Dial(ctx context.Context, addr string) (*Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	ws, _, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("irc: dial %s: %w", addr, err)
	}
	ws.SetReadLimit(maxMessageSize)
	return &Conn{ws: ws}, nil
}

// ReadLines starts the reader pump. It returns a channel of raw protocol
// lines and a channel that carries the terminal read error. A single
// websocket frame may carry several CRLF-separated lines; each is delivered
// separately. Both channels close when the pump stops.
func (c *Conn) ReadLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)
		defer close(errs)
		for {
			_, payload, err := c.ws.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("irc: read: %w", err)
				return
			}
			for _, line := range strings.Split(string(payload), "\r\n") {
				if line == "" {
					continue
				}
				select {
				case lines <- line:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return lines, errs
}

// WriteLine sends one protocol line. The CRLF terminator is appended here.
func (c *Conn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return fmt.Errorf("irc: write on closed connection")
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(line+"\r\n")); err != nil {
		return fmt.Errorf("irc: write: %w", err)
	}
	return nil
}

func (c *Conn) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	deadline := time.Now().Add(time.Second)
	if err := c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline); err != nil && err != websocket.ErrCloseSent {
		log.Printf("irc: close handshake: %v", err)
	}
	return c.ws.Close()
}
