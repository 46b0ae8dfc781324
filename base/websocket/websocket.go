// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package websocket provides WebSocket connections on both ends,
// with callbacks for received messages and closing.
package websocket

import (
	"net/http"
	"sync"
	"time"

	"cogentcore.org/forcegraph/base/errors"
	"github.com/gorilla/websocket"
)

// MessageTypes are the types of WebSocket messages.
type MessageTypes int

const (
	// TextMessage is a UTF-8 encoded text message like JSON.
	TextMessage MessageTypes = websocket.TextMessage

	// BinaryMessage is a binary data message.
	BinaryMessage MessageTypes = websocket.BinaryMessage

	// CloseMessage is a close control message.
	CloseMessage MessageTypes = websocket.CloseMessage

	// PingMessage is a ping control message.
	PingMessage MessageTypes = websocket.PingMessage

	// PongMessage is a pong control message.
	PongMessage MessageTypes = websocket.PongMessage
)

// WriteTimeout is the deadline for writing one message.
var WriteTimeout = 10 * time.Second

// upgrader accepts connections from any origin.
var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Client represents one end of a WebSocket connection.
// You can use [Connect] to create a new Client to a server,
// and [Accept] to create one in a server handler.
type Client struct {

	// conn is the underlying WebSocket connection.
	conn *websocket.Conn

	// done is a channel that is closed when the connection is closed.
	done chan struct{}

	// writeMu serializes writes, which gorilla connections
	// do not allow concurrently.
	writeMu sync.Mutex

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, done: make(chan struct{})}
}

// Connect connects to a WebSocket server and returns a [Client].
func Connect(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return newClient(conn), nil
}

// Accept upgrades the HTTP server connection of the request to the
// WebSocket protocol and returns a [Client] for it. On failure the
// upgrader has already replied to the request with an HTTP error.
func Accept(w http.ResponseWriter, r *http.Request) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newClient(conn), nil
}

// OnMessage sets a callback function to be called when a message is received.
// This function can only be called once. Reading stops at the first error,
// which is logged unless it is a normal closure, and the connection is
// then closed.
func (c *Client) OnMessage(f func(typ MessageTypes, msg []byte)) {
	go func() {
		for {
			typ, msg, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					errors.Log(err)
				}
				c.release()
				return
			}
			f(MessageTypes(typ), msg)
		}
	}()
}

// Send sends a message to the other end with the given type and message.
func (c *Client) Send(typ MessageTypes, msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.conn.WriteMessage(int(typ), msg)
}

// SendJSON sends the JSON encoding of v as a text message.
func (c *Client) SendJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.conn.WriteJSON(v)
}

// Close cleanly closes the WebSocket connection.
// It does not directly trigger [Client.OnClose], but once the connection
// is closed, [Client.OnMessage] will trigger it.
func (c *Client) Close() error {
	return c.Send(CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// OnClose sets a callback function to be called when the connection is closed.
// This function can only be called once.
func (c *Client) OnClose(f func()) {
	go func() {
		<-c.done
		f()
	}()
}

// Done returns a channel that is closed when the connection is closed.
func (c *Client) Done() <-chan struct{} { return c.done }

// release closes the underlying connection and signals done.
func (c *Client) release() {
	c.closeOnce.Do(func() {
		c.conn.Close()
		close(c.done)
	})
}
