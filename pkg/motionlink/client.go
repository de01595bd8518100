package motionlink

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avatarkit/go-vrig/internal/log"
	"github.com/avatarkit/go-vrig/pkg/pipeline"
	"github.com/avatarkit/go-vrig/pkg/vrm"
)

const (
	// writeWait is how long to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds a single motion frame.
	maxMessageSize = 64 * 1024

	// reconnectMin/Max bound the reconnect backoff.
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// Client maintains a websocket connection to a motion relay and applies
// incoming frames to the pipeline as the external source.
type Client struct {
	url  string
	pipe *pipeline.Pipeline

	// writeMu serializes writes: the ping loop and pong replies run on
	// different goroutines and gorilla allows only one writer.
	writeMu sync.Mutex
}

// NewClient creates a client for the given websocket URL.
func NewClient(url string, pipe *pipeline.Pipeline) *Client {
	return &Client{url: url, pipe: pipe}
}

// Run connects and consumes frames until the context is cancelled,
// reconnecting with exponential backoff on failure. The external source is
// attached only while a connection is live.
func (c *Client) Run(ctx context.Context) {
	backoff := reconnectMin
	for {
		if err := c.runOnce(ctx); err != nil {
			log.Warn("motion link disconnected", "url", c.url, "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info("motion link connected", "url", c.url)
	c.pipe.Attach(pipeline.SourceExternal)
	defer c.pipe.Detach(pipeline.SourceExternal)

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go c.pingLoop(conn, done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		msg, err := ParseMessage(payload)
		if err != nil {
			log.Debug("motion link bad message", "err", err)
			continue
		}
		c.apply(conn, msg)
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// apply routes one message into the pipeline.
func (c *Client) apply(conn *websocket.Conn, msg *Message) {
	switch msg.Type {
	case TypeBoneFrame:
		frame, err := msg.GetBoneFrame()
		if err != nil {
			return
		}
		for name, rot := range frame.Bones {
			b, ok := vrm.ParseBone(name)
			if !ok {
				continue
			}
			c.pipe.SubmitExternalBone(b, vrm.Quat{
				X: rot[0], Y: rot[1], Z: rot[2], W: rot[3],
			})
		}

	case TypeBlendFrame:
		frame, err := msg.GetBlendFrame()
		if err != nil {
			return
		}
		for name, v := range frame.Values {
			c.pipe.SubmitExternalExpression(name, v)
		}

	case TypeRootFrame:
		frame, err := msg.GetRootFrame()
		if err != nil {
			return
		}
		c.pipe.SubmitExternalRoot(vrm.Vec3{
			X: frame.Position[0], Y: frame.Position[1], Z: frame.Position[2],
		})

	case TypePing:
		reply, err := NewMessage(TypePong, nil)
		if err != nil {
			return
		}
		payload, err := json.Marshal(reply)
		if err != nil {
			return
		}
		c.writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, payload)
		c.writeMu.Unlock()
	}
}
