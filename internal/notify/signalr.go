package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
)

// SignalR JSON hub protocol framing.
const (
	recordSeparator = 0x1e

	messageInvocation = 1
	messagePing       = 6
	messageClose      = 7

	NotificationTarget = "ReceiveNotification"
	SourceSignalR      = "signalr"

	defaultPingInterval = 15 * time.Second
	defaultHandshake    = 10 * time.Second
)

var (
	ErrHandshakeRejected = errors.New("signalr handshake rejected")
	ErrHubClosed         = errors.New("signalr hub closed the connection")
)

type hubMessage struct {
	Type      int               `json:"type"`
	Target    string            `json:"target,omitempty"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Conn abstracts the websocket connection for tests.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a hub connection.
type Dialer func(ctx context.Context, rawURL string) (Conn, error)

func gorillaDialer(ctx context.Context, rawURL string) (Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// SignalRSource connects to the notification hub with the JSON protocol over
// websockets, skipping negotiation.
type SignalRSource struct {
	hubURL       string
	dial         Dialer
	pingInterval time.Duration
	log          *logger.Logger
	now          func() time.Time
}

func NewSignalRSource(hubURL string, log *logger.Logger) *SignalRSource {
	return &SignalRSource{
		hubURL:       hubURL,
		dial:         gorillaDialer,
		pingInterval: defaultPingInterval,
		log:          log,
		now:          time.Now,
	}
}

// HubURL is the connection URL for sub: the hub plus userId and role.
func (s *SignalRSource) HubURL(sub Subscriber) (string, error) {
	u, err := url.Parse(s.hubURL)
	if err != nil {
		return "", fmt.Errorf("invalid notification url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("userId", sub.UserID)
	q.Set("role", sub.Role.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *SignalRSource) Listen(ctx context.Context, sub Subscriber, deliver func(model.Notification)) error {
	target, err := s.HubURL(sub)
	if err != nil {
		return err
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, defaultHandshake)
	conn, err := s.dial(dialCtx, target)
	cancelDial()
	if err != nil {
		return fmt.Errorf("failed to connect to notification hub: %w", err)
	}

	var (
		writeMu sync.Mutex
		done    = make(chan struct{})
		wg      sync.WaitGroup
	)
	write := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, append(data, recordSeparator))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		_ = conn.Close()
		wg.Wait()
	}()

	if err := write(map[string]any{"protocol": "json", "version": 1}); err != nil {
		return fmt.Errorf("failed to send handshake: %w", err)
	}
	if err := s.readHandshake(conn); err != nil {
		return err
	}

	s.log.Info("Connected to notification hub", "user_id", sub.UserID, "role", sub.Role.String())

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := write(hubMessage{Type: messagePing}); err != nil {
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("notification hub read failed: %w", err)
		}

		for _, frame := range splitFrames(data) {
			var msg hubMessage
			if err := json.Unmarshal(frame, &msg); err != nil {
				s.log.Warn("Ignoring malformed hub frame", "error", err)
				continue
			}

			switch msg.Type {
			case messageInvocation:
				if msg.Target != NotificationTarget || len(msg.Arguments) == 0 {
					continue
				}
				deliver(model.Notification{
					Message:  argumentText(msg.Arguments[0]),
					Source:   SourceSignalR,
					Received: s.now().Unix(),
				})
			case messagePing:
				// server keep-alive
			case messageClose:
				if msg.Error != "" {
					return fmt.Errorf("%w: %s", ErrHubClosed, msg.Error)
				}
				return ErrHubClosed
			}
		}
	}
}

func (s *SignalRSource) readHandshake(conn Conn) error {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read handshake: %w", err)
	}
	frames := splitFrames(data)
	if len(frames) == 0 {
		return ErrHandshakeRejected
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(frames[0], &resp); err != nil {
		return fmt.Errorf("%w: %v", ErrHandshakeRejected, err)
	}
	if resp.Error != "" {
		return fmt.Errorf("%w: %s", ErrHandshakeRejected, resp.Error)
	}
	return nil
}

func splitFrames(data []byte) [][]byte {
	var frames [][]byte
	for _, part := range bytes.Split(data, []byte{recordSeparator}) {
		if len(bytes.TrimSpace(part)) > 0 {
			frames = append(frames, part)
		}
	}
	return frames
}

// argumentText renders a hub argument as text; strings are unquoted.
func argumentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
