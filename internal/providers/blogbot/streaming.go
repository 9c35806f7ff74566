package blogbot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blogchat/internal/domain"
	"blogchat/internal/ports"
)

// Config controls how the blog chat backend is reached.
type Config struct {
	BaseURL          string
	StreamPath       string
	AskPath          string
	HealthPath       string
	EventBuffer      int
	HandshakeTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8005"
	}
	if c.StreamPath == "" {
		c.StreamPath = "/ws/chat"
	}
	if c.AskPath == "" {
		c.AskPath = "/api/chat"
	}
	if c.HealthPath == "" {
		c.HealthPath = "/api/health"
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	return c
}

// Dialer implements ports.StreamDialer for the blog chat websocket.
type Dialer struct {
	cfg Config
}

func NewDialer(cfg Config) *Dialer {
	return &Dialer{cfg: cfg.withDefaults()}
}

// Dial opens a fresh websocket stream. Every call creates a new instance;
// a stream that has been closed is never revived.
func (d *Dialer) Dial(ctx context.Context) (ports.ChatStream, error) {
	wsURL, err := buildStreamURL(d.cfg)
	if err != nil {
		return nil, err
	}

	wsDialer := websocket.Dialer{HandshakeTimeout: d.cfg.HandshakeTimeout}
	conn, _, err := wsDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chat websocket: %w", err)
	}

	stream := &chatStream{
		conn:    conn,
		events:  make(chan domain.StreamEvent, d.cfg.EventBuffer),
		queries: make(chan string, 8),
		done:    make(chan struct{}),
	}

	stream.wg.Add(2)
	go stream.readLoop()
	go stream.writeLoop()
	go func() {
		stream.wg.Wait()
		close(stream.events)
		close(stream.done)
		_ = conn.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = stream.Close()
	}()

	return stream, nil
}

type chatStream struct {
	conn *websocket.Conn

	events  chan domain.StreamEvent
	queries chan string
	done    chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	closeSendOnce sync.Once
	closeOnce     sync.Once
	sendMu        sync.RWMutex
	sendClosed    bool
}

// Send queues one user query for transmission. It never blocks on the
// network; the write loop owns the socket.
func (s *chatStream) Send(text string) error {
	s.sendMu.RLock()
	closed := s.sendClosed
	s.sendMu.RUnlock()
	if closed {
		return errors.New("chat stream is already closed")
	}

	select {
	case s.queries <- text:
		return nil
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return errors.New("chat stream closed")
	}
}

func (s *chatStream) Events() <-chan domain.StreamEvent {
	return s.events
}

func (s *chatStream) Wait() error {
	<-s.done
	return s.waitErr()
}

func (s *chatStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeSend()
		_ = s.conn.Close()
	})
	<-s.done
	return s.waitErr()
}

func (s *chatStream) closeSend() {
	s.closeSendOnce.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		close(s.queries)
		s.sendMu.Unlock()
	})
}

func (s *chatStream) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *chatStream) setErr(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *chatStream) writeLoop() {
	defer s.wg.Done()

	for query := range s.queries {
		payload, err := encodeQuery(query)
		if err != nil {
			s.setErr(err)
			return
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.setErr(fmt.Errorf("failed to send query: %w", err))
			return
		}
	}

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteMessage(websocket.CloseMessage, message)
}

func (s *chatStream) readLoop() {
	defer s.wg.Done()
	// Unblock the write loop once the socket stops producing.
	defer s.closeSend()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read chat frame: %w", err))
			return
		}

		event, err := decodeFrame(payload)
		if err != nil {
			// Malformed frames are recovered locally: the reducer only
			// sees a signal that clears the awaiting flag.
			s.emit(domain.StreamEvent{Kind: domain.EventKindRecovery, Text: err.Error()})
			continue
		}
		s.emit(event)
	}
}

func (s *chatStream) emit(event domain.StreamEvent) {
	select {
	case s.events <- event:
	case <-s.done:
	}
}

func buildStreamURL(cfg Config) (string, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	path := cfg.StreamPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	streamURL, err := url.Parse(base + path)
	if err != nil {
		return "", fmt.Errorf("invalid chat base URL: %w", err)
	}
	if streamURL.Scheme != "ws" && streamURL.Scheme != "wss" {
		return "", fmt.Errorf("unsupported chat URL scheme %q", streamURL.Scheme)
	}
	return streamURL.String(), nil
}
