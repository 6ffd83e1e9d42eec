package sink

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"log/slog"
	"sync"
	"time"
)

// FrameWriter is the part of a websocket connection the sink writes to.
type FrameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
	Close() error
}

// WebSocketSink is the Connection handed to the registry for one websocket client.
// Send only enqueues: a single WriteLoop goroutine owns the socket writes.
type WebSocketSink struct {
	id           string
	conn         FrameWriter
	frames       chan event.Outbound
	done         chan struct{}
	once         sync.Once
	writeTimeout time.Duration
	log          *slog.Logger
}

func NewWebSocketSink(id string, conn FrameWriter, bufferSize int,
	writeTimeout time.Duration, log *slog.Logger) *WebSocketSink {
	return &WebSocketSink{
		id:           id,
		conn:         conn,
		frames:       make(chan event.Outbound, bufferSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		log:          log,
	}
}

func (s *WebSocketSink) ID() string {
	return s.id
}

// Send never blocks. A full buffer drops the frame.
func (s *WebSocketSink) Send(frame event.Outbound) error {
	select {
	case <-s.done:
		return errors.ErrConnectionClosed
	default:
	}
	select {
	case s.frames <- frame:
		return nil
	case <-s.done:
		return errors.ErrConnectionClosed
	default:
		return errors.ErrBackpressure
	}
}

// WriteLoop drains the buffer into the socket until the sink is closed or the context ends.
// A failed write closes the sink.
func (s *WebSocketSink) WriteLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case frame := <-s.frames:
			if err := s.write(frame); err != nil {
				s.log.Debug("Write failed, closing connection", "connection_id", s.id, "error", err)
				s.Close()
				return
			}
		}
	}
}

func (s *WebSocketSink) write(frame event.Outbound) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(frame)
}

// Close is idempotent.
func (s *WebSocketSink) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// Done is closed once the sink is closed.
func (s *WebSocketSink) Done() <-chan struct{} {
	return s.done
}
