// Package chat is the per-reservation messaging channel between the
// participants of one booking. Each opened channel is scoped to a
// single reservation topic and independently closable; transcripts are
// never merged across reservations.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/example/letsplay-client/internal/booking"
	"github.com/example/letsplay-client/internal/session"
)

// ErrChannelDisconnected is returned by Send when the transport is
// down; the message was not delivered and the caller should say so.
var ErrChannelDisconnected = errors.New("chat channel disconnected")

// Topic derives the routing key for one reservation's room. The
// mapping is deterministic so a channel can never observe another
// reservation's traffic.
func Topic(reservationID int64) string {
	return fmt.Sprintf("booking.%d", reservationID)
}

// HistoryFetcher is the REST side of the transcript; in practice the
// gateway client.
type HistoryFetcher interface {
	History(ctx context.Context, reservationID int64) ([]booking.ChatMessage, error)
}

// transport is the broker-facing surface of a channel, split out so
// the channel logic runs against a fake in tests.
type transport interface {
	publish(ctx context.Context, topic string, body []byte) error
	closeNotify() <-chan error
	close() error
}

// Channel is one open conversation. Messages() yields incoming
// messages in arrival order until Close; Send publishes fire-and-
// forget; History re-fetches the authoritative transcript (the only
// gap-free recovery after a disconnect).
type Channel struct {
	reservationID int64
	self          session.Identity
	tr            transport
	history       HistoryFetcher

	msgs chan booking.ChatMessage
	done chan struct{}

	mu        sync.Mutex
	connected bool
	closed    bool
}

func newChannel(reservationID int64, self session.Identity, tr transport, deliveries <-chan []byte, history HistoryFetcher) *Channel {
	c := &Channel{
		reservationID: reservationID,
		self:          self,
		tr:            tr,
		history:       history,
		msgs:          make(chan booking.ChatMessage, 32),
		done:          make(chan struct{}),
		connected:     true,
	}
	go c.pump(deliveries)
	return c
}

func (c *Channel) ReservationID() int64 { return c.reservationID }

// History fetches the transcript oldest-first. Buffered push delivery
// is not replayed after a reconnect; callers wanting a gap-free
// transcript call this again instead.
func (c *Channel) History(ctx context.Context) ([]booking.ChatMessage, error) {
	return c.history.History(ctx, c.reservationID)
}

// Messages is the incoming stream. It is closed when the channel is
// closed or the transport drops; it never restarts.
func (c *Channel) Messages() <-chan booking.ChatMessage {
	return c.msgs
}

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Send publishes one message to the reservation's topic. There is no
// delivery acknowledgment; the only failure surfaced is a channel that
// is known to be down.
func (c *Channel) Send(ctx context.Context, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if !c.Connected() {
		return ErrChannelDisconnected
	}
	msg := booking.ChatMessage{
		SenderID:   c.self.UserID,
		SenderName: c.self.Name,
		Content:    body,
		BookingID:  c.reservationID,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("chat: encode message: %w", err)
	}
	if err := c.tr.publish(ctx, Topic(c.reservationID), payload); err != nil {
		return fmt.Errorf("chat: publish: %w", err)
	}
	return nil
}

// Close releases the subscription on this call. Idempotent.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	close(c.done)
	c.mu.Unlock()
	return c.tr.close()
}

func (c *Channel) setDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *Channel) pump(deliveries <-chan []byte) {
	defer close(c.msgs)
	closed := c.tr.closeNotify()
	for {
		select {
		case <-c.done:
			return
		case err := <-closed:
			if err != nil {
				log.Printf("chat: transport dropped for booking %d: %v", c.reservationID, err)
			}
			c.setDisconnected()
			return
		case raw, ok := <-deliveries:
			if !ok {
				c.setDisconnected()
				return
			}
			var msg booking.ChatMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				log.Printf("chat: dropping malformed message on booking %d: %v", c.reservationID, err)
				continue
			}
			select {
			case c.msgs <- msg:
			case <-c.done:
				return
			}
		}
	}
}
