package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/letsplay-client/internal/booking"
	"github.com/example/letsplay-client/internal/session"
)

type fakeTransport struct {
	mu        sync.Mutex
	published []published
	pubErr    error
	closedCh  chan error
	closes    int
}

type published struct {
	topic string
	body  []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{closedCh: make(chan error, 1)}
}

func (f *fakeTransport) publish(_ context.Context, topic string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, published{topic: topic, body: body})
	return nil
}

func (f *fakeTransport) closeNotify() <-chan error { return f.closedCh }

func (f *fakeTransport) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeTransport) lastPublished(t *testing.T) published {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.published) == 0 {
		t.Fatalf("nothing published")
	}
	return f.published[len(f.published)-1]
}

type fakeHistory struct {
	msgs map[int64][]booking.ChatMessage
}

func (f *fakeHistory) History(_ context.Context, reservationID int64) ([]booking.ChatMessage, error) {
	return f.msgs[reservationID], nil
}

var self = session.Identity{UserID: 1, Name: "Priya", Token: "tok"}

func deliver(t *testing.T, ch chan<- []byte, msg booking.ChatMessage) {
	t.Helper()
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ch <- raw
}

func TestTopic(t *testing.T) {
	t.Parallel()

	if got := Topic(42); got != "booking.42" {
		t.Fatalf("Topic(42) = %q", got)
	}
	if Topic(42) == Topic(43) {
		t.Fatalf("topics must be distinct per reservation")
	}
}

func TestChannel_ReceivesOwnTopicOnly(t *testing.T) {
	t.Parallel()

	deliveries := make(chan []byte, 4)
	c := newChannel(42, self, newFakeTransport(), deliveries, &fakeHistory{})
	defer c.Close()

	// The broker only routes booking.42 here; what arrives is what the
	// subscriber sees, in order.
	deliver(t, deliveries, booking.ChatMessage{SenderID: 2, SenderName: "Arjun", Content: "on my way", BookingID: 42})
	deliver(t, deliveries, booking.ChatMessage{SenderID: 3, SenderName: "Zara", Content: "same", BookingID: 42})

	for i, want := range []string{"on my way", "same"} {
		select {
		case msg := <-c.Messages():
			if msg.Content != want {
				t.Fatalf("message %d = %q, want %q", i, msg.Content, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestChannel_IndependentChannels(t *testing.T) {
	t.Parallel()

	d42 := make(chan []byte, 1)
	d43 := make(chan []byte, 1)
	c42 := newChannel(42, self, newFakeTransport(), d42, &fakeHistory{})
	c43 := newChannel(43, self, newFakeTransport(), d43, &fakeHistory{})
	defer c42.Close()

	deliver(t, d43, booking.ChatMessage{SenderID: 2, Content: "wrong room", BookingID: 43})

	select {
	case msg := <-c42.Messages():
		t.Fatalf("channel 42 received %+v from another reservation", msg)
	case <-time.After(50 * time.Millisecond):
	}

	// closing one channel leaves the other running
	if err := c43.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !c42.Connected() {
		t.Fatalf("closing channel 43 must not touch channel 42")
	}
}

func TestChannel_Send(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	c := newChannel(42, self, tr, make(chan []byte), &fakeHistory{})
	defer c.Close()

	if err := c.Send(context.Background(), "see you at 6"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	p := tr.lastPublished(t)
	if p.topic != "booking.42" {
		t.Fatalf("published to %q", p.topic)
	}
	var msg booking.ChatMessage
	if err := json.Unmarshal(p.body, &msg); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if msg.SenderID != 1 || msg.SenderName != "Priya" || msg.Content != "see you at 6" || msg.BookingID != 42 {
		t.Fatalf("unexpected payload %+v", msg)
	}

	// whitespace-only input publishes nothing
	if err := c.Send(context.Background(), "   "); err != nil {
		t.Fatalf("Send blank: %v", err)
	}
	tr.mu.Lock()
	n := len(tr.published)
	tr.mu.Unlock()
	if n != 1 {
		t.Fatalf("blank message was published")
	}
}

func TestChannel_SendWhileDisconnected(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	c := newChannel(42, self, tr, make(chan []byte), &fakeHistory{})
	defer c.Close()

	tr.closedCh <- errors.New("broker went away")

	deadline := time.Now().Add(2 * time.Second)
	for c.Connected() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.Connected() {
		t.Fatalf("channel still connected after transport drop")
	}

	if err := c.Send(context.Background(), "anyone there?"); !errors.Is(err, ErrChannelDisconnected) {
		t.Fatalf("expected ErrChannelDisconnected, got %v", err)
	}
}

func TestChannel_Close(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	deliveries := make(chan []byte, 1)
	c := newChannel(42, self, tr, deliveries, &fakeHistory{})

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if c.Connected() {
		t.Fatalf("closed channel reports connected")
	}
	if err := c.Send(context.Background(), "late"); !errors.Is(err, ErrChannelDisconnected) {
		t.Fatalf("expected ErrChannelDisconnected after Close, got %v", err)
	}

	// message stream ends
	select {
	case _, ok := <-c.Messages():
		if ok {
			t.Fatalf("unexpected message after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Messages never closed")
	}

	// idempotent
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	tr.mu.Lock()
	closes := tr.closes
	tr.mu.Unlock()
	if closes != 1 {
		t.Fatalf("transport closed %d times", closes)
	}
}

func TestChannel_History(t *testing.T) {
	t.Parallel()

	hist := &fakeHistory{msgs: map[int64][]booking.ChatMessage{
		42: {
			{SenderID: 1, Content: "first"},
			{SenderID: 2, Content: "second"},
		},
	}}
	c := newChannel(42, self, newFakeTransport(), make(chan []byte), hist)
	defer c.Close()

	msgs, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "first" {
		t.Fatalf("unexpected transcript %+v", msgs)
	}
}

func TestChannel_MalformedDeliveryIsDropped(t *testing.T) {
	t.Parallel()

	deliveries := make(chan []byte, 2)
	c := newChannel(42, self, newFakeTransport(), deliveries, &fakeHistory{})
	defer c.Close()

	deliveries <- []byte("{not json")
	deliver(t, deliveries, booking.ChatMessage{SenderID: 2, Content: "still here", BookingID: 42})

	select {
	case msg := <-c.Messages():
		if msg.Content != "still here" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream stalled on a malformed delivery")
	}
}
