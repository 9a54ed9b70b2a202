// Package workflow drives a reservation from user intent to a terminal
// outcome: create-or-join, then PENDING until the server confirms or
// rejects. The server is the sole arbiter of conflicting writes; the
// client only observes, and its one defense against races is the
// Conflict path, which asks the caller to re-classify rather than
// retry blindly.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/letsplay-client/internal/booking"
	"github.com/example/letsplay-client/internal/gateway"
)

type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseSubmitting Phase = "SUBMITTING"
	PhasePending    Phase = "PENDING"
	PhaseConfirmed  Phase = "CONFIRMED"
	PhaseFailed     Phase = "FAILED"
)

// FailureKind separates the three stories a failed submission can
// tell the user: the slot was taken, the server rejected the booking,
// or tracking broke and the outcome is unknown.
type FailureKind string

const (
	FailureNone         FailureKind = ""
	FailureConflict     FailureKind = "CONFLICT"
	FailureRejected     FailureKind = "REJECTED"
	FailureTrackingLost FailureKind = "TRACKING_LOST"
)

// Status is a point-in-time snapshot of the workflow.
type Status struct {
	Phase         Phase
	ReservationID int64
	Failure       FailureKind
	Reason        string
}

func (s Status) Terminal() bool {
	return s.Phase == PhaseConfirmed || s.Phase == PhaseFailed
}

// Intent is what the caller decided from the slot classification:
// AVAILABLE slots create, JOINABLE slots join. BOOKED slots never
// reach this package.
type Intent interface{ isIntent() }

type CreateIntent struct {
	VenueID    int64
	Window     booking.TimeWindow
	Public     bool
	MaxPlayers int
}

type JoinIntent struct {
	ReservationID int64
}

func (CreateIntent) isIntent() {}
func (JoinIntent) isIntent()   {}

// Gateway is the slice of the booking API the workflow needs.
type Gateway interface {
	Create(ctx context.Context, venueID int64, w booking.TimeWindow, isPublic bool, maxPlayers int) (booking.Reservation, error)
	Join(ctx context.Context, reservationID int64) (booking.Reservation, error)
	Fetch(ctx context.Context, reservationID int64) (booking.Reservation, error)
}

// ErrBusy rejects a second submit while one is in flight; two racing
// submissions for the same slot would confuse both the UI and the user.
var ErrBusy = errors.New("a submission is already in flight")

const defaultPollInterval = 2 * time.Second

type Workflow struct {
	gw           Gateway
	pollInterval time.Duration

	mu      sync.Mutex
	status  Status
	cancel  context.CancelFunc
	gen     int
	updates chan Status
}

type Option func(*Workflow)

// WithPollInterval overrides the fixed poll spacing; tests use it.
func WithPollInterval(d time.Duration) Option {
	return func(w *Workflow) { w.pollInterval = d }
}

func New(gw Gateway, opts ...Option) *Workflow {
	w := &Workflow{
		gw:           gw,
		pollInterval: defaultPollInterval,
		status:       Status{Phase: PhaseIdle},
		updates:      make(chan Status, 16),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Status returns the current snapshot.
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Updates yields status snapshots as they happen. The channel is
// buffered and lossy under a slow reader; Status() is always current.
func (w *Workflow) Updates() <-chan Status {
	return w.updates
}

// Submit starts a create or join. Rejected with ErrBusy unless the
// workflow is Idle; after a terminal outcome the caller resets with
// Cancel before resubmitting.
func (w *Workflow) Submit(ctx context.Context, intent Intent) error {
	w.mu.Lock()
	if w.status.Phase != PhaseIdle {
		w.mu.Unlock()
		return ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.gen++
	gen := w.gen
	w.setLocked(gen, Status{Phase: PhaseSubmitting})
	w.mu.Unlock()

	go w.run(runCtx, gen, intent)
	return nil
}

// Cancel disengages: the poll timer is released on this call and no
// event from the abandoned attempt will be observed afterwards. It is
// client-local only; a reservation already accepted server-side stays
// accepted.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.gen++ // anything still in flight becomes stale
	w.status = Status{Phase: PhaseIdle}
}

func (w *Workflow) run(ctx context.Context, gen int, intent Intent) {
	var res booking.Reservation
	var err error
	switch it := intent.(type) {
	case CreateIntent:
		res, err = w.gw.Create(ctx, it.VenueID, it.Window, it.Public, it.MaxPlayers)
	case JoinIntent:
		res, err = w.gw.Join(ctx, it.ReservationID)
	default:
		err = fmt.Errorf("unknown intent %T", intent)
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		kind, reason := describeFailure(err)
		w.set(gen, Status{Phase: PhaseFailed, Failure: kind, Reason: reason})
		return
	}

	// Join is synchronous-confirm: a join success means a seat in an
	// already-confirmed game, so only an explicit PENDING from the
	// server sends it through the poll loop.
	_, isJoin := intent.(JoinIntent)

	switch {
	case res.Status == booking.StatusConfirmed, isJoin && res.Status != booking.StatusPending && !res.Status.Terminal():
		w.set(gen, Status{Phase: PhaseConfirmed, ReservationID: res.ID})
	case res.Status == booking.StatusFailed, res.Status == booking.StatusCancelled:
		w.set(gen, Status{
			Phase: PhaseFailed, ReservationID: res.ID,
			Failure: FailureRejected, Reason: rejectedReason(res.Status),
		})
	default:
		// PENDING, or a create with no status yet: track it.
		w.set(gen, Status{Phase: PhasePending, ReservationID: res.ID})
		w.poll(ctx, gen, res.ID)
	}
}

// poll re-fetches the reservation every pollInterval until a terminal
// status. Single-flight: the timer is re-armed only after the previous
// fetch resolves, so a slow server never stacks requests. One transport
// failure ends tracking with an uncertain outcome; retrying forever
// would leak timers and leave the user guessing whether they were
// charged.
func (w *Workflow) poll(ctx context.Context, gen int, reservationID int64) {
	t := time.NewTimer(w.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		res, err := w.gw.Fetch(ctx, reservationID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.set(gen, Status{
				Phase: PhaseFailed, ReservationID: reservationID,
				Failure: FailureTrackingLost,
				Reason:  "lost track of the booking; check My Bookings before retrying",
			})
			return
		}

		switch res.Status {
		case booking.StatusConfirmed:
			w.set(gen, Status{Phase: PhaseConfirmed, ReservationID: reservationID})
			return
		case booking.StatusFailed, booking.StatusCancelled:
			w.set(gen, Status{
				Phase: PhaseFailed, ReservationID: reservationID,
				Failure: FailureRejected, Reason: rejectedReason(res.Status),
			})
			return
		default:
			t.Reset(w.pollInterval)
		}
	}
}

func (w *Workflow) set(gen int, s Status) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setLocked(gen, s)
}

func (w *Workflow) setLocked(gen int, s Status) {
	if gen != w.gen {
		// a Cancel superseded this attempt
		return
	}
	w.status = s
	select {
	case w.updates <- s:
	default:
	}
}

func describeFailure(err error) (FailureKind, string) {
	switch {
	case errors.Is(err, gateway.ErrConflict):
		return FailureConflict, "slot no longer available"
	case errors.Is(err, gateway.ErrUnauthenticated):
		return FailureRejected, "not signed in"
	case errors.Is(err, booking.ErrInvalidWindow):
		return FailureRejected, err.Error()
	case errors.Is(err, gateway.ErrUnreachable):
		return FailureRejected, "could not reach the booking service"
	default:
		return FailureRejected, err.Error()
	}
}

func rejectedReason(s booking.ReservationStatus) string {
	if s == booking.StatusCancelled {
		return "booking was cancelled"
	}
	return "payment or confirmation failed"
}
