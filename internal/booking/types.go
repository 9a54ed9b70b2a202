package booking

import "time"

// Venue is a bookable ground from the catalog. The client only ever
// reads venues; all mutation happens through admin surfaces that are
// not part of this tool.
type Venue struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	SportType    string  `json:"sportType"`
	Description  string  `json:"description,omitempty"`
	PricePerHour float64 `json:"pricePerHour"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Owner        Owner   `json:"owner"`
}

type Owner struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusFailed    ReservationStatus = "FAILED"
)

// Terminal reports whether the server will not move the booking to
// another status on its own.
func (s ReservationStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled || s == StatusFailed
}

// Reservation is a claimed time window at a venue as reported by the
// server. The server owns status and occupancy; the client never
// invents transitions beyond what it is told.
type Reservation struct {
	ID            int64             `json:"id"`
	GroundID      int64             `json:"groundId"`
	GroundName    string            `json:"groundName,omitempty"`
	StartTime     time.Time         `json:"startTime"`
	EndTime       time.Time         `json:"endTime"`
	Status        ReservationStatus `json:"status,omitempty"`
	IsPublic      bool              `json:"isPublic"`
	MaxPlayers    int               `json:"maxPlayers"`
	JoinedPlayers int               `json:"joinedPlayers"`
}

func (r Reservation) Window() TimeWindow {
	return TimeWindow{Start: r.StartTime, End: r.EndTime}
}

// Joinable reports whether a player could take a spot in this
// reservation: public visibility with seats left. Zero counts from the
// server are read as 1 (the creator always occupies one spot, and a
// private booking has capacity 1).
func (r Reservation) Joinable() bool {
	if !r.IsPublic {
		return false
	}
	max := r.MaxPlayers
	if max < 1 {
		max = 1
	}
	joined := r.JoinedPlayers
	if joined < 1 {
		joined = 1
	}
	return joined < max
}

// FilterJoinable keeps the reservations a player can actually join from
// the cross-venue public list: public, confirmed, seats left. The
// server is expected to pre-filter but is not trusted to.
func FilterJoinable(rs []Reservation) []Reservation {
	var out []Reservation
	for _, r := range rs {
		if r.Status == StatusConfirmed && r.Joinable() {
			out = append(out, r)
		}
	}
	return out
}

// ChatMessage is one entry in a reservation's transcript. Transcript
// order is client insertion order; Timestamp comes from the server
// without a zone and is advisory only, so it stays a plain string.
type ChatMessage struct {
	ID         int64  `json:"id,omitempty"`
	SenderID   int64  `json:"senderId"`
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
	BookingID  int64  `json:"bookingId"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// Notification is a join-request or booking notice for the current
// user, fetched from the notifications endpoint.
type Notification struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	BookingID int64  `json:"bookingId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}
