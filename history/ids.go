package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces session and message identifiers.
type IDGenerator interface {
	SessionID() string
	MessageID(at time.Time) string
}

// DefaultIDs generates random UUID session ids and ULID message ids, so
// message ids sort by creation time and carry a random tie-breaker.
type DefaultIDs struct{}

func (DefaultIDs) SessionID() string {
	return uuid.NewString()
}

func (DefaultIDs) MessageID(at time.Time) string {
	id, err := ulid.New(ulid.Timestamp(at), ulid.DefaultEntropy())
	if err != nil {
		// monotonic entropy overflowed within one millisecond
		return ulid.Make().String()
	}
	return id.String()
}
