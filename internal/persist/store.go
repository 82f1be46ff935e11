// Package persist mirrors booking-flow state to durable key-value storage.
// Each draft field lives under its own key so a restart can restore whatever
// subset of the flow was populated; there is no cross-key transaction.
package persist

import "context"

// Store is the persistence adapter contract. Restore reports absence rather
// than failing: a missing key and a corrupt value both come back as
// (false, nil), corruption additionally being logged by the implementation.
type Store interface {
	Snapshot(ctx context.Context, key string, value interface{}) error
	Restore(ctx context.Context, key string, dest interface{}) (bool, error)
	Clear(ctx context.Context, keys ...string) error

	// Active-session index, used by the worker sweep.
	AddSession(ctx context.Context, sessionID string) error
	RemoveSession(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)
}

// Draft field names. One snapshot key per field, per session.
const (
	FieldSelectedFlight = "selectedFlight"
	FieldSelectedSeats  = "selectedSeats"
	FieldSeatPrice      = "seatPrice"
	FieldPassengers     = "passengers"
	FieldExtraServices  = "extraServices"
	FieldCurrentBooking = "currentBooking"
	FieldBookingID      = "currentBookingId"
)

// DraftFields lists every persisted draft field, in flow order.
var DraftFields = []string{
	FieldSelectedFlight,
	FieldSelectedSeats,
	FieldSeatPrice,
	FieldPassengers,
	FieldExtraServices,
	FieldCurrentBooking,
	FieldBookingID,
}

// FieldKey builds the storage key for one draft field of one session.
func FieldKey(sessionID, field string) string {
	return "draft:" + sessionID + ":" + field
}

// TokenKey is the separately scoped credential key for a session.
func TokenKey(sessionID string) string {
	return "auth:token:" + sessionID
}

// DraftKeys returns every draft key for a session, token excluded.
func DraftKeys(sessionID string) []string {
	keys := make([]string, 0, len(DraftFields))
	for _, f := range DraftFields {
		keys = append(keys, FieldKey(sessionID, f))
	}
	return keys
}
