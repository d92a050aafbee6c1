package booking

import (
	"errors"
	"fmt"
	"time"

	"whitelotus/internal/bookingdata"
	"whitelotus/internal/notify"
)

type Booking struct {
	ID           string                `json:"id"`
	ReferenceID  string                `json:"reference_id"`
	ContactEmail string                `json:"contact_email"`
	ContactName  string                `json:"contact_name"`
	Data         *bookingdata.Document `json:"booking_data"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func (b *Booking) clone() *Booking {
	c := *b
	c.Data = b.Data.Clone()
	return &c
}

func (b *Booking) notifyRef() notify.Booking {
	return notify.Booking{ReferenceID: b.ReferenceID, ContactEmail: b.ContactEmail, ContactName: b.ContactName}
}

// Seed is the input for creating a booking row. Bookings are normally created
// by the reservation flow; Create exists for dev tooling and tests.
type Seed struct {
	ReferenceID  string
	ContactEmail string
	ContactName  string
	Data         *bookingdata.Document
}

var ErrNotFound = errors.New("booking not found")

// StorageError wraps a database failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("booking %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
