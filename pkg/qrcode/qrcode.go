// Package qrcode builds the boarding payload stored with each booking and
// renders it as a scannable image.
package qrcode

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	goqr "github.com/skip2/go-qrcode"
)

const imageSize = 256

var ErrMalformedPayload = errors.New("malformed qr payload")

type Payload struct {
	BookingID     uuid.UUID `json:"bookingId"`
	TripID        uuid.UUID `json:"tripId"`
	PassengerName string    `json:"passengerName"`
	SeatNumber    int       `json:"seatNumber"`
}

// NewPayload is the single place a boarding payload is constructed.
func NewPayload(bookingID, tripID uuid.UUID, passengerName string, seatNumber int) Payload {
	return Payload{
		BookingID:     bookingID,
		TripID:        tripID,
		PassengerName: passengerName,
		SeatNumber:    seatNumber,
	}
}

// Encode returns the canonical text form that is stored and printed.
func (p Payload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	return string(b), nil
}

// Matches compares the fields that identify a boarding: booking, trip and seat.
func (p Payload) Matches(other Payload) bool {
	return p.BookingID == other.BookingID &&
		p.TripID == other.TripID &&
		p.SeatNumber == other.SeatNumber
}

func Decode(text string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.BookingID == uuid.Nil || p.TripID == uuid.Nil || p.SeatNumber < 1 {
		return Payload{}, ErrMalformedPayload
	}
	return p, nil
}

// PNG renders text as a QR image.
func PNG(text string) ([]byte, error) {
	png, err := goqr.Encode(text, goqr.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

// DataURL renders text as a base64 PNG data URL for JSON responses.
func DataURL(text string) (string, error) {
	png, err := PNG(text)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
