package ticket

import (
	"bytes"
	"testing"
	"time"

	"bus-booking/pkg/qrcode"
)

func TestRenderProducesPDF(t *testing.T) {
	png, err := qrcode.PNG(`{"bookingId":"b1","tripId":"t1","passengerName":"Ali","seatNumber":1}`)
	if err != nil {
		t.Fatalf("qr png: %v", err)
	}

	out, err := Render(Pass{
		BookingID:     "b1",
		PassengerName: "Ali",
		From:          "Kabul",
		To:            "Herat",
		Date:          time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Time:          "08:30",
		SeatNumber:    1,
		Price:         25,
		Status:        "confirmed",
		QRPNG:         png,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderWithoutQR(t *testing.T) {
	out, err := Render(Pass{BookingID: "b2", SeatNumber: 4})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty pdf")
	}
}
