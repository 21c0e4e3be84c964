// Package ticket renders a printable boarding pass.
package ticket

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Pass holds everything printed on a boarding pass.
type Pass struct {
	BookingID      string
	PassengerName  string
	PassengerPhone string
	From           string
	To             string
	Date           time.Time
	Time           string
	SeatNumber     int
	Price          float64
	Status         string
	QRPNG          []byte
}

func safe(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Render produces an A5 PDF. The QR image is embedded when QRPNG is set.
func Render(p Pass) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Boarding Pass", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOARDING PASS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		"Booking   : " + p.BookingID,
		"Passenger : " + safe(p.PassengerName, "-"),
		"Phone     : " + safe(p.PassengerPhone, "-"),
		fmt.Sprintf("Route     : %s -> %s", safe(p.From, "-"), safe(p.To, "-")),
		fmt.Sprintf("Departure : %s %s", p.Date.Format("2006-01-02"), safe(p.Time, "")),
		fmt.Sprintf("Seat      : %d", p.SeatNumber),
		fmt.Sprintf("Price     : %.2f", p.Price),
		"Status    : " + safe(p.Status, "-"),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	if len(p.QRPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(p.QRPNG))
		pdf.ImageOptions("qr", 40, pdf.GetY()+4, 60, 60, false, opts, 0, "")
		pdf.SetY(pdf.GetY() + 68)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Valid for one passenger and one seat. Show this pass to the driver when boarding.", "", "", false)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build boarding pass: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render boarding pass: %w", err)
	}
	return buf.Bytes(), nil
}
