package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
	"traintrack/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders booking documents as PDF.
type DocsService struct{}

func (s DocsService) GenerateETicket(ctx context.Context, b models.Booking) ([]byte, string, error) {
	if b.IsCancelled() {
		return nil, "", domain.AlreadyCancelledError{BookingID: b.BookingID}
	}
	utils.LogEvent(ctx, "docs", "generate_eticket", "booking_id="+b.BookingID)
	return buildETicketPDF(b)
}

// GenerateInvoice renders the fare breakdown. Cancelled bookings show the refund.
func (s DocsService) GenerateInvoice(ctx context.Context, b models.Booking) ([]byte, string, error) {
	utils.LogEvent(ctx, "docs", "generate_invoice", "booking_id="+b.BookingID)
	return buildInvoicePDF(b)
}

func buildETicketPDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ELECTRONIC RESERVATION SLIP")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("PNR            : %s", safe(b.PNR, "-")),
		fmt.Sprintf("Booking ID     : %s", safe(b.BookingID, "-")),
		fmt.Sprintf("Train          : %s %s", safe(b.Train.TrainNumber, "-"), safe(b.Train.TrainName, "")),
		fmt.Sprintf("From / To      : %s -> %s", safe(b.Train.FromStation, "-"), safe(b.Train.ToStation, "-")),
		fmt.Sprintf("Departure      : %s  Arrival: %s (%s)", safe(b.Train.DepartureTime, "-"), safe(b.Train.ArrivalTime, "-"), safe(b.Train.Duration, "-")),
		fmt.Sprintf("Journey Date   : %s", safe(b.JourneyDate, "-")),
		fmt.Sprintf("Class          : %s", safe(b.ClassCode(), "-")),
		fmt.Sprintf("Status         : %s", safe(string(b.Status), "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(10, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, "Name", "1", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Age", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Gender", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Seat", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Berth", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for i, p := range b.Passengers {
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 7, safe(p.Name, "-"), "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", p.Age), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, safe(p.Gender, "-"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, safe(p.AssignedSeat, "-"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, safe(p.AssignedBerth, "-"), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total Fare: "+utils.FormatRupees(b.TotalFare))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Carry a valid photo identity card during the journey. Cancellation refunds 80% of the total fare.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "could not render e-ticket", Err: err}
	}

	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", utils.SafeFilenamePart(b.PNR), utils.SafeFilenamePart(b.Train.TrainNumber))
	return buf.Bytes(), filename, nil
}

func buildInvoicePDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	invNo := "INV-" + utils.SafeFilenamePart(b.BookingID)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No  : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Booked On   : "+utils.FormatTimestamp(b.BookingDate))
	pdf.Ln(7)
	pdf.Cell(0, 7, "PNR         : "+safe(b.PNR, "-"))
	pdf.Ln(10)

	desc := fmt.Sprintf("Train %s %s -> %s (%s) class %s",
		safe(b.Train.TrainNumber, "-"),
		safe(b.Train.FromStation, "-"), safe(b.Train.ToStation, "-"),
		safe(b.JourneyDate, "-"), safe(b.ClassCode(), "-"),
	)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "1) "+desc, "", "", false)
	pdf.Ln(2)

	pdf.Cell(0, 6, fmt.Sprintf("Fare per passenger: %s x %d", utils.FormatRupees(b.SelectedClass.Price), len(b.Passengers)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatRupees(b.TotalFare))
	pdf.Ln(8)
	if b.IsCancelled() {
		pdf.Cell(0, 8, "Refund: "+utils.FormatRupees(CalculateRefund(b)))
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "could not render invoice", Err: err}
	}

	filename := fmt.Sprintf("INVOICE_%s.pdf", utils.SafeFilenamePart(b.PNR))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
