package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
)

func docBooking() models.Booking {
	return models.Booking{
		BookingID:     "booking_123456",
		PNR:           "123-4567890",
		UserID:        "user_000001",
		Train:         rajdhani(45),
		SelectedClass: models.SelectedClass{Class: "3A", Price: 2500},
		JourneyDate:   "2026-11-01",
		TotalFare:     5000,
		BookingDate:   time.Now().UTC(),
		Status:        domain.BookingConfirmed,
		Passengers: []models.Passenger{
			{Name: "Tester", Age: 30, Gender: "M", AssignedSeat: "B3-17", AssignedBerth: "Lower"},
			{Name: "Tester Two", Age: 28, Gender: "F", AssignedSeat: "B3-18", AssignedBerth: "Middle"},
		},
	}
}

func TestDocsServiceGenerate(t *testing.T) {
	svc := DocsService{}
	ctx := context.Background()

	pdf, filename, err := svc.GenerateETicket(ctx, docBooking())
	if err != nil {
		t.Fatalf("GenerateETicket returned error: %v", err)
	}
	if len(pdf) == 0 || filename == "" {
		t.Fatalf("GenerateETicket returned empty data")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("GenerateETicket did not return a PDF")
	}
	if filename != "ETICKET_123-4567890_12951.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}

	invoice, invName, err := svc.GenerateInvoice(ctx, docBooking())
	if err != nil {
		t.Fatalf("GenerateInvoice returned error: %v", err)
	}
	if len(invoice) == 0 || invName == "" {
		t.Fatalf("GenerateInvoice returned empty data")
	}
}

func TestDocsServiceRejectsCancelledTicket(t *testing.T) {
	b := docBooking()
	b.Status = domain.BookingCancelled

	if _, _, err := (DocsService{}).GenerateETicket(context.Background(), b); !domain.IsAlreadyCancelled(err) {
		t.Fatalf("expected already cancelled error, got %v", err)
	}
	if _, _, err := (DocsService{}).GenerateInvoice(context.Background(), b); err != nil {
		t.Fatalf("invoice for cancelled booking: %v", err)
	}
}
