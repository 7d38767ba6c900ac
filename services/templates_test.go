package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/models"
)

func TestFlexibleIDAcceptsStringOrNumber(t *testing.T) {
	var body struct {
		A FlexibleID `json:"a"`
		B FlexibleID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"R12","b":42}`), &body))
	assert.Equal(t, FlexibleID("R12"), body.A)
	assert.Equal(t, "42", body.B.String())

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &body))
}

func TestBookingConfirmationValidateInfersType(t *testing.T) {
	p := BookingConfirmationPayload{OrderID: "7", CustomerName: "Asha", CustomerEmail: "asha@example.com", ReservationDate: "2026-05-01"}
	require.NoError(t, p.Validate())
	assert.Equal(t, BookingTypeReservation, p.BookingType)

	p = BookingConfirmationPayload{OrderID: "7", CustomerName: "Asha", CustomerEmail: "asha@example.com"}
	require.NoError(t, p.Validate())
	assert.Equal(t, BookingTypeOrder, p.BookingType)
}

func TestPayloadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{ Validate() error }
	}{
		{"missing id", &BookingConfirmationPayload{CustomerName: "A", CustomerEmail: "a@b.com"}},
		{"missing name", &CancellationPayload{OrderID: "1", CustomerEmail: "a@b.com"}},
		{"bad email", &CancellationPayload{OrderID: "1", CustomerName: "A", CustomerEmail: "nope"}},
		{"bad status", &BookingConfirmationPayload{OrderID: "1", CustomerName: "A", CustomerEmail: "a@b.com", PaymentStatus: "refunded"}},
		{"negative refund", &CancellationPayload{OrderID: "1", CustomerName: "A", CustomerEmail: "a@b.com", RefundAmount: -1}},
		{"no items", &PaymentLinkPayload{OrderID: "1", CustomerName: "A", CustomerEmail: "a@b.com"}},
		{"zero quantity", &PaymentLinkPayload{OrderID: "1", CustomerName: "A", CustomerEmail: "a@b.com", Items: []EmailItem{{Name: "x", Quantity: 0, Price: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.payload.Validate(), ErrInvalidPayload)
		})
	}
}

func TestPaymentLinkItemsTotal(t *testing.T) {
	p := PaymentLinkPayload{Items: []EmailItem{{Name: "a", Quantity: 3, Price: 1.1}, {Name: "b", Quantity: 1, Price: 2}}}
	assert.Equal(t, 5.3, p.ItemsTotal())
}

func TestRenderReservationConfirmationWithDeposit(t *testing.T) {
	r := NewEmailRenderer("₹")
	subject, html, err := r.BookingConfirmation(BookingConfirmationPayload{
		BookingType:     BookingTypeReservation,
		OrderID:         "15",
		CustomerName:    "Ravi",
		CustomerEmail:   "ravi@example.com",
		TotalAmount:     1000,
		DepositAmount:   350,
		RemainingAmount: 650,
		PaymentStatus:   models.PaymentStatusPartial,
		ReservationDate: "2026-05-01",
		ReservationTime: "19:30",
		PartySize:       4,
		TableNumber:     3,
		Items:           []EmailItem{{Name: "Biryani", Quantity: 2, Price: 500}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Reservation Confirmed - #15", subject)
	assert.Contains(t, html, "Deposit Paid: ₹350.00")
	assert.Contains(t, html, "Remaining Balance (due on arrival): ₹650.00")
	assert.Contains(t, html, "Table: <strong>3</strong>")
	assert.Contains(t, html, "₹1,000.00")
}

func TestRenderOrderConfirmation(t *testing.T) {
	r := NewEmailRenderer("$")
	subject, html, err := r.BookingConfirmation(BookingConfirmationPayload{
		BookingType:  BookingTypeOrder,
		OrderID:      "9",
		CustomerName: "<script>x</script>",
		TotalAmount:  45,
		AsapCharge:   5,
		OrderType:    models.OrderTypePickup,
		PickupTime:   AsapPickupTime,
	})
	require.NoError(t, err)

	assert.Equal(t, "Order Confirmed - #9", subject)
	assert.Contains(t, html, "ASAP Charge: $5.00")
	assert.Contains(t, html, "Amount Due: $45.00")
	assert.NotContains(t, html, "<script>x</script>")
	assert.NotContains(t, html, "Deposit Paid")
}

func TestRenderCancellationAndPaymentLink(t *testing.T) {
	r := NewEmailRenderer("₹")

	subject, html, err := r.Cancellation(CancellationPayload{
		BookingType: BookingTypeReservation, OrderID: "3", CustomerName: "A",
		Reason: "Kitchen closed", RefundAmount: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, "Booking Cancelled - #3", subject)
	assert.Contains(t, html, "Reason: Kitchen closed")
	assert.Contains(t, html, "Refund Amount: ₹200.00")

	subject, html, err = r.PaymentLink(PaymentLinkPayload{OrderID: "4", CustomerName: "A", TotalAmount: 99}, "https://pay.test/cs_1")
	require.NoError(t, err)
	assert.Equal(t, "Complete your payment - Order #4", subject)
	assert.Contains(t, html, `href="https://pay.test/cs_1"`)

	subject, html, err = r.PasswordReset("https://site/reset-password?token=abc")
	require.NoError(t, err)
	assert.Equal(t, "Reset your password", subject)
	assert.Contains(t, html, "reset-password?token=abc")
}

func TestConfirmationFromReservation(t *testing.T) {
	p := ConfirmationFromReservation(models.Reservation{
		ID: 8, CustomerName: "Z", PaymentStatus: models.PaymentStatusPartial,
		ReservationDate: "2026-05-01", Table: &models.Table{TableNumber: 12},
		Items: []models.ReservationItem{{Name: "Tea", Quantity: 1, Price: 20}},
	})
	assert.Equal(t, FlexibleID("8"), p.OrderID)
	assert.Equal(t, BookingTypeReservation, p.BookingType)
	assert.Equal(t, 12, p.TableNumber)
	assert.Len(t, p.Items, 1)
}
