// README: Session booking aggregate, payment details and status definitions.
package booking

import (
	"time"

	"carrental/internal/modules/quote"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// AllowedTransitions is the booking state diagram as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	MethodPromptPay PaymentMethod = "promptpay"
	MethodCard      PaymentMethod = "card"
	MethodTransfer  PaymentMethod = "transfer"
)

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type Payment struct {
	Method  PaymentMethod `json:"method"`
	SlipRef string        `json:"slipRef,omitempty"`
	Payer   Customer      `json:"payer"`
	PaidAt  time.Time     `json:"paidAt"`
}

type Booking struct {
	ID            string       `json:"id"`
	SessionID     string       `json:"-"`
	Status        Status       `json:"status"`
	StatusVersion int          `json:"statusVersion"`
	VehicleID     string       `json:"vehicleId"`
	VehicleName   string       `json:"vehicleName"`
	Customer      Customer     `json:"customer"`
	Window        quote.Window `json:"window"`
	PickupDate    string       `json:"pickupDate"`
	PickupTime    string       `json:"pickupTime"`
	ReturnDate    string       `json:"returnDate"`
	ReturnTime    string       `json:"returnTime"`
	PickupPoint   string       `json:"pickupPoint"`
	ReturnPoint   string       `json:"returnPoint"`
	Addons        []string     `json:"addons"`
	Quote         quote.Quote  `json:"quote"`
	Payment       *Payment     `json:"payment,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	ConfirmedAt   *time.Time   `json:"confirmedAt,omitempty"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty"`
	CancelledAt   *time.Time   `json:"cancelledAt,omitempty"`
	CancelReason  string       `json:"cancelReason,omitempty"`
}

// Handoff returns the checkout payload for this booking.
func (b *Booking) Handoff() Handoff {
	return Handoff{
		BookingID:   b.ID,
		CarID:       b.VehicleID,
		Days:        b.Quote.Days,
		PickupDate:  b.PickupDate,
		ReturnDate:  b.ReturnDate,
		PickupTime:  b.PickupTime,
		ReturnTime:  b.ReturnTime,
		PickupPoint: b.PickupPoint,
		ReturnPoint: b.ReturnPoint,
		Amount:      b.Quote.GrandTotal,
		Addons:      b.Addons,
	}
}
