// README: Booking service: quote-checked creation, mocked payment confirmation and session listing.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carrental/internal/modules/catalog"
	"carrental/internal/modules/quote"
)

var (
	ErrNotFound     = errors.New("booking not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("booking state conflict")
	ErrZeroDay      = errors.New("rental window bills zero days")
)

// QuoteError reports a quote that cannot be booked; it unwraps to the quote reason error.
type QuoteError struct {
	Result quote.Result
}

func (e *QuoteError) Error() string {
	if e.Result.Reason != quote.ReasonNone {
		return fmt.Sprintf("quote %s: %s", e.Result.Status, e.Result.Reason)
	}
	return fmt.Sprintf("quote %s", e.Result.Status)
}

func (e *QuoteError) Unwrap() error {
	return e.Result.Err()
}

type QuoteEngine interface {
	ComputeForVehicle(vehicleID string, in quote.Input) quote.Result
}

type Catalog interface {
	Vehicle(id string) (catalog.Vehicle, error)
}

type Options struct {
	SubmitDelay    time.Duration
	ConfirmDelay   time.Duration
	AllowZeroDay   bool
	BranchMode     bool
	ChatChannelURL string
	PaymentPath    string
}

type Service struct {
	store   Store
	engine  QuoteEngine
	catalog Catalog
	opts    Options
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store Store, engine QuoteEngine, cat Catalog, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PaymentPath == "" {
		opts.PaymentPath = "/payment"
	}
	return &Service{store: store, engine: engine, catalog: cat, opts: opts, log: log, now: time.Now}
}

type CreateCommand struct {
	SessionID string               `json:"sessionId" validate:"required"`
	VehicleID string               `json:"carId" validate:"required"`
	Name      string               `json:"name" validate:"required,min=2"`
	Phone     string               `json:"phone" validate:"required,min=9"`
	Window    quote.WindowInput    `json:"window"`
	Location  quote.LocationConfig `json:"location"`
	Addons    []string             `json:"addons"`
}

type CreateResult struct {
	Booking    *Booking `json:"booking"`
	Handoff    Handoff  `json:"handoff"`
	PaymentURL string   `json:"paymentUrl"`
	ChatURL    string   `json:"chatUrl,omitempty"`
}

type ConfirmCommand struct {
	SessionID string        `json:"sessionId" validate:"required"`
	BookingID string        `json:"bookingId" validate:"required"`
	Method    PaymentMethod `json:"method" validate:"required,oneof=promptpay card transfer"`
	SlipRef   string        `json:"slipRef" validate:"required_if=Method transfer"`
	Name      string        `json:"name" validate:"required,min=2"`
	Email     string        `json:"email" validate:"required,contains=@"`
	Phone     string        `json:"phone" validate:"required,min=9"`
}

type CancelCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	BookingID string `json:"bookingId" validate:"required"`
	Reason    string `json:"reason"`
}

// Create prices the request, waits the simulated submit latency and stores a
// pending booking for the session.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*CreateResult, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Phone = strings.TrimSpace(cmd.Phone)
	cmd.VehicleID = strings.TrimSpace(cmd.VehicleID)
	if err := validateStruct(cmd); err != nil {
		return nil, err
	}

	cmd.Location.BranchModeEnabled = s.opts.BranchMode
	res := s.engine.ComputeForVehicle(cmd.VehicleID, quote.Input{
		Window:            cmd.Window,
		SelectedAddonKeys: cmd.Addons,
		Location:          cmd.Location,
	})
	if !res.OK() {
		return nil, &QuoteError{Result: res}
	}
	q := res.Quote
	if q.Days == 0 && !s.opts.AllowZeroDay {
		return nil, ErrZeroDay
	}

	if err := wait(ctx, s.opts.SubmitDelay); err != nil {
		return nil, err
	}

	v, err := s.catalog.Vehicle(cmd.VehicleID)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ID:          newID(),
		SessionID:   cmd.SessionID,
		Status:      StatusPending,
		VehicleID:   v.ID,
		VehicleName: v.Name,
		Customer:    Customer{Name: cmd.Name, Phone: cmd.Phone},
		Window:      *res.Window,
		PickupDate:  strings.TrimSpace(cmd.Window.PickupDate),
		PickupTime:  strings.TrimSpace(cmd.Window.PickupTime),
		ReturnDate:  strings.TrimSpace(cmd.Window.ReturnDate),
		ReturnTime:  strings.TrimSpace(cmd.Window.ReturnTime),
		PickupPoint: res.Location.Pickup,
		ReturnPoint: res.Location.Return,
		Addons:      q.AddonKeys(),
		Quote:       *q,
		CreatedAt:   s.now(),
	}
	if err := s.store.Create(ctx, cmd.SessionID, b); err != nil {
		return nil, err
	}
	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("vehicle_id", b.VehicleID),
		zap.Int("days", q.Days),
		zap.Int64("grand_total", q.GrandTotal),
	)

	h := b.Handoff()
	out := &CreateResult{Booking: b, Handoff: h, PaymentURL: h.URL(s.opts.PaymentPath)}
	if q.RecommendAlternateChannel {
		out.ChatURL = s.ChatURL(ChatDetailsFor(b))
	}
	return out, nil
}

// ChatURL builds the alternate-channel link; empty when no channel is configured.
func (s *Service) ChatURL(d ChatDetails) string {
	if s.opts.ChatChannelURL == "" {
		return ""
	}
	return ChatLink(s.opts.ChatChannelURL, ChatMessage(d))
}

func ChatDetailsFor(b *Booking) ChatDetails {
	titles := make([]string, len(b.Quote.Addons))
	for i, l := range b.Quote.Addons {
		titles[i] = l.Title
	}
	return ChatDetails{
		CarID:       b.VehicleID,
		CarName:     b.VehicleName,
		PickupPoint: b.PickupPoint,
		PickupDate:  b.PickupDate,
		PickupTime:  b.PickupTime,
		ReturnPoint: b.ReturnPoint,
		ReturnDate:  b.ReturnDate,
		ReturnTime:  b.ReturnTime,
		Days:        b.Quote.Days,
		AddonTitles: titles,
		Amount:      b.Quote.GrandTotal,
		Name:        b.Customer.Name,
		Phone:       b.Customer.Phone,
	}
}

// Confirm records a mocked payment and moves the booking to confirmed.
func (s *Service) Confirm(ctx context.Context, cmd ConfirmCommand) (*Booking, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.Phone = strings.TrimSpace(cmd.Phone)
	cmd.SlipRef = strings.TrimSpace(cmd.SlipRef)
	if err := validateStruct(cmd); err != nil {
		return nil, err
	}

	b, err := s.owned(ctx, cmd.SessionID, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, StatusConfirmed) {
		return nil, ErrInvalidState
	}

	if err := wait(ctx, s.opts.ConfirmDelay); err != nil {
		return nil, err
	}

	now := s.now()
	payment := &Payment{
		Method: cmd.Method,
		Payer:  Customer{Name: cmd.Name, Phone: cmd.Phone, Email: cmd.Email},
		PaidAt: now,
	}
	if cmd.Method == MethodTransfer {
		payment.SlipRef = cmd.SlipRef
	}
	if err := s.transition(ctx, b, StatusConfirmed, func(b *Booking) {
		b.Payment = payment
		b.ConfirmedAt = &now
	}); err != nil {
		return nil, err
	}
	s.log.Info("booking confirmed", zap.String("booking_id", b.ID), zap.String("method", string(cmd.Method)))
	return b, nil
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Booking, error) {
	if err := validateStruct(cmd); err != nil {
		return nil, err
	}
	b, err := s.owned(ctx, cmd.SessionID, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}
	now := s.now()
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = "user_cancel"
	}
	if err := s.transition(ctx, b, StatusCancelled, func(b *Booking) {
		b.CancelledAt = &now
		b.CancelReason = reason
	}); err != nil {
		return nil, err
	}
	s.log.Info("booking cancelled", zap.String("booking_id", b.ID), zap.String("reason", reason))
	return b, nil
}

func (s *Service) Get(ctx context.Context, sessionID, id string) (*Booking, error) {
	b, err := s.owned(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	s.settle(ctx, b)
	return b, nil
}

// ListBySession returns the session's bookings newest first; an empty status lists all.
func (s *Service) ListBySession(ctx context.Context, sessionID string, status Status) ([]*Booking, error) {
	if sessionID == "" {
		return []*Booking{}, nil
	}
	all, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]*Booking, 0, len(all))
	for _, b := range all {
		s.settle(ctx, b)
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

// owned hides bookings of other sessions behind ErrNotFound.
func (s *Service) owned(ctx context.Context, sessionID, id string) (*Booking, error) {
	if sessionID == "" || id == "" {
		return nil, ErrNotFound
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.SessionID != sessionID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) transition(ctx context.Context, b *Booking, to Status, mutate func(*Booking)) error {
	prev := b.StatusVersion
	b.Status = to
	b.StatusVersion++
	if mutate != nil {
		mutate(b)
	}
	ok, err := s.store.Update(ctx, b, prev)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// settle completes confirmed bookings whose return time has passed.
func (s *Service) settle(ctx context.Context, b *Booking) {
	if b.Status != StatusConfirmed || b.Window.Return.IsZero() || !s.now().After(b.Window.Return) {
		return
	}
	now := s.now()
	snapshot := cloneBooking(b)
	if err := s.transition(ctx, b, StatusCompleted, func(b *Booking) { b.CompletedAt = &now }); err != nil {
		s.log.Warn("complete booking", zap.String("booking_id", b.ID), zap.Error(err))
		*b = snapshot
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(raw[:8])
}
