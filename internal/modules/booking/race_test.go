// README: Concurrency tests for booking state transitions (run with -race).
package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestConcurrentConfirmVsCancel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Options{BranchMode: true})

	res, err := svc.Create(ctx, validCreate("s_confirm_cancel"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	id := res.Booking.ID

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Confirm(ctx, validConfirm("s_confirm_cancel", id))
		errs <- err
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Cancel(ctx, CancelCommand{SessionID: "s_confirm_cancel", BookingID: id})
		errs <- err
	}()

	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success < 1 || success > 2 {
		t.Fatalf("expected 1 or 2 successes, got %d", success)
	}

	b, err := svc.Get(ctx, "s_confirm_cancel", id)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if success == 2 && b.Status != StatusCancelled {
		t.Fatalf("expected cancelled after confirm+cancel, got %s", b.Status)
	}
	if success == 1 && b.Status != StatusConfirmed && b.Status != StatusCancelled {
		t.Fatalf("unexpected final status: %s", b.Status)
	}
}

func TestConcurrentConfirmSameBooking(t *testing.T) {
	ctx := context.Background()
	// the delay lets every attempt read the pending booking before any write lands
	svc, _ := newTestService(t, Options{BranchMode: true, ConfirmDelay: 20 * time.Millisecond})

	res, err := svc.Create(ctx, validCreate("s_multi_confirm"))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	id := res.Booking.ID

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Confirm(ctx, validConfirm("s_multi_confirm", id))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 success, got %d", success)
	}

	b, err := svc.Get(ctx, "s_multi_confirm", id)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if b.Status != StatusConfirmed || b.StatusVersion != 1 || b.Payment == nil {
		t.Fatalf("unexpected final booking: %s v%d", b.Status, b.StatusVersion)
	}
}
