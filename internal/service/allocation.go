// Package service contains the allocation engine: the rules for handing
// out, blocking and releasing seats, and the quota ledger that limits
// how many seats each user may hold per event.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ekarslan/event-seat-reservation/internal/model"
	"github.com/ekarslan/event-seat-reservation/internal/repository"
)

// Store is the persistence the engine needs. All mutating engine
// operations run inside a single WithTx scope; the implementation must
// make every method honor the transaction carried in ctx.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	EventByID(ctx context.Context, id uint64) (*model.Event, error)
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	SeatsByIDs(ctx context.Context, locationID uint64, seatIDs []uint64) ([]model.Seat, error)

	InsertReservation(ctx context.Context, r *model.Reservation) (uint64, error)
	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)
	DeleteReservation(ctx context.Context, id uint64) error
	HeldSeatIDs(ctx context.Context, eventID uint64, seatIDs []uint64) ([]uint64, error)

	ConsumeAllowance(ctx context.Context, userID, eventID uint64) error
	RestoreAllowance(ctx context.Context, userID, eventID uint64) error
	SetAllowance(ctx context.Context, userID, eventID uint64, count uint32) error
	AllowanceCount(ctx context.Context, userID, eventID uint64) (uint32, error)

	ReservationsByUser(ctx context.Context, userID, eventID uint64) ([]model.ReservationDetail, error)
	ListByEventSorted(ctx context.Context, eventID uint64) ([]model.ReservationDetail, error)
}

// Notifier receives post-commit notifications. Implementations must not
// block the caller for long and must never fail the operation; errors
// are logged and dropped.
type Notifier interface {
	ReservationConfirmed(res model.Reservation, seat model.Seat, event model.Event, managerEmail string) error
	ReservationReleased(res model.Reservation, remaining []model.ReservationDetail) error
}

// SeatConflictError reports which seats of a batch were already held.
// The engine detects most conflicts up front so it can name all of
// them; a conflict that races past the pre-check still surfaces as this
// error with the single seat the constraint rejected.
type SeatConflictError struct {
	SeatIDs []uint64
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already held: %v", e.SeatIDs)
}

// Is makes errors.Is(err, repository.ErrSeatTaken) match so callers can
// test for the category without caring which seats collided.
func (e *SeatConflictError) Is(target error) bool {
	return target == repository.ErrSeatTaken
}

// ErrBookingClosed is returned when an end user reserves outside the
// event's booking window.
var ErrBookingClosed = errors.New("booking window is closed")

// AllocationService implements seat allocation on top of a Store.
type AllocationService struct {
	store    Store
	notifier Notifier
	now      func() time.Time
	newCode  func() string
}

// NewAllocationService builds the engine. notifier may be nil, in which
// case no notifications are emitted.
func NewAllocationService(store Store, notifier Notifier) *AllocationService {
	return &AllocationService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		newCode:  uuid.NewString,
	}
}

// Reserve creates RESERVED holds on the given seats for a user, one
// ledger unit per seat. The batch is atomic: on any failure, no seats
// and no allowance change hands. actorRole decides whether the booking
// window applies; managers and admins reserve on a user's behalf at any
// time.
func (s *AllocationService) Reserve(ctx context.Context, actorRole string, userID, eventID uint64, seatIDs []uint64) ([]model.Reservation, error) {
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("no seats requested")
	}
	seatIDs = dedupe(seatIDs)

	var (
		created      []model.Reservation
		event        *model.Event
		seats        map[uint64]model.Seat
		managerEmail string
	)
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.store.EventByID(ctx, eventID)
		if err != nil {
			return err
		}
		event = ev
		if manager, err := s.store.UserByID(ctx, ev.ManagerID); err == nil {
			managerEmail = manager.Email
		}
		if actorRole == model.RoleUser && !ev.BookingOpenAt(s.now()) {
			return ErrBookingClosed
		}
		if _, err := s.store.UserByID(ctx, userID); err != nil {
			return err
		}
		resolved, err := s.store.SeatsByIDs(ctx, ev.LocationID, seatIDs)
		if err != nil {
			return err
		}
		seats = make(map[uint64]model.Seat, len(resolved))
		for _, st := range resolved {
			seats[st.ID] = st
		}
		if held, err := s.store.HeldSeatIDs(ctx, eventID, seatIDs); err != nil {
			return err
		} else if len(held) > 0 {
			return &SeatConflictError{SeatIDs: held}
		}

		for _, seatID := range seatIDs {
			if err := s.store.ConsumeAllowance(ctx, userID, eventID); err != nil {
				return err
			}
			res := model.Reservation{
				UserID:           userID,
				EventID:          eventID,
				SeatID:           seatID,
				Status:           model.StatusReserved,
				ConfirmationCode: s.newCode(),
			}
			id, err := s.store.InsertReservation(ctx, &res)
			if err != nil {
				if errors.Is(err, repository.ErrSeatTaken) {
					return &SeatConflictError{SeatIDs: []uint64{seatID}}
				}
				return err
			}
			res.ID = id
			created = append(created, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyConfirmed(created, seats, *event, managerEmail)
	return created, nil
}

// Block creates BLOCKED holds on the given seats without touching the
// ledger. Only the event's manager, or an admin, may block. Blocked
// seats are recorded under the acting manager's user ID.
func (s *AllocationService) Block(ctx context.Context, actorID uint64, actorRole string, eventID uint64, seatIDs []uint64) ([]model.Reservation, error) {
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("no seats requested")
	}
	seatIDs = dedupe(seatIDs)

	var created []model.Reservation
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.store.EventByID(ctx, eventID)
		if err != nil {
			return err
		}
		if actorRole != model.RoleAdmin && ev.ManagerID != actorID {
			return repository.ErrForbidden
		}
		if _, err := s.store.SeatsByIDs(ctx, ev.LocationID, seatIDs); err != nil {
			return err
		}
		if held, err := s.store.HeldSeatIDs(ctx, eventID, seatIDs); err != nil {
			return err
		} else if len(held) > 0 {
			return &SeatConflictError{SeatIDs: held}
		}

		for _, seatID := range seatIDs {
			res := model.Reservation{
				UserID:           actorID,
				EventID:          eventID,
				SeatID:           seatID,
				Status:           model.StatusBlocked,
				ConfirmationCode: s.newCode(),
			}
			id, err := s.store.InsertReservation(ctx, &res)
			if err != nil {
				if errors.Is(err, repository.ErrSeatTaken) {
					return &SeatConflictError{SeatIDs: []uint64{seatID}}
				}
				return err
			}
			res.ID = id
			created = append(created, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Release frees the given reservations one at a time. Each ID is its
// own transaction: a RESERVED hold returns one unit to the holder's
// ledger, a BLOCKED hold does not, and an ID that no longer exists is
// skipped rather than failing the rest. Owners may release their own
// RESERVED holds; the event's manager and admins may release anything.
// It returns the reservations actually removed. When a later ID in the
// batch fails, the earlier releases are already committed; they are
// notified and reported alongside the error.
func (s *AllocationService) Release(ctx context.Context, actorID uint64, actorRole string, ids []uint64) ([]model.Reservation, error) {
	var released []model.Reservation
	for _, id := range ids {
		var res *model.Reservation
		err := s.store.WithTx(ctx, func(ctx context.Context) error {
			r, err := s.store.ReservationByID(ctx, id)
			if err != nil {
				return err
			}
			if err := s.mayRelease(ctx, actorID, actorRole, r); err != nil {
				return err
			}
			if err := s.store.DeleteReservation(ctx, r.ID); err != nil {
				return err
			}
			if r.Status == model.StatusReserved {
				if err := s.store.RestoreAllowance(ctx, r.UserID, r.EventID); err != nil {
					return err
				}
			}
			res = r
			return nil
		})
		if errors.Is(err, repository.ErrReservationNotFound) {
			continue
		}
		if err != nil {
			s.notifyReleased(ctx, released)
			return released, err
		}
		released = append(released, *res)
	}

	s.notifyReleased(ctx, released)
	return released, nil
}

func (s *AllocationService) mayRelease(ctx context.Context, actorID uint64, actorRole string, r *model.Reservation) error {
	if actorRole == model.RoleAdmin {
		return nil
	}
	if r.Status == model.StatusReserved && r.UserID == actorID {
		return nil
	}
	ev, err := s.store.EventByID(ctx, r.EventID)
	if err != nil {
		return err
	}
	if ev.ManagerID == actorID {
		return nil
	}
	return repository.ErrForbidden
}

// GrantAllowance sets a user's quota for an event, creating the ledger
// row if needed. Only the event's manager or an admin may grant.
func (s *AllocationService) GrantAllowance(ctx context.Context, actorID uint64, actorRole string, userID, eventID uint64, count uint32) error {
	return s.store.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.store.EventByID(ctx, eventID)
		if err != nil {
			return err
		}
		if actorRole != model.RoleAdmin && ev.ManagerID != actorID {
			return repository.ErrForbidden
		}
		if _, err := s.store.UserByID(ctx, userID); err != nil {
			return err
		}
		return s.store.SetAllowance(ctx, userID, eventID, count)
	})
}

// RemainingAllowance reports how many more reservations a user may make
// for an event.
func (s *AllocationService) RemainingAllowance(ctx context.Context, userID, eventID uint64) (uint32, error) {
	if _, err := s.store.EventByID(ctx, eventID); err != nil {
		return 0, err
	}
	return s.store.AllowanceCount(ctx, userID, eventID)
}

// UserReservations lists a user's reservations, optionally filtered to
// one event (eventID zero means all).
func (s *AllocationService) UserReservations(ctx context.Context, userID, eventID uint64) ([]model.ReservationDetail, error) {
	return s.store.ReservationsByUser(ctx, userID, eventID)
}

// EventReservations lists every hold of an event in seat number order.
func (s *AllocationService) EventReservations(ctx context.Context, actorID uint64, actorRole string, eventID uint64) ([]model.ReservationDetail, error) {
	ev, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if actorRole != model.RoleAdmin && ev.ManagerID != actorID {
		return nil, repository.ErrForbidden
	}
	return s.store.ListByEventSorted(ctx, eventID)
}

func (s *AllocationService) notifyConfirmed(created []model.Reservation, seats map[uint64]model.Seat, event model.Event, managerEmail string) {
	if s.notifier == nil {
		return
	}
	for _, res := range created {
		if err := s.notifier.ReservationConfirmed(res, seats[res.SeatID], event, managerEmail); err != nil {
			log.Printf("notify confirmed reservation %d: %v", res.ID, err)
		}
	}
}

func (s *AllocationService) notifyReleased(ctx context.Context, released []model.Reservation) {
	if s.notifier == nil {
		return
	}
	for _, res := range released {
		var remaining []model.ReservationDetail
		if rest, err := s.store.ReservationsByUser(ctx, res.UserID, res.EventID); err == nil {
			remaining = rest
		}
		if err := s.notifier.ReservationReleased(res, remaining); err != nil {
			log.Printf("notify released reservation %d: %v", res.ID, err)
		}
	}
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
