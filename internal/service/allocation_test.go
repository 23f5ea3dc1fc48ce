package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekarslan/event-seat-reservation/internal/model"
	"github.com/ekarslan/event-seat-reservation/internal/repository"
)

// fakeStore is an in-memory Store. WithTx holds the mutex for the whole
// callback and restores a snapshot on error, mimicking a serializable
// transaction with rollback.
type fakeStore struct {
	mu           sync.Mutex
	users        map[uint64]model.User
	events       map[uint64]model.Event
	seats        map[uint64]model.Seat
	reservations map[uint64]model.Reservation
	allowances   map[[2]uint64]uint32 // (userID, eventID) -> remaining
	nextID       uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        map[uint64]model.User{},
		events:       map[uint64]model.Event{},
		seats:        map[uint64]model.Seat{},
		reservations: map[uint64]model.Reservation{},
		allowances:   map[[2]uint64]uint32{},
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	resSnap := make(map[uint64]model.Reservation, len(f.reservations))
	for k, v := range f.reservations {
		resSnap[k] = v
	}
	allowSnap := make(map[[2]uint64]uint32, len(f.allowances))
	for k, v := range f.allowances {
		allowSnap[k] = v
	}
	idSnap := f.nextID

	if err := fn(ctx); err != nil {
		f.reservations = resSnap
		f.allowances = allowSnap
		f.nextID = idSnap
		return err
	}
	return nil
}

func (f *fakeStore) EventByID(_ context.Context, id uint64) (*model.Event, error) {
	if e, ok := f.events[id]; ok {
		return &e, nil
	}
	return nil, repository.ErrEventNotFound
}

func (f *fakeStore) UserByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) SeatsByIDs(_ context.Context, locationID uint64, seatIDs []uint64) ([]model.Seat, error) {
	out := make([]model.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		s, ok := f.seats[id]
		if !ok || s.LocationID != locationID {
			return nil, repository.ErrSeatNotFound
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) InsertReservation(_ context.Context, r *model.Reservation) (uint64, error) {
	for _, existing := range f.reservations {
		if existing.EventID == r.EventID && existing.SeatID == r.SeatID {
			return 0, repository.ErrSeatTaken
		}
	}
	f.nextID++
	stored := *r
	stored.ID = f.nextID
	f.reservations[stored.ID] = stored
	return stored.ID, nil
}

func (f *fakeStore) ReservationByID(_ context.Context, id uint64) (*model.Reservation, error) {
	if r, ok := f.reservations[id]; ok {
		return &r, nil
	}
	return nil, repository.ErrReservationNotFound
}

func (f *fakeStore) DeleteReservation(_ context.Context, id uint64) error {
	if _, ok := f.reservations[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(f.reservations, id)
	return nil
}

func (f *fakeStore) HeldSeatIDs(_ context.Context, eventID uint64, seatIDs []uint64) ([]uint64, error) {
	want := make(map[uint64]bool, len(seatIDs))
	for _, id := range seatIDs {
		want[id] = true
	}
	var out []uint64
	for _, r := range f.reservations {
		if r.EventID == eventID && want[r.SeatID] {
			out = append(out, r.SeatID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeStore) ConsumeAllowance(_ context.Context, userID, eventID uint64) error {
	key := [2]uint64{userID, eventID}
	if f.allowances[key] == 0 {
		return repository.ErrNoAllowance
	}
	f.allowances[key]--
	return nil
}

func (f *fakeStore) RestoreAllowance(_ context.Context, userID, eventID uint64) error {
	key := [2]uint64{userID, eventID}
	if _, ok := f.allowances[key]; ok {
		f.allowances[key]++
	}
	return nil
}

func (f *fakeStore) SetAllowance(_ context.Context, userID, eventID uint64, count uint32) error {
	f.allowances[[2]uint64{userID, eventID}] = count
	return nil
}

func (f *fakeStore) AllowanceCount(_ context.Context, userID, eventID uint64) (uint32, error) {
	return f.allowances[[2]uint64{userID, eventID}], nil
}

func (f *fakeStore) ReservationsByUser(_ context.Context, userID, eventID uint64) ([]model.ReservationDetail, error) {
	var out []model.ReservationDetail
	for _, r := range f.reservations {
		if r.UserID != userID {
			continue
		}
		if eventID != 0 && r.EventID != eventID {
			continue
		}
		out = append(out, f.detail(r))
	}
	return out, nil
}

func (f *fakeStore) ListByEventSorted(_ context.Context, eventID uint64) ([]model.ReservationDetail, error) {
	var out []model.ReservationDetail
	for _, r := range f.reservations {
		if r.EventID == eventID {
			out = append(out, f.detail(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (f *fakeStore) detail(r model.Reservation) model.ReservationDetail {
	s := f.seats[r.SeatID]
	u := f.users[r.UserID]
	return model.ReservationDetail{
		Reservation: r,
		SeatNumber:  s.SeatNumber,
		RowLabel:    s.RowLabel,
		UserEmail:   u.Email,
	}
}

// heldSeats returns the reservation count for a (user, event) pair.
func (f *fakeStore) heldSeats(userID, eventID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.reservations {
		if r.UserID == userID && r.EventID == eventID {
			n++
		}
	}
	return n
}

const (
	managerID = 1
	aliceID   = 2
	bobID     = 3
	eventID   = 10
	locID     = 20
)

func seedStore(t *testing.T) *fakeStore {
	t.Helper()
	f := newFakeStore()
	f.users[managerID] = model.User{ID: managerID, Email: "manager@example.com", Role: model.RoleManager}
	f.users[aliceID] = model.User{ID: aliceID, Email: "alice@example.com", Role: model.RoleUser}
	f.users[bobID] = model.User{ID: bobID, Email: "bob@example.com", Role: model.RoleUser}
	now := time.Now().UTC()
	f.events[eventID] = model.Event{
		ID:              eventID,
		ManagerID:       managerID,
		LocationID:      locID,
		Name:            "concert",
		StartsAt:        now.Add(48 * time.Hour),
		EndsAt:          now.Add(52 * time.Hour),
		BookingStartsAt: now.Add(-time.Hour),
		BookingDeadline: now.Add(24 * time.Hour),
	}
	for i := uint64(1); i <= 10; i++ {
		f.seats[100+i] = model.Seat{ID: 100 + i, LocationID: locID, SeatNumber: uint32(i), RowLabel: "A"}
	}
	return f
}

func newService(f *fakeStore) *AllocationService {
	svc := NewAllocationService(f, nil)
	n := 0
	svc.newCode = func() string { n++; return fmt.Sprintf("code-%d", n) }
	return svc
}

func TestReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes one allowance per seat", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 3
		svc := newService(f)

		created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101, 102})
		require.NoError(t, err)
		require.Len(t, created, 2)
		for _, r := range created {
			assert.Equal(t, model.StatusReserved, r.Status)
			assert.NotEmpty(t, r.ConfirmationCode)
			assert.NotZero(t, r.ID)
		}

		remaining, err := svc.RemainingAllowance(ctx, aliceID, eventID)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), remaining)
	})

	t.Run("batch larger than quota leaves nothing behind", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 2
		svc := newService(f)

		_, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101, 102, 103})
		require.ErrorIs(t, err, repository.ErrNoAllowance)

		assert.Equal(t, 0, f.heldSeats(aliceID, eventID))
		remaining, _ := svc.RemainingAllowance(ctx, aliceID, eventID)
		assert.Equal(t, uint32(2), remaining, "failed batch must not consume allowance")
	})

	t.Run("exhausted quota means no reservation", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 0
		svc := newService(f)

		_, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{109})
		require.ErrorIs(t, err, repository.ErrNoAllowance)
		assert.Equal(t, 0, f.heldSeats(aliceID, eventID))
	})

	t.Run("blocked seat counts as held", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 5
		svc := newService(f)

		_, err := svc.Block(ctx, managerID, model.RoleManager, eventID, []uint64{103, 104})
		require.NoError(t, err)

		_, err = svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{103})
		var conflict *SeatConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []uint64{103}, conflict.SeatIDs)
		remaining, _ := svc.RemainingAllowance(ctx, aliceID, eventID)
		assert.Equal(t, uint32(5), remaining)
	})

	t.Run("no grant means no reservation", func(t *testing.T) {
		f := seedStore(t)
		svc := newService(f)

		_, err := svc.Reserve(ctx, model.RoleUser, bobID, eventID, []uint64{101})
		require.ErrorIs(t, err, repository.ErrNoAllowance)
		assert.Equal(t, 0, f.heldSeats(bobID, eventID))
	})

	t.Run("held seat rejects the whole batch", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 5
		f.allowances[[2]uint64{bobID, eventID}] = 5
		svc := newService(f)

		_, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
		require.NoError(t, err)

		_, err = svc.Reserve(ctx, model.RoleUser, bobID, eventID, []uint64{101, 102})
		var conflict *SeatConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []uint64{101}, conflict.SeatIDs)
		assert.ErrorIs(t, err, repository.ErrSeatTaken)

		assert.Equal(t, 0, f.heldSeats(bobID, eventID), "conflicting batch must not hold the free seat")
		remaining, _ := svc.RemainingAllowance(ctx, bobID, eventID)
		assert.Equal(t, uint32(5), remaining)
	})

	t.Run("unknown event fails fast", func(t *testing.T) {
		f := seedStore(t)
		svc := newService(f)
		_, err := svc.Reserve(ctx, model.RoleUser, aliceID, 999, []uint64{101})
		require.ErrorIs(t, err, repository.ErrEventNotFound)
	})

	t.Run("unknown seat fails fast", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 5
		svc := newService(f)
		_, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101, 999})
		require.ErrorIs(t, err, repository.ErrSeatNotFound)
		assert.Equal(t, 0, f.heldSeats(aliceID, eventID))
	})

	t.Run("unknown user fails fast", func(t *testing.T) {
		f := seedStore(t)
		svc := newService(f)
		_, err := svc.Reserve(ctx, model.RoleUser, 999, eventID, []uint64{101})
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("duplicate seat ids collapse to one", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 5
		svc := newService(f)

		created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101, 101, 101})
		require.NoError(t, err)
		assert.Len(t, created, 1)
		remaining, _ := svc.RemainingAllowance(ctx, aliceID, eventID)
		assert.Equal(t, uint32(4), remaining)
	})

	t.Run("closed booking window rejects users but not managers", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 5
		svc := newService(f)
		svc.now = func() time.Time { return time.Now().UTC().Add(72 * time.Hour) }

		_, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
		require.ErrorIs(t, err, ErrBookingClosed)

		_, err = svc.Reserve(ctx, model.RoleManager, aliceID, eventID, []uint64{101})
		require.NoError(t, err)
	})
}

func TestBlock(t *testing.T) {
	ctx := context.Background()

	t.Run("never touches the ledger", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{managerID, eventID}] = 1
		svc := newService(f)

		created, err := svc.Block(ctx, managerID, model.RoleManager, eventID, []uint64{101, 102, 103})
		require.NoError(t, err)
		require.Len(t, created, 3)
		for _, r := range created {
			assert.Equal(t, model.StatusBlocked, r.Status)
		}

		remaining, _ := svc.RemainingAllowance(ctx, managerID, eventID)
		assert.Equal(t, uint32(1), remaining)
	})

	t.Run("reports every colliding seat", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 5
		svc := newService(f)

		_, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101, 103})
		require.NoError(t, err)

		_, err = svc.Block(ctx, managerID, model.RoleManager, eventID, []uint64{101, 102, 103})
		var conflict *SeatConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []uint64{101, 103}, conflict.SeatIDs)
		assert.Equal(t, 0, f.heldSeats(managerID, eventID))
	})

	t.Run("foreign manager is rejected", func(t *testing.T) {
		f := seedStore(t)
		svc := newService(f)
		_, err := svc.Block(ctx, bobID, model.RoleManager, eventID, []uint64{101})
		require.ErrorIs(t, err, repository.ErrForbidden)
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("restores allowance for reserved holds only", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 2
		svc := newService(f)

		created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
		require.NoError(t, err)
		blocked, err := svc.Block(ctx, managerID, model.RoleManager, eventID, []uint64{102})
		require.NoError(t, err)

		released, err := svc.Release(ctx, managerID, model.RoleManager, []uint64{created[0].ID, blocked[0].ID})
		require.NoError(t, err)
		assert.Len(t, released, 2)

		remaining, _ := svc.RemainingAllowance(ctx, aliceID, eventID)
		assert.Equal(t, uint32(2), remaining, "reserved release restores the unit")
		managerRemaining, _ := svc.RemainingAllowance(ctx, managerID, eventID)
		assert.Equal(t, uint32(0), managerRemaining, "blocked release leaves ledger untouched")
	})

	t.Run("vanished ids are skipped", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 2
		svc := newService(f)

		created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
		require.NoError(t, err)

		released, err := svc.Release(ctx, aliceID, model.RoleUser, []uint64{created[0].ID})
		require.NoError(t, err)
		assert.Len(t, released, 1)

		// Second release of the same ID is a no-op, not an error.
		released, err = svc.Release(ctx, aliceID, model.RoleUser, []uint64{created[0].ID})
		require.NoError(t, err)
		assert.Empty(t, released)

		remaining, _ := svc.RemainingAllowance(ctx, aliceID, eventID)
		assert.Equal(t, uint32(2), remaining, "double release must not restore twice")
	})

	t.Run("owner may release own, stranger may not", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 2
		svc := newService(f)

		created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
		require.NoError(t, err)

		_, err = svc.Release(ctx, bobID, model.RoleUser, []uint64{created[0].ID})
		require.ErrorIs(t, err, repository.ErrForbidden)
		assert.Equal(t, 1, f.heldSeats(aliceID, eventID))

		released, err := svc.Release(ctx, aliceID, model.RoleUser, []uint64{created[0].ID})
		require.NoError(t, err)
		assert.Len(t, released, 1)
	})

	t.Run("release then re-reserve round trips", func(t *testing.T) {
		f := seedStore(t)
		f.allowances[[2]uint64{aliceID, eventID}] = 1
		svc := newService(f)

		created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
		require.NoError(t, err)
		_, err = svc.Release(ctx, aliceID, model.RoleUser, []uint64{created[0].ID})
		require.NoError(t, err)

		again, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
		require.NoError(t, err)
		assert.NotEqual(t, created[0].ConfirmationCode, again[0].ConfirmationCode)
	})
}

func TestGrantAllowance(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites previous grants", func(t *testing.T) {
		f := seedStore(t)
		svc := newService(f)

		require.NoError(t, svc.GrantAllowance(ctx, managerID, model.RoleManager, aliceID, eventID, 4))
		remaining, _ := svc.RemainingAllowance(ctx, aliceID, eventID)
		assert.Equal(t, uint32(4), remaining)

		require.NoError(t, svc.GrantAllowance(ctx, managerID, model.RoleManager, aliceID, eventID, 1))
		remaining, _ = svc.RemainingAllowance(ctx, aliceID, eventID)
		assert.Equal(t, uint32(1), remaining)
	})

	t.Run("requires event ownership", func(t *testing.T) {
		f := seedStore(t)
		svc := newService(f)
		err := svc.GrantAllowance(ctx, bobID, model.RoleManager, aliceID, eventID, 4)
		require.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("unknown user or event fails", func(t *testing.T) {
		f := seedStore(t)
		svc := newService(f)
		assert.ErrorIs(t, svc.GrantAllowance(ctx, managerID, model.RoleManager, 999, eventID, 1), repository.ErrUserNotFound)
		assert.ErrorIs(t, svc.GrantAllowance(ctx, managerID, model.RoleManager, aliceID, 999, 1), repository.ErrEventNotFound)
	})
}

func TestConcurrentReserveSameSeat(t *testing.T) {
	f := seedStore(t)
	svc := newService(f)

	const workers = 16
	users := make([]uint64, workers)
	for i := range users {
		id := uint64(1000 + i)
		f.users[id] = model.User{ID: id, Email: fmt.Sprintf("u%d@example.com", i), Role: model.RoleUser}
		f.allowances[[2]uint64{id, eventID}] = 1
		users[i] = id
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), model.RoleUser, users[i], eventID, []uint64{105})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		if err == nil {
			winners++
			continue
		}
		require.ErrorIs(t, err, repository.ErrSeatTaken)
		remaining, _ := svc.RemainingAllowance(context.Background(), users[i], eventID)
		assert.Equal(t, uint32(1), remaining, "loser keeps the allowance")
	}
	assert.Equal(t, 1, winners, "exactly one hold per seat")
}

func TestEventReservationsSortedBySeatNumber(t *testing.T) {
	ctx := context.Background()
	f := seedStore(t)
	f.allowances[[2]uint64{aliceID, eventID}] = 5
	svc := newService(f)

	_, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{107, 103, 105})
	require.NoError(t, err)

	rows, err := svc.EventReservations(ctx, managerID, model.RoleManager, eventID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, sort.SliceIsSorted(rows, func(i, j int) bool {
		return rows[i].SeatNumber < rows[j].SeatNumber
	}))
	assert.Equal(t, uint32(3), rows[0].SeatNumber)

	_, err = svc.EventReservations(ctx, bobID, model.RoleManager, eventID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

// notifier recording calls; failures must never surface to callers.
type failingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *failingNotifier) ReservationConfirmed(model.Reservation, model.Seat, model.Event, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return errors.New("broker down")
}

func (n *failingNotifier) ReservationReleased(model.Reservation, []model.ReservationDetail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return errors.New("broker down")
}

// recordingNotifier captures every notification for inspection.
type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []ReservationConfirmedCall
	released  []ReservationReleasedCall
}

type ReservationConfirmedCall struct {
	Res          model.Reservation
	ManagerEmail string
}

type ReservationReleasedCall struct {
	Res       model.Reservation
	Remaining []model.ReservationDetail
}

func (n *recordingNotifier) ReservationConfirmed(res model.Reservation, _ model.Seat, _ model.Event, managerEmail string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, ReservationConfirmedCall{Res: res, ManagerEmail: managerEmail})
	return nil
}

func (n *recordingNotifier) ReservationReleased(res model.Reservation, remaining []model.ReservationDetail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.released = append(n.released, ReservationReleasedCall{Res: res, Remaining: remaining})
	return nil
}

func TestReleaseNotifiesCommittedHoldsOnBatchError(t *testing.T) {
	ctx := context.Background()
	f := seedStore(t)
	f.allowances[[2]uint64{aliceID, eventID}] = 2
	rec := &recordingNotifier{}
	svc := NewAllocationService(f, rec)

	created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
	require.NoError(t, err)
	blocked, err := svc.Block(ctx, managerID, model.RoleManager, eventID, []uint64{102})
	require.NoError(t, err)

	// Alice owns the first hold but may not release the manager's block.
	// The first release is committed before the second fails, so it must
	// be reported and notified alongside the error.
	released, err := svc.Release(ctx, aliceID, model.RoleUser, []uint64{created[0].ID, blocked[0].ID})
	require.ErrorIs(t, err, repository.ErrForbidden)
	require.Len(t, released, 1)
	assert.Equal(t, created[0].ID, released[0].ID)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.released, 1)
	assert.Equal(t, created[0].ID, rec.released[0].Res.ID)
}

func TestNotificationPayloads(t *testing.T) {
	ctx := context.Background()
	f := seedStore(t)
	f.allowances[[2]uint64{aliceID, eventID}] = 3
	rec := &recordingNotifier{}
	svc := NewAllocationService(f, rec)

	created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101, 102})
	require.NoError(t, err)

	rec.mu.Lock()
	require.Len(t, rec.confirmed, 2)
	for _, call := range rec.confirmed {
		assert.Equal(t, "manager@example.com", call.ManagerEmail)
	}
	rec.mu.Unlock()

	_, err = svc.Release(ctx, aliceID, model.RoleUser, []uint64{created[0].ID})
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.released, 1)
	require.Len(t, rec.released[0].Remaining, 1, "release notice carries the user's surviving holds")
	assert.Equal(t, created[1].ID, rec.released[0].Remaining[0].ID)
}

func TestNotifierFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	f := seedStore(t)
	f.allowances[[2]uint64{aliceID, eventID}] = 2
	notifier := &failingNotifier{}
	svc := NewAllocationService(f, notifier)

	created, err := svc.Reserve(ctx, model.RoleUser, aliceID, eventID, []uint64{101})
	require.NoError(t, err, "notification failure must not fail the reservation")

	_, err = svc.Release(ctx, aliceID, model.RoleUser, []uint64{created[0].ID})
	require.NoError(t, err)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, 2, notifier.calls)
}
