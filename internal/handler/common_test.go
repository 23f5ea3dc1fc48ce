package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/ekarslan/event-seat-reservation/internal/repository"
	"github.com/ekarslan/event-seat-reservation/internal/service"
)

func TestWriteAllocationError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"seat conflict lists seats", &service.SeatConflictError{SeatIDs: []uint64{3, 7}}, http.StatusConflict, "seat_unavailable"},
		{"quota exceeded", repository.ErrNoAllowance, http.StatusConflict, "quota_exceeded"},
		{"booking closed", service.ErrBookingClosed, http.StatusConflict, "booking_closed"},
		{"forbidden", repository.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"event not found", repository.ErrEventNotFound, http.StatusNotFound, "event not found"},
		{"seat not found", repository.ErrSeatNotFound, http.StatusNotFound, "seat not found"},
		{"unknown error stays generic", errors.New("connection reset"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			assert.NoError(t, writeAllocationError(c, tc.err))
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantBody)
		})
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	// JWT claims decode numeric values as float64.
	c.Set("user_id", float64(42))
	id, err := getUserID(c)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", "17")
	id, err = getUserID(c)
	assert.NoError(t, err)
	assert.Equal(t, uint64(17), id)

	c.Set("user_id", nil)
	_, err = getUserID(c)
	assert.Error(t, err)
}
