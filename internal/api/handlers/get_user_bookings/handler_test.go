package get_user_bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-LessonBookingService/pkg/logger"
)

type stubService struct {
	got *models.GetUserBookingsRequest
	err error
}

func (s *stubService) GetUserBookings(_ context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{{ID: "b1"}, {ID: "b2"}}}, nil
}

func newRequest(target string, identity domain.Identity) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = mux.SetURLVars(req, map[string]string{"userId": "u1"})
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func TestHandle_RoleResolution(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		identity domain.Identity
		wantRole string
	}{
		{"explicit query role", "/users/u1/bookings?role=teacher", domain.Identity{ID: "u1", Role: domain.RoleStudent}, "teacher"},
		{"role from identity", "/users/u1/bookings", domain.Identity{ID: "u1", Role: domain.RoleTeacher}, "teacher"},
		{"student by default", "/users/u1/bookings", domain.Identity{ID: "u1"}, "student"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			w := httptest.NewRecorder()

			NewHandler(svc, logger.NewNop()).Handle(w, newRequest(tt.target, tt.identity))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantRole, svc.got.Role)
			assert.Equal(t, "u1", svc.got.ActorID)
			assert.Nil(t, svc.got.Status)

			var list []models.BookingResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
			assert.Len(t, list, 2)
		})
	}
}

func TestHandle_StatusFilterAndErrors(t *testing.T) {
	svc := &stubService{}
	w := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(w, newRequest("/users/u1/bookings?status=confirmed", domain.Identity{ID: "u1"}))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.got.Status)
	assert.Equal(t, "confirmed", *svc.got.Status)

	w = httptest.NewRecorder()
	NewHandler(&stubService{err: bookings.ErrAccessDenied}, logger.NewNop()).
		Handle(w, newRequest("/users/u1/bookings", domain.Identity{ID: "u2"}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	NewHandler(&stubService{err: bookings.ErrInvalidInput}, logger.NewNop()).
		Handle(w, newRequest("/users/u1/bookings?status=lost", domain.Identity{ID: "u1"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
