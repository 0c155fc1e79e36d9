package get_booking_stats

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
	gotReq *models.GetStatsRequest
	err    error
}

func (s *stubService) GetStats(_ context.Context, req *models.GetStatsRequest) (*models.BookingStatsResponse, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingStatsResponse{Upcoming: 2, Completed: 5, Cancelled: 1, Total: 8, ThisMonth: 3}, nil
}

func newRequest(query string, identity *domain.Identity) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/bookings/stats"+query, nil)
	req = mux.SetURLVars(req, map[string]string{"userId": "u1"})
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *identity))
	}
	return req
}

func TestHandle_Success(t *testing.T) {
	svc := &stubService{}
	w := httptest.NewRecorder()

	NewHandler(svc, logger.NewNop()).Handle(w, newRequest("?role=teacher", &domain.Identity{ID: "u1"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.gotReq.ActorID)
	assert.Equal(t, "u1", svc.gotReq.UserID)
	assert.Equal(t, "teacher", svc.gotReq.Role)

	var resp models.BookingStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 8, resp.Total)
	assert.Equal(t, 3, resp.ThisMonth)
}

func TestHandle_RoleDefaults(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		identity domain.Identity
		wantRole string
	}{
		{"query wins", "?role=student", domain.Identity{ID: "u1", Role: domain.RoleTeacher}, "student"},
		{"identity role", "", domain.Identity{ID: "u1", Role: domain.RoleTeacher}, "teacher"},
		{"student by default", "", domain.Identity{ID: "u1"}, "student"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			identity := tt.identity
			w := httptest.NewRecorder()

			NewHandler(svc, logger.NewNop()).Handle(w, newRequest(tt.query, &identity))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantRole, svc.gotReq.Role)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	t.Run("missing identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHandler(&stubService{}, logger.NewNop()).Handle(w, newRequest("", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"other user", bookings.ErrAccessDenied, http.StatusForbidden},
		{"unknown role", bookings.ErrInvalidInput, http.StatusBadRequest},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHandler(&stubService{err: tt.err}, logger.NewNop()).
				Handle(w, newRequest("?role=admin", &domain.Identity{ID: "u2"}))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
