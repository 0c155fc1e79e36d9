package cancel_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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
	gotReq *models.CancelBookingRequest
	err    error
}

func (s *stubService) Cancel(_ context.Context, bookingID string, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	resp := &models.BookingResponse{ID: bookingID, Status: "cancelled"}
	if req.CancellationReason != "" {
		reason := req.CancellationReason
		resp.CancellationReason = &reason
	}
	return resp, nil
}

func newRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/b1/cancel", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"bookingId": "b1"})
	return req.WithContext(middleware.WithIdentity(req.Context(), domain.Identity{ID: "s1"}))
}

func TestHandle_WithReason(t *testing.T) {
	svc := &stubService{}
	w := httptest.NewRecorder()

	NewHandler(svc, logger.NewNop()).Handle(w, newRequest(`{"cancellationReason":"заболел"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.gotReq.ActorID)
	assert.Equal(t, "заболел", svc.gotReq.CancellationReason)

	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
	require.NotNil(t, resp.CancellationReason)
}

func TestHandle_WithoutBody(t *testing.T) {
	svc := &stubService{}
	w := httptest.NewRecorder()

	NewHandler(svc, logger.NewNop()).Handle(w, newRequest(""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, svc.gotReq.CancellationReason)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound},
		{"stranger", bookings.ErrAccessDenied, http.StatusForbidden},
		{"reason too long", fmt.Errorf("%w: cancellationReason", bookings.ErrInvalidInput), http.StatusBadRequest},
		{"already cancelled", bookings.ErrInvalidTransition, http.StatusConflict},
		{"race", bookings.ErrStatusChanged, http.StatusConflict},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHandler(&stubService{err: tt.err}, logger.NewNop()).Handle(w, newRequest(""))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
