package check_availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	checkAvailability "github.com/m04kA/SMC-LessonBookingService/internal/usecase/check_availability"
	"github.com/m04kA/SMC-LessonBookingService/pkg/logger"
)

type stubUseCase struct {
	got  *checkAvailability.Request
	resp *checkAvailability.Response
	err  error
}

func (s *stubUseCase) CheckSlot(_ context.Context, req *checkAvailability.Request) (*checkAvailability.Response, error) {
	s.got = req
	return s.resp, s.err
}

func doRequest(h *Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = mux.SetURLVars(req, map[string]string{"teacherId": "t1"})
	w := httptest.NewRecorder()
	h.Handle(w, req)
	return w
}

func TestHandle_Success(t *testing.T) {
	uc := &stubUseCase{resp: &checkAvailability.Response{
		Date: "2025-10-06",
		Time: "15:00",
		SlotAvailability: domain.SlotAvailability{
			Available:       true,
			CurrentBookings: 2,
			MaxSize:         3,
		},
	}}
	h := NewHandler(uc, logger.NewNop())

	w := doRequest(h, "/teachers/t1/availability?date=Monday,%20October%206,%202025&time=15:00&lessonType=capacity&maxGroupSize=3")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, "t1", uc.got.TeacherID)
	assert.Equal(t, "Monday, October 6, 2025", uc.got.Date.String())
	assert.Equal(t, domain.LessonTypeCapacity, uc.got.LessonType)
	assert.Equal(t, 3, uc.got.MaxGroupSize)

	var body AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Available)
	assert.Equal(t, 2, body.CurrentBookings)
	assert.Equal(t, 3, body.MaxSize)
	assert.Equal(t, "capacity", body.LessonType)
	assert.False(t, body.Degraded)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		ucErr      error
		wantStatus int
	}{
		{"missing date", "/x?time=15:00", nil, http.StatusBadRequest},
		{"missing time", "/x?date=2025-10-06", nil, http.StatusBadRequest},
		{"bad group size", "/x?date=2025-10-06&time=15:00&maxGroupSize=abc", nil, http.StatusBadRequest},
		{"negative group size", "/x?date=2025-10-06&time=15:00&maxGroupSize=-1", nil, http.StatusBadRequest},
		{"usecase validation", "/x?date=2025-10-06&time=15:00&lessonType=vip",
			fmt.Errorf("%w: unknown lessonType", checkAvailability.ErrInvalidInput), http.StatusBadRequest},
		{"internal", "/x?date=2025-10-06&time=15:00", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{err: tt.ucErr}
			if tt.ucErr == nil {
				uc.resp = &checkAvailability.Response{}
			}
			w := doRequest(NewHandler(uc, logger.NewNop()), tt.target)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
