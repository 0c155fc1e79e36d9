package check_availability_batch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	checkAvailability "github.com/m04kA/SMC-LessonBookingService/internal/usecase/check_availability"
	"github.com/m04kA/SMC-LessonBookingService/pkg/logger"
)

type stubUseCase struct {
	got *checkAvailability.BatchRequest
	err error
}

func (s *stubUseCase) CheckSlots(_ context.Context, req *checkAvailability.BatchRequest) ([]checkAvailability.SlotResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	results := make([]checkAvailability.SlotResult, len(req.Slots))
	for i, slot := range req.Slots {
		results[i] = checkAvailability.SlotResult{
			Slot: slot,
			Date: "2025-10-06",
			SlotAvailability: domain.SlotAvailability{
				Available: i%2 == 0,
				MaxSize:   1,
			},
		}
	}
	return results, nil
}

func TestHandle_PreservesOrder(t *testing.T) {
	uc := &stubUseCase{}
	h := NewHandler(uc, logger.NewNop())

	body := `{"slots":[
		{"date":"Monday, October 6, 2025","time":"15:00","duration":60},
		{"date":"2025-10-06","time":"16:00"},
		{"date":"2025-10-06T10:00:00Z","time":"17:00"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/teachers/t1/availability/batch", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"teacherId": "t1"})
	w := httptest.NewRecorder()

	h.Handle(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, uc.got.Slots, 3)
	assert.Equal(t, 60, uc.got.Slots[0].DurationMinutes)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "exclusive", resp.LessonType)
	assert.Equal(t, "Monday, October 6, 2025", resp.Slots[0].Date)
	assert.Equal(t, "2025-10-06", resp.Slots[0].NormalizedDate)
	assert.Equal(t, []string{"15:00", "16:00", "17:00"},
		[]string{resp.Slots[0].Time, resp.Slots[1].Time, resp.Slots[2].Time})
	assert.True(t, resp.Slots[0].Available)
	assert.False(t, resp.Slots[1].Available)
}

func TestHandle_BadRequests(t *testing.T) {
	h := NewHandler(&stubUseCase{}, logger.NewNop())

	for _, body := range []string{``, `{"slots":`, `{"unknown":1}`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.Handle(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	uc := &stubUseCase{err: checkAvailability.ErrInvalidInput}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"slots":[{"date":"","time":"15:00"}]}`))
	w := httptest.NewRecorder()
	NewHandler(uc, logger.NewNop()).Handle(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
