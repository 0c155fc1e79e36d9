package settle_payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonBookingService/internal/service/ledger"
	ledgerModels "github.com/m04kA/SMC-LessonBookingService/internal/service/ledger/models"
	settlePayment "github.com/m04kA/SMC-LessonBookingService/internal/usecase/settle_payment"
	"github.com/m04kA/SMC-LessonBookingService/pkg/logger"
)

type stubUseCase struct {
	got *settlePayment.Request
	err error
}

func (s *stubUseCase) Execute(_ context.Context, req *settlePayment.Request) (*settlePayment.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &settlePayment.Response{
		Balance:        ledgerModels.BalanceResponse{TeacherID: req.TeacherID, StudentID: req.StudentID, TotalLessons: req.Lessons, RemainingLessons: req.Lessons},
		CreditsGranted: true,
	}, nil
}

const eventBody = `{"paymentId":"pay_1","teacherId":"t1","studentId":"s1","lessons":5,"amount":200,"currency":"CAD"}`

func TestHandle_Success(t *testing.T) {
	uc := &stubUseCase{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/settled", strings.NewReader(eventBody))
	w := httptest.NewRecorder()

	NewHandler(uc, logger.NewNop()).Handle(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pay_1", uc.got.PaymentID)
	assert.Nil(t, uc.got.BookingID)

	var resp settlePayment.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.CreditsGranted)
	assert.Equal(t, 5, resp.Balance.RemainingLessons)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid event", settlePayment.ErrInvalidInput, http.StatusBadRequest},
		{"ledger rejects lessons", ledger.ErrInvalidInput, http.StatusBadRequest},
		{"booking not found", settlePayment.ErrBookingNotFound, http.StatusNotFound},
		{"booking mismatch", settlePayment.ErrBookingMismatch, http.StatusBadRequest},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/settled", strings.NewReader(eventBody))
			w := httptest.NewRecorder()
			NewHandler(&stubUseCase{err: tt.err}, logger.NewNop()).Handle(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
