package settle_payment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректном событии оплаты
	ErrInvalidInput = fmt.Errorf("%w: settle_payment: invalid payment event", domain.ErrValidation)

	// ErrBookingNotFound возвращается, когда указанное в оплате бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("%w: settle_payment: booking not found", domain.ErrNotFound)

	// ErrBookingMismatch возвращается, когда бронирование принадлежит другой паре преподаватель/ученик
	ErrBookingMismatch = fmt.Errorf("%w: settle_payment: booking belongs to another teacher or student", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("settle_payment: internal error")
)
