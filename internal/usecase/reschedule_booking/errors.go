package reschedule_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда переносимое бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("%w: reschedule_booking: booking not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда пользователь не участник бронирования
	ErrAccessDenied = fmt.Errorf("%w: reschedule_booking", domain.ErrAccessDenied)

	// ErrInvalidTransition возвращается, когда бронирование нельзя перенести из текущего статуса
	ErrInvalidTransition = fmt.Errorf("%w: reschedule_booking", domain.ErrInvalidTransition)

	// ErrSlotNotAvailable возвращается, когда новое время занято
	ErrSlotNotAvailable = fmt.Errorf("%w: reschedule_booking: slot is not available", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reschedule_booking: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
