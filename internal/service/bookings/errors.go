package bookings

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("%w: booking", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда пользователь не участник бронирования
	ErrAccessDenied = fmt.Errorf("%w: booking", domain.ErrAccessDenied)

	// ErrInvalidTransition возвращается, когда переход статуса не разрешён
	ErrInvalidTransition = fmt.Errorf("%w: booking", domain.ErrInvalidTransition)

	// ErrStatusChanged возвращается, когда статус изменился конкурентно
	ErrStatusChanged = fmt.Errorf("%w: booking status changed concurrently", domain.ErrConflict)

	// ErrInsufficientCredit возвращается, когда у ученика нет оплаченных занятий у преподавателя
	ErrInsufficientCredit = fmt.Errorf("%w: booking cannot be confirmed", domain.ErrInsufficientCredit)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
