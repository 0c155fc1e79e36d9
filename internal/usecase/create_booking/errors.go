package create_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

var (
	// ErrSlotNotAvailable возвращается, когда слот уже занят (в том числе конкурентной записью)
	ErrSlotNotAvailable = fmt.Errorf("%w: create_booking: slot is not available", domain.ErrConflict)

	// ErrSlotNotFound возвращается, когда опубликованный слот не найден
	ErrSlotNotFound = fmt.Errorf("%w: create_booking: availability slot not found", domain.ErrNotFound)

	// ErrSlotMismatch возвращается, когда слот принадлежит другому преподавателю или не совпадает по времени
	ErrSlotMismatch = fmt.Errorf("%w: create_booking: availability slot does not match booking", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: create_booking: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
