package teachers

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

var (
	// ErrAccessDenied возвращается, когда пользователь меняет чужие настройки
	ErrAccessDenied = fmt.Errorf("%w: teacher settings", domain.ErrAccessDenied)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrSlotOverlaps возвращается, когда новый слот пересекается с опубликованным
	ErrSlotOverlaps = fmt.Errorf("%w: slot overlaps a published slot", domain.ErrConflict)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
