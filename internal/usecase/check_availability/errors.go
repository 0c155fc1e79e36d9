package check_availability

import (
	"fmt"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("check_availability: %w", domain.ErrValidation)
)
