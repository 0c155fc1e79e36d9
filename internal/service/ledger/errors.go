package ledger

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

var (
	// ErrInsufficientCredit возвращается, когда списание сделало бы баланс отрицательным
	ErrInsufficientCredit = fmt.Errorf("%w: ledger", domain.ErrInsufficientCredit)

	// ErrAccessDenied возвращается, когда пользователь не входит в пару преподаватель/ученик
	ErrAccessDenied = fmt.Errorf("%w: balance", domain.ErrAccessDenied)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
