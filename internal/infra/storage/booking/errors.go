package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrConflict возвращается, когда запись нарушила уникальность слота
	// или транзакция не прошла проверку сериализуемости
	ErrConflict = errors.New("booking.repository: slot conflict")

	// ErrStatusMismatch возвращается, когда условное обновление не нашло бронирование в ожидаемом статусе
	ErrStatusMismatch = errors.New("booking.repository: booking status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
