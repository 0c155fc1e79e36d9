package ledger

import "errors"

var (
	// ErrBalanceNotFound возвращается, когда у пары преподаватель/ученик нет баланса
	ErrBalanceNotFound = errors.New("ledger.repository: balance not found")

	// ErrInsufficientCredit возвращается, когда списание сделало бы баланс отрицательным
	ErrInsufficientCredit = errors.New("ledger.repository: insufficient credit")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("ledger.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("ledger.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("ledger.repository: failed to scan row")
)
