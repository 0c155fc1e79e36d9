package teacher

import "errors"

var (
	// ErrSettingsNotFound возвращается, когда у преподавателя нет сохранённых настроек
	ErrSettingsNotFound = errors.New("teacher.repository: settings not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("teacher.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("teacher.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("teacher.repository: failed to scan row")
)
