package teacher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonBookingService/pkg/psqlbuilder"
)

var settingsColumns = []string{
	"teacher_id",
	"group_size",
	"class_title",
	"class_duration",
	"class_price",
	"currency",
	"updated_at",
}

// Repository репозиторий настроек преподавателей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetSettings получает настройки преподавателя
func (r *Repository) GetSettings(ctx context.Context, teacherID string) (*domain.TeacherSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(settingsColumns...).
		From("teacher_settings").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSettings - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanSettings(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSettings - scan settings: %v", ErrScanRow, err)
	}

	return s, nil
}

// UpsertSettings создаёт или обновляет настройки преподавателя
func (r *Repository) UpsertSettings(ctx context.Context, settings *domain.TeacherSettings) (*domain.TeacherSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("teacher_settings").
		Columns(settingsColumns...).
		Values(
			settings.TeacherID,
			settings.GroupSize,
			settings.ClassTitle,
			settings.ClassDuration,
			settings.ClassPrice,
			settings.Currency,
			settings.UpdatedAt,
		).
		Suffix(`ON CONFLICT (teacher_id) DO UPDATE SET
			group_size = EXCLUDED.group_size,
			class_title = EXCLUDED.class_title,
			class_duration = EXCLUDED.class_duration,
			class_price = EXCLUDED.class_price,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
			RETURNING teacher_id, group_size, class_title, class_duration, class_price, currency, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertSettings - build upsert query: %v", ErrBuildQuery, err)
	}

	s, err := scanSettings(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertSettings - execute upsert: %v", ErrExecQuery, err)
	}

	return s, nil
}

func scanSettings(row *sql.Row) (*domain.TeacherSettings, error) {
	var s domain.TeacherSettings
	err := row.Scan(
		&s.TeacherID,
		&s.GroupSize,
		&s.ClassTitle,
		&s.ClassDuration,
		&s.ClassPrice,
		&s.Currency,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
