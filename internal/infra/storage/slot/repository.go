package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonBookingService/pkg/psqlbuilder"
)

var slotColumns = []string{"id", "teacher_id", "start_at", "end_at", "is_booked", "booked_by", "created_at"}

// Repository репозиторий опубликованных слотов преподавателей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create публикует слот
func (r *Repository) Create(ctx context.Context, slot *domain.AvailabilitySlot) (*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert("availability_slots").
		Columns("id", "teacher_id", "start_at", "end_at", "is_booked", "booked_by").
		Values(slot.ID, slot.TeacherID, slot.StartAt, slot.EndAt, slot.IsBooked, slot.BookedBy).
		Suffix("RETURNING created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&slot.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return slot, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// ListByTeacher возвращает слоты преподавателя, начинающиеся в [from, to).
// Нулевые границы не ограничивают выборку.
func (r *Repository) ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("start_at ASC")

	if !from.IsZero() {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_at": from})
	}
	if !to.IsZero() {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_at": to})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTeacher - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTeacher - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.AvailabilitySlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByTeacher - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByTeacher - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// MarkBooked помечает слот занятым, только если он свободен
func (r *Repository) MarkBooked(ctx context.Context, id string, studentID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("is_booked", true).
		Set("booked_by", studentID).
		Where(squirrel.Eq{"id": id, "is_booked": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkBooked - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkBooked - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkBooked - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotAlreadyBooked
	}

	return nil
}

// Release освобождает слот
func (r *Repository) Release(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("is_booked", false).
		Set("booked_by", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.AvailabilitySlot, error) {
	var (
		s        domain.AvailabilitySlot
		bookedBy sql.NullString
	)
	if err := row.Scan(&s.ID, &s.TeacherID, &s.StartAt, &s.EndAt, &s.IsBooked, &bookedBy, &s.CreatedAt); err != nil {
		return nil, err
	}
	if bookedBy.Valid {
		v := bookedBy.String
		s.BookedBy = &v
	}
	return &s, nil
}
