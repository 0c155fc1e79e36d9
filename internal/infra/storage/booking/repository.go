package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-LessonBookingService/pkg/txmanager"
)

var bookingColumns = []string{
	"id",
	"teacher_id",
	"student_id",
	"teacher_name",
	"student_name",
	"student_email",
	"booking_page_title",
	"start_at",
	"end_at",
	"duration_minutes",
	"status",
	"meeting_link",
	"booking_type",
	"lesson_type",
	"slot_id",
	"reschedule_of",
	"currency",
	"payment_amount",
	"cancellation_reason",
	"completed_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями в PostgreSQL
type Repository struct {
	db    DBExecutor
	keyer domain.SlotKeyer
}

// NewRepository создает новый экземпляр репозитория бронирований.
// keyer определяет, в каком часовом поясе и формате хранится ключ слота (slot_date, slot_time).
func NewRepository(db DBExecutor, keyer domain.SlotKeyer) *Repository {
	return &Repository{db: db, keyer: keyer}
}

// Create сохраняет новое бронирование.
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Нарушение уникального индекса слота возвращается как ErrConflict.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	key := r.keyer.ForBooking(booking)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"teacher_id",
			"student_id",
			"teacher_name",
			"student_name",
			"student_email",
			"booking_page_title",
			"start_at",
			"end_at",
			"duration_minutes",
			"slot_date",
			"slot_time",
			"status",
			"meeting_link",
			"booking_type",
			"lesson_type",
			"slot_id",
			"reschedule_of",
			"currency",
			"payment_amount",
		).
		Values(
			booking.ID,
			booking.TeacherID,
			booking.StudentID,
			booking.TeacherName,
			booking.StudentName,
			booking.StudentEmail,
			booking.BookingPageTitle,
			booking.StartAt,
			booking.EndAt,
			booking.DurationMinutes,
			key.Date,
			key.Time,
			booking.Status,
			booking.MeetingLink,
			booking.BookingType,
			booking.LessonType,
			booking.SlotID,
			booking.RescheduleOf,
			booking.Currency,
			booking.PaymentAmount,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if txmanager.IsUniqueViolation(err) || txmanager.IsSerializationFailure(err) {
			return nil, fmt.Errorf("%w: Create - slot %s: %v", ErrConflict, key, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByTeacher получает бронирования преподавателя в указанных статусах.
// Пустой statuses означает все статусы.
// Внутри транзакции строки блокируются (FOR UPDATE) до её завершения.
func (r *Repository) GetByTeacher(ctx context.Context, teacherID string, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("start_at ASC")

	if len(statuses) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(statuses)})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTeacher - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			return nil, fmt.Errorf("%w: GetByTeacher: %v", ErrConflict, err)
		}
		return nil, fmt.Errorf("%w: GetByTeacher - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByUser получает бронирования пользователя как ученика или как преподавателя.
// Опционально фильтрует по статусу.
func (r *Repository) GetByUser(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	column := "student_id"
	if filter.Role == domain.RoleTeacher {
		column = "teacher_id"
	}

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{column: filter.UserID}).
		OrderBy("start_at DESC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUser - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUser - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus переводит бронирование из статуса from в статус to.
// Обновление условное (WHERE status = from): если статус уже изменился,
// возвращается ErrStatusMismatch, если бронирования нет - ErrBookingNotFound.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, patch domain.StatusPatch) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", patch.UpdatedAt).
		Where(squirrel.Eq{"id": id, "status": from})

	if patch.MeetingLink != nil {
		updateBuilder = updateBuilder.Set("meeting_link", *patch.MeetingLink)
	}
	if patch.CompletedAt != nil {
		updateBuilder = updateBuilder.Set("completed_at", *patch.CompletedAt)
	}
	if patch.CancelledAt != nil {
		updateBuilder = updateBuilder.Set("cancelled_at", *patch.CancelledAt)
	}
	if patch.CancellationReason != nil {
		updateBuilder = updateBuilder.Set("cancellation_reason", *patch.CancellationReason)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			return fmt.Errorf("%w: UpdateStatus: %v", ErrConflict, err)
		}
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: id=%s expected=%s", ErrStatusMismatch, id, from)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                domain.Booking
		bookingPageTitle sql.NullString
		slotID           sql.NullString
		rescheduleOf     sql.NullString
		reason           sql.NullString
		completedAt      sql.NullTime
		cancelledAt      sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.TeacherID,
		&b.StudentID,
		&b.TeacherName,
		&b.StudentName,
		&b.StudentEmail,
		&bookingPageTitle,
		&b.StartAt,
		&b.EndAt,
		&b.DurationMinutes,
		&b.Status,
		&b.MeetingLink,
		&b.BookingType,
		&b.LessonType,
		&slotID,
		&rescheduleOf,
		&b.Currency,
		&b.PaymentAmount,
		&reason,
		&completedAt,
		&cancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.BookingPageTitle = nullString(bookingPageTitle)
	b.SlotID = nullString(slotID)
	b.RescheduleOf = nullString(rescheduleOf)
	b.CancellationReason = nullString(reason)
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
