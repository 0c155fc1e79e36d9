package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonBookingService/pkg/psqlbuilder"
)

// Repository репозиторий балансов занятий.
// Все изменения total/used/remaining выполняются одним UPDATE,
// поэтому инвариант remaining = total - used не нарушается.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория балансов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает баланс или ErrBalanceNotFound
func (r *Repository) Get(ctx context.Context, teacherID, studentID string) (*domain.LessonBalance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"teacher_id",
		"student_id",
		"total_lessons",
		"used_lessons",
		"remaining_lessons",
		"last_updated",
	).
		From("lesson_balances").
		Where(squirrel.Eq{"teacher_id": teacherID, "student_id": studentID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	balance, err := scanBalance(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBalanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan balance: %v", ErrScanRow, err)
	}

	return balance, nil
}

// Grant начисляет count занятий. Если строки нет, она создаётся с нулевыми значениями.
// Непустой reference (ID платежа) записывается в ledger_grants; повторный reference
// ничего не начисляет и возвращает applied=false.
func (r *Repository) Grant(ctx context.Context, teacherID, studentID string, count int, reference string, now time.Time) (*domain.LessonBalance, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if reference != "" {
		query, args, err := psqlbuilder.Insert("ledger_grants").
			Columns("reference", "teacher_id", "student_id", "lessons", "created_at").
			Values(reference, teacherID, studentID, count, now).
			Suffix("ON CONFLICT (reference) DO NOTHING").
			ToSql()
		if err != nil {
			return nil, false, fmt.Errorf("%w: Grant - build reference insert: %v", ErrBuildQuery, err)
		}

		result, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, false, fmt.Errorf("%w: Grant - insert reference: %v", ErrExecQuery, err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return nil, false, fmt.Errorf("%w: Grant - get rows affected: %v", ErrExecQuery, err)
		}
		if inserted == 0 {
			balance, err := r.Get(ctx, teacherID, studentID)
			if err != nil {
				return nil, false, err
			}
			return balance, false, nil
		}
	}

	query, args, err := psqlbuilder.Insert("lesson_balances").
		Columns("teacher_id", "student_id", "total_lessons", "used_lessons", "remaining_lessons", "last_updated").
		Values(teacherID, studentID, count, 0, count, now).
		Suffix(`ON CONFLICT (teacher_id, student_id) DO UPDATE SET
			total_lessons = lesson_balances.total_lessons + EXCLUDED.total_lessons,
			remaining_lessons = lesson_balances.remaining_lessons + EXCLUDED.total_lessons,
			last_updated = EXCLUDED.last_updated
			RETURNING teacher_id, student_id, total_lessons, used_lessons, remaining_lessons, last_updated`).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: Grant - build upsert query: %v", ErrBuildQuery, err)
	}

	balance, err := scanBalance(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, false, fmt.Errorf("%w: Grant - execute upsert: %v", ErrExecQuery, err)
	}

	return balance, true, nil
}

// Spend списывает count занятий атомарно (WHERE remaining_lessons >= count).
// При нехватке баланса возвращает ErrInsufficientCredit, баланс не меняется.
func (r *Repository) Spend(ctx context.Context, teacherID, studentID string, count int, now time.Time) (*domain.LessonBalance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("lesson_balances").
		Set("used_lessons", squirrel.Expr("used_lessons + ?", count)).
		Set("remaining_lessons", squirrel.Expr("remaining_lessons - ?", count)).
		Set("last_updated", now).
		Where(squirrel.Eq{"teacher_id": teacherID, "student_id": studentID}).
		Where(squirrel.GtOrEq{"remaining_lessons": count}).
		Suffix("RETURNING teacher_id, student_id, total_lessons, used_lessons, remaining_lessons, last_updated").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Spend - build update query: %v", ErrBuildQuery, err)
	}

	balance, err := scanBalance(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInsufficientCredit
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Spend - execute update: %v", ErrExecQuery, err)
	}

	return balance, nil
}

func scanBalance(row *sql.Row) (*domain.LessonBalance, error) {
	var b domain.LessonBalance
	err := row.Scan(
		&b.TeacherID,
		&b.StudentID,
		&b.TotalLessons,
		&b.UsedLessons,
		&b.RemainingLessons,
		&b.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
