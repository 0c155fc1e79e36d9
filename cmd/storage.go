package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-LessonBookingService/internal/config"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/booking"
	ledgerRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/ledger"
	"github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/memory"
	slotRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/slot"
	teacherRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/teacher"
	"github.com/m04kA/SMC-LessonBookingService/migrations"
	"github.com/m04kA/SMC-LessonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonBookingService/pkg/keymutex"
	"github.com/m04kA/SMC-LessonBookingService/pkg/logger"
	"github.com/m04kA/SMC-LessonBookingService/pkg/metrics"
	"github.com/m04kA/SMC-LessonBookingService/pkg/redislock"
	"github.com/m04kA/SMC-LessonBookingService/pkg/txmanager"
)

type bookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByTeacher(ctx context.Context, teacherID string, statuses []domain.BookingStatus) ([]*domain.Booking, error)
	GetByUser(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, patch domain.StatusPatch) error
}

type ledgerRepository interface {
	Get(ctx context.Context, teacherID, studentID string) (*domain.LessonBalance, error)
	Grant(ctx context.Context, teacherID, studentID string, count int, reference string, now time.Time) (*domain.LessonBalance, bool, error)
	Spend(ctx context.Context, teacherID, studentID string, count int, now time.Time) (*domain.LessonBalance, error)
}

type teacherRepository interface {
	GetSettings(ctx context.Context, teacherID string) (*domain.TeacherSettings, error)
	UpsertSettings(ctx context.Context, settings *domain.TeacherSettings) (*domain.TeacherSettings, error)
}

type slotRepository interface {
	Create(ctx context.Context, slot *domain.AvailabilitySlot) (*domain.AvailabilitySlot, error)
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)
	ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]*domain.AvailabilitySlot, error)
	MarkBooked(ctx context.Context, id string, studentID string) error
	Release(ctx context.Context, id string) error
}

type transactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

type slotLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// storage репозитории выбранного драйвера
type storage struct {
	bookings  bookingRepository
	ledger    ledgerRepository
	teachers  teacherRepository
	slots     slotRepository
	txManager transactionManager
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, keyer domain.SlotKeyer, m *metrics.Metrics, log *logger.Logger, stopCh <-chan struct{}) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage: data is lost on restart")
		store := memory.NewStore(keyer)
		return &storage{
			bookings:  memory.NewBookingRepository(store),
			ledger:    memory.NewLedgerRepository(store),
			teachers:  memory.NewTeacherRepository(store),
			slots:     memory.NewSlotRepository(store),
			txManager: memory.NewTxManager(store),
			close:     func() {},
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		migrator, err := migrations.NewMigrator(db, log)
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := migrator.Run(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	// С nil метриками обёртка работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, m, stopCh)

	return &storage{
		bookings:  bookingRepo.NewRepository(wrappedDB, keyer),
		ledger:    ledgerRepo.NewRepository(wrappedDB),
		teachers:  teacherRepo.NewRepository(wrappedDB),
		slots:     slotRepo.NewRepository(wrappedDB),
		txManager: txmanager.NewTransactionManager(wrappedDB),
		close:     func() { _ = db.Close() },
	}, nil
}

// newLocker возвращает nil, если блокировки выключены
func newLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (slotLocker, func(), error) {
	switch cfg.Locking.Backend {
	case config.LockingLocal:
		log.Info("Slot locking: in-process")
		return keymutex.New(), func() {}, nil

	case config.LockingRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("Slot locking: redis at %s", cfg.Redis.Addr)

		locker := redislock.New(client, redislock.Options{
			Prefix:     cfg.Locking.KeyPrefix,
			TTL:        time.Duration(cfg.Locking.TTLMs) * time.Millisecond,
			RetryDelay: time.Duration(cfg.Locking.RetryDelayMs) * time.Millisecond,
			MaxWait:    time.Duration(cfg.Locking.MaxWaitMs) * time.Millisecond,
		})
		return locker, func() { _ = client.Close() }, nil
	}

	log.Info("Slot locking disabled, relying on serializable transactions")
	return nil, func() {}, nil
}
