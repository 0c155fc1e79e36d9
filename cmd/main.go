package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	cancelBookingHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/check_availability"
	checkAvailabilityBatchHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/check_availability_batch"
	completeBookingHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/complete_booking"
	confirmBookingHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/create_booking"
	getBalanceHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/get_balance"
	getBookingHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/get_booking"
	getBookingStatsHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/get_booking_stats"
	getTeacherBookingsHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/get_teacher_bookings"
	getTeacherSettingsHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/get_teacher_settings"
	getUserBookingsHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/get_user_bookings"
	listSlotsHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/list_slots"
	publishSlotHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/publish_slot"
	rescheduleBookingHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/reschedule_booking"
	settlePaymentHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/settle_payment"
	updateTeacherSettingsHandler "github.com/m04kA/SMC-LessonBookingService/internal/api/handlers/update_teacher_settings"
	"github.com/m04kA/SMC-LessonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonBookingService/internal/config"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	bookingsService "github.com/m04kA/SMC-LessonBookingService/internal/service/bookings"
	ledgerService "github.com/m04kA/SMC-LessonBookingService/internal/service/ledger"
	teachersService "github.com/m04kA/SMC-LessonBookingService/internal/service/teachers"
	checkAvailabilityUC "github.com/m04kA/SMC-LessonBookingService/internal/usecase/check_availability"
	createBookingUC "github.com/m04kA/SMC-LessonBookingService/internal/usecase/create_booking"
	rescheduleBookingUC "github.com/m04kA/SMC-LessonBookingService/internal/usecase/reschedule_booking"
	settlePaymentUC "github.com/m04kA/SMC-LessonBookingService/internal/usecase/settle_payment"
	"github.com/m04kA/SMC-LessonBookingService/pkg/logger"
	"github.com/m04kA/SMC-LessonBookingService/pkg/metrics"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-LessonBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Все даты и время слотов сравниваются в одном часовом поясе
	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone: %v", err)
	}
	keyer := domain.NewSlotKeyer(loc, cfg.Booking.TimeFormat)
	log.Info("Slot keys use timezone=%s, time format=%s", loc, keyer.TimeLayout)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	store, err := openStorage(startupCtx, cfg, keyer, metricsCollector, log, stopMetricsCh)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	locker, closeLocker, err := newLocker(startupCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize slot locker: %v", err)
	}
	defer closeLocker()

	// Инициализируем сервисы
	ledgerSvc := ledgerService.NewService(store.ledger, metricsCollector, log)
	bookingSvc := bookingsService.NewService(
		store.bookings,
		ledgerSvc,
		store.slots,
		store.txManager,
		metricsCollector,
		log,
	)
	teacherSvc := teachersService.NewService(store.teachers, store.slots, cfg.Booking.DefaultGroupSize, log).
		WithDefaultCurrency(cfg.Booking.DefaultCurrency)

	// Инициализируем use cases
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		store.bookings,
		store.teachers,
		keyer,
		cfg.Booking.DefaultGroupSize,
		metricsCollector,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		store.bookings,
		store.teachers,
		store.slots,
		locker,
		store.txManager,
		keyer,
		cfg.Booking.DefaultGroupSize,
		metricsCollector,
		log,
	).WithDefaultCurrency(cfg.Booking.DefaultCurrency)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		store.bookings,
		store.teachers,
		store.slots,
		locker,
		store.txManager,
		keyer,
		cfg.Booking.DefaultGroupSize,
		metricsCollector,
		log,
	)

	settlePaymentUseCase := settlePaymentUC.NewUseCase(ledgerSvc, bookingSvc, store.bookings, log)

	// Инициализируем handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	checkAvailabilityBatch := checkAvailabilityBatchHandler.NewHandler(checkAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, keyer, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getBookingStats := getBookingStatsHandler.NewHandler(bookingSvc, log)
	getTeacherBookings := getTeacherBookingsHandler.NewHandler(bookingSvc, log)
	getBalance := getBalanceHandler.NewHandler(ledgerSvc, log)
	settlePayment := settlePaymentHandler.NewHandler(settlePaymentUseCase, log)
	getTeacherSettings := getTeacherSettingsHandler.NewHandler(teacherSvc, log)
	updateTeacherSettings := updateTeacherSettingsHandler.NewHandler(teacherSvc, log)
	publishSlot := publishSlotHandler.NewHandler(teacherSvc, log)
	listSlots := listSlotsHandler.NewHandler(teacherSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recovery(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Проверка доступности слота страницей бронирования
	api.HandleFunc("/teachers/{teacherId}/availability", checkAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/teachers/{teacherId}/availability/batch", checkAvailabilityBatch.Handle).Methods(http.MethodPost)

	// Настройки и опубликованные слоты преподавателя
	api.HandleFunc("/teachers/{teacherId}/settings", getTeacherSettings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/teachers/{teacherId}/slots", listSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// WEBHOOKS (общий секрет платёжного провайдера)
	// ============================================================

	webhooks := api.PathPrefix("/payments").Subrouter()
	webhooks.Use(middleware.WebhookSecret(cfg.Payments.WebhookSecret))
	webhooks.HandleFunc("/settled", settlePayment.Handle).Methods(http.MethodPost)

	if cfg.Payments.WebhookSecret == "" {
		log.Warn("payments.webhook_secret is empty: payment webhooks are rejected")
	}

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)

	// --- Дашборд пользователя ---
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/users/{userId}/bookings/stats", getBookingStats.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/students/{studentId}/balances/{teacherId}", getBalance.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для преподавателей) ---
	protected.HandleFunc("/teachers/{teacherId}/bookings", getTeacherBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/teachers/{teacherId}/settings", updateTeacherSettings.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/teachers/{teacherId}/slots", publishSlot.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
