package teachers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	teacherRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/teacher"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers/models"
)

// Service сервис настроек преподавателя и опубликованных слотов
type Service struct {
	teacherRepo      TeacherRepository
	slotRepo         SlotRepository
	defaultGroupSize int
	defaultCurrency  string
	logger           Logger
	now              func() time.Time
}

// NewService создает новый экземпляр сервиса
func NewService(teacherRepo TeacherRepository, slotRepo SlotRepository, defaultGroupSize int, logger Logger) *Service {
	if defaultGroupSize <= 0 {
		defaultGroupSize = domain.DefaultGroupSize
	}
	return &Service{
		teacherRepo:      teacherRepo,
		slotRepo:         slotRepo,
		defaultGroupSize: defaultGroupSize,
		defaultCurrency:  domain.DefaultCurrency,
		logger:           logger,
		now:              time.Now,
	}
}

// WithDefaultCurrency задаёт валюту, которую видят клиенты, если преподаватель её не выбрал
func (s *Service) WithDefaultCurrency(currency string) *Service {
	if c := domain.NormalizeCurrency(currency); c != "" {
		s.defaultCurrency = c
	}
	return s
}

// GetSettings получает настройки преподавателя.
// Публичный метод; если настройки не сохранялись, возвращает значения по умолчанию
func (s *Service) GetSettings(ctx context.Context, teacherID string) (*models.SettingsResponse, error) {
	s.logger.Info("GetSettings: fetching settings for teacher=%s", teacherID)

	if strings.TrimSpace(teacherID) == "" {
		return nil, fmt.Errorf("%w: teacherId is required", ErrInvalidInput)
	}

	settings, err := s.teacherRepo.GetSettings(ctx, teacherID)
	if err != nil {
		if errors.Is(err, teacherRepo.ErrSettingsNotFound) {
			s.logger.Info("GetSettings: no settings for teacher=%s, using defaults", teacherID)
			return &models.SettingsResponse{
				TeacherID: teacherID,
				GroupSize: s.defaultGroupSize,
				Currency:  s.defaultCurrency,
				IsDefault: true,
			}, nil
		}
		s.logger.Error("GetSettings: repository error for teacher=%s: %v", teacherID, err)
		return nil, fmt.Errorf("%w: GetSettings - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainSettings(settings)
	if resp.Currency == "" {
		resp.Currency = s.defaultCurrency
	}
	return resp, nil
}

// UpdateSettings сохраняет настройки. Доступно только самому преподавателю
func (s *Service) UpdateSettings(ctx context.Context, teacherID string, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("UpdateSettings: teacher=%s, groupSize=%d by user=%s", teacherID, req.GroupSize, req.ActorID)

	if req.ActorID != teacherID {
		s.logger.Warn("UpdateSettings: user=%s cannot change settings of teacher=%s", req.ActorID, teacherID)
		return nil, ErrAccessDenied
	}

	if !domain.IsValidGroupSize(req.GroupSize) {
		s.logger.Warn("UpdateSettings: invalid groupSize=%d", req.GroupSize)
		return nil, fmt.Errorf("%w: groupSize must be between %d and %d",
			ErrInvalidInput, domain.MinGroupSize, domain.MaxGroupSize)
	}

	settings := &domain.TeacherSettings{
		TeacherID:     teacherID,
		GroupSize:     req.GroupSize,
		ClassTitle:    strings.TrimSpace(req.ClassTitle),
		ClassDuration: req.ClassDuration,
		ClassPrice:    req.ClassPrice,
		Currency:      domain.NormalizeCurrency(req.Currency),
		UpdatedAt:     s.now(),
	}
	if err := settings.ValidateClassProfile(); err != nil {
		s.logger.Warn("UpdateSettings: invalid class profile for teacher=%s: %v", teacherID, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	saved, err := s.teacherRepo.UpsertSettings(ctx, settings)
	if err != nil {
		s.logger.Error("UpdateSettings: repository error for teacher=%s: %v", teacherID, err)
		return nil, fmt.Errorf("%w: UpdateSettings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateSettings: successfully updated settings for teacher=%s", teacherID)
	return models.FromDomainSettings(saved), nil
}

// PublishSlot публикует фиксированный слот на странице бронирования
func (s *Service) PublishSlot(ctx context.Context, teacherID string, req *models.PublishSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("PublishSlot: teacher=%s, start=%s, end=%s by user=%s",
		teacherID, req.StartAt.Format(time.RFC3339), req.EndAt.Format(time.RFC3339), req.ActorID)

	if req.ActorID != teacherID {
		s.logger.Warn("PublishSlot: user=%s cannot publish slots of teacher=%s", req.ActorID, teacherID)
		return nil, ErrAccessDenied
	}

	if err := validateSlot(req.StartAt, req.EndAt); err != nil {
		s.logger.Warn("PublishSlot: validation failed: %v", err)
		return nil, err
	}

	// Проверяем пересечение с уже опубликованными слотами
	existing, err := s.slotRepo.ListByTeacher(ctx, teacherID, req.StartAt.Add(-domain.MaxLessonDurationMinutes*time.Minute), req.EndAt)
	if err != nil {
		s.logger.Error("PublishSlot: repository error for teacher=%s: %v", teacherID, err)
		return nil, fmt.Errorf("%w: PublishSlot - repository error: %v", ErrInternal, err)
	}
	for _, slot := range existing {
		if slot.StartAt.Before(req.EndAt) && slot.EndAt.After(req.StartAt) {
			s.logger.Warn("PublishSlot: slot overlaps slot id=%s", slot.ID)
			return nil, ErrSlotOverlaps
		}
	}

	created, err := s.slotRepo.Create(ctx, &domain.AvailabilitySlot{
		TeacherID: teacherID,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
	})
	if err != nil {
		s.logger.Error("PublishSlot: repository error for teacher=%s: %v", teacherID, err)
		return nil, fmt.Errorf("%w: PublishSlot - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("PublishSlot: successfully published slot id=%s", created.ID)
	return models.FromDomainSlot(created), nil
}

// ListSlots возвращает опубликованные слоты преподавателя за период
func (s *Service) ListSlots(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	s.logger.Info("ListSlots: teacher=%s, from=%s, to=%s", req.TeacherID, req.From, req.To)

	if strings.TrimSpace(req.TeacherID) == "" {
		return nil, fmt.Errorf("%w: teacherId is required", ErrInvalidInput)
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return nil, fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}

	slots, err := s.slotRepo.ListByTeacher(ctx, req.TeacherID, req.From, req.To)
	if err != nil {
		s.logger.Error("ListSlots: repository error for teacher=%s: %v", req.TeacherID, err)
		return nil, fmt.Errorf("%w: ListSlots - repository error: %v", ErrInternal, err)
	}

	if req.OnlyFree {
		free := slots[:0]
		for _, slot := range slots {
			if !slot.IsBooked {
				free = append(free, slot)
			}
		}
		slots = free
	}

	return models.FromDomainSlotList(slots), nil
}

func validateSlot(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: startAt and endAt are required", ErrInvalidInput)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: endAt must be after startAt", ErrInvalidInput)
	}
	minutes := int(end.Sub(start) / time.Minute)
	if minutes < domain.MinLessonDurationMinutes || minutes > domain.MaxLessonDurationMinutes {
		return fmt.Errorf("%w: slot must last between %d and %d minutes",
			ErrInvalidInput, domain.MinLessonDurationMinutes, domain.MaxLessonDurationMinutes)
	}
	return nil
}
