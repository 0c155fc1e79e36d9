package teachers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	"github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-LessonBookingService/internal/service/teachers/models"
	"github.com/m04kA/SMC-LessonBookingService/pkg/logger"
)

var slotStart = time.Date(2025, 10, 7, 15, 0, 0, 0, time.UTC)

func newService() (*Service, *memory.SlotRepository) {
	store := memory.NewStore(domain.NewSlotKeyer(time.UTC, ""))
	slots := memory.NewSlotRepository(store)
	return NewService(memory.NewTeacherRepository(store), slots, 0, logger.NewNop()), slots
}

func TestSettings(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, settings.IsDefault)
	assert.Equal(t, domain.DefaultGroupSize, settings.GroupSize)

	_, err = svc.UpdateSettings(ctx, "t1", &models.UpdateSettingsRequest{ActorID: "t2", GroupSize: 4})
	assert.ErrorIs(t, err, ErrAccessDenied)

	for _, size := range []int{0, domain.MaxGroupSize + 1} {
		_, err = svc.UpdateSettings(ctx, "t1", &models.UpdateSettingsRequest{ActorID: "t1", GroupSize: size})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	updated, err := svc.UpdateSettings(ctx, "t1", &models.UpdateSettingsRequest{ActorID: "t1", GroupSize: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.GroupSize)

	settings, err = svc.GetSettings(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, settings.IsDefault)
	assert.Equal(t, 4, settings.GroupSize)
}

func TestSettings_ClassProfile(t *testing.T) {
	svc, _ := newService()
	svc.WithDefaultCurrency("usd")
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "USD", settings.Currency)

	updated, err := svc.UpdateSettings(ctx, "t1", &models.UpdateSettingsRequest{
		ActorID:       "t1",
		GroupSize:     3,
		ClassTitle:    "  Korean Lesson ",
		ClassDuration: 50,
		ClassPrice:    20,
		Currency:      "krw",
	})
	require.NoError(t, err)
	assert.Equal(t, "Korean Lesson", updated.ClassTitle)
	assert.Equal(t, 50, updated.ClassDuration)
	assert.Equal(t, 20.0, updated.ClassPrice)
	assert.Equal(t, "KRW", updated.Currency)

	// валюта не выбрана: показываем валюту по умолчанию
	_, err = svc.UpdateSettings(ctx, "t1", &models.UpdateSettingsRequest{ActorID: "t1", GroupSize: 3})
	require.NoError(t, err)
	settings, err = svc.GetSettings(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "USD", settings.Currency)
	assert.Empty(t, settings.ClassTitle)

	for _, req := range []*models.UpdateSettingsRequest{
		{ActorID: "t1", GroupSize: 3, ClassDuration: 3},
		{ActorID: "t1", GroupSize: 3, ClassDuration: domain.MaxLessonDurationMinutes + 1},
		{ActorID: "t1", GroupSize: 3, ClassPrice: -1},
		{ActorID: "t1", GroupSize: 3, Currency: "dollars"},
	} {
		_, err = svc.UpdateSettings(ctx, "t1", req)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestPublishAndListSlots(t *testing.T) {
	svc, slots := newService()
	ctx := context.Background()

	slot, err := svc.PublishSlot(ctx, "t1", &models.PublishSlotRequest{ActorID: "t1", StartAt: slotStart, EndAt: slotStart.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 60, slot.Duration)

	_, err = svc.PublishSlot(ctx, "t1", &models.PublishSlotRequest{ActorID: "t1", StartAt: slotStart.Add(30 * time.Minute), EndAt: slotStart.Add(90 * time.Minute)})
	assert.ErrorIs(t, err, ErrSlotOverlaps)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// стык слотов не пересечение
	_, err = svc.PublishSlot(ctx, "t1", &models.PublishSlotRequest{ActorID: "t1", StartAt: slotStart.Add(time.Hour), EndAt: slotStart.Add(2 * time.Hour)})
	require.NoError(t, err)

	_, err = svc.PublishSlot(ctx, "t1", &models.PublishSlotRequest{ActorID: "t1", StartAt: slotStart, EndAt: slotStart})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.PublishSlot(ctx, "t1", &models.PublishSlotRequest{ActorID: "s1", StartAt: slotStart, EndAt: slotStart.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, slots.MarkBooked(ctx, slot.ID, "s1"))

	all, err := svc.ListSlots(ctx, &models.ListSlotsRequest{TeacherID: "t1"})
	require.NoError(t, err)
	require.Len(t, all.Slots, 2)
	assert.True(t, all.Slots[0].IsBooked)

	free, err := svc.ListSlots(ctx, &models.ListSlotsRequest{TeacherID: "t1", OnlyFree: true})
	require.NoError(t, err)
	assert.Len(t, free.Slots, 1)

	_, err = svc.ListSlots(ctx, &models.ListSlotsRequest{TeacherID: "t1", From: slotStart, To: slotStart.Add(-time.Hour)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
