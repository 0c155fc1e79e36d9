package memory

import (
	"context"

	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
	teacherRepo "github.com/m04kA/SMC-LessonBookingService/internal/infra/storage/teacher"
)

// TeacherRepository настройки преподавателей в памяти
type TeacherRepository struct {
	store *Store
}

func NewTeacherRepository(store *Store) *TeacherRepository {
	return &TeacherRepository{store: store}
}

func (r *TeacherRepository) GetSettings(ctx context.Context, teacherID string) (*domain.TeacherSettings, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.settings[teacherID]
	if !ok {
		return nil, teacherRepo.ErrSettingsNotFound
	}
	c := *st
	return &c, nil
}

func (r *TeacherRepository) UpsertSettings(ctx context.Context, settings *domain.TeacherSettings) (*domain.TeacherSettings, error) {
	s := r.store
	var out domain.TeacherSettings
	err := s.write(ctx, func(tx *txLog) error {
		id := settings.TeacherID
		prev, existed := s.settings[id]
		tx.onRollback(func() {
			if existed {
				s.settings[id] = prev
				return
			}
			delete(s.settings, id)
		})

		c := *settings
		s.settings[id] = &c
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
