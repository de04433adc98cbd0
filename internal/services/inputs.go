package services

import (
	"context"
	"strings"
	"time"

	"github.com/seanlongden/asa-student-portal/internal/models"
)

type InputStore interface {
	// ListInputs returns a student's inputs ordered by module order; an empty
	// moduleID means every module.
	ListInputs(ctx context.Context, studentID, moduleID string) ([]models.Input, error)
	UpsertInput(ctx context.Context, input models.Input) (models.Input, error)
}

// InputService stores free-text answers keyed by (student, module, field).
// moduleOrder is stored as given and not checked against the catalog.
type InputService struct {
	Store InputStore
	Now   func() time.Time
}

func NewInputService(store InputStore) *InputService {
	return &InputService{Store: store, Now: time.Now}
}

func (s *InputService) Save(ctx context.Context, studentID, moduleID string, moduleOrder int, fieldKey, value string) (models.Input, error) {
	if strings.TrimSpace(moduleID) == "" || strings.TrimSpace(fieldKey) == "" {
		return models.Input{}, ErrInvalidInput("moduleId and inputKey are required")
	}
	record, err := s.Store.UpsertInput(ctx, models.Input{
		StudentID:   studentID,
		ModuleID:    moduleID,
		ModuleOrder: moduleOrder,
		InputKey:    fieldKey,
		Value:       value,
		UpdatedAt:   s.Now().UTC(),
	})
	if err != nil {
		return models.Input{}, ErrUpstream(err, "Server error")
	}
	return record, nil
}

func (s *InputService) List(ctx context.Context, studentID, moduleID string) ([]models.Input, error) {
	inputs, err := s.Store.ListInputs(ctx, studentID, strings.TrimSpace(moduleID))
	if err != nil {
		return nil, ErrUpstream(err, "Server error")
	}
	return inputs, nil
}
