package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/seanlongden/asa-student-portal/internal/catalog"
	"github.com/seanlongden/asa-student-portal/internal/models"
)

type ModuleStatus string

const (
	ModuleLocked    ModuleStatus = "locked"
	ModuleUnlocked  ModuleStatus = "unlocked"
	ModuleCompleted ModuleStatus = "completed"
)

type ModuleState struct {
	catalog.Module
	Status ModuleStatus `json:"status"`
}

// ComputeStatus derives the status of every module from the completed set.
// A module is unlocked when it is first in order or when the module one
// order before it is completed; there is no other way to unlock.
func ComputeStatus(modules []catalog.Module, completed map[string]bool) []ModuleState {
	idByOrder := make(map[int]string, len(modules))
	for _, mod := range modules {
		idByOrder[mod.Order] = mod.ID
	}
	states := make([]ModuleState, 0, len(modules))
	for _, mod := range modules {
		status := ModuleLocked
		switch {
		case completed[mod.ID]:
			status = ModuleCompleted
		case mod.Order == 1:
			status = ModuleUnlocked
		default:
			if prev, ok := idByOrder[mod.Order-1]; ok && completed[prev] {
				status = ModuleUnlocked
			}
		}
		states = append(states, ModuleState{Module: mod, Status: status})
	}
	return states
}

type ProgressStore interface {
	ListProgress(ctx context.Context, studentID string) ([]models.Progress, error)
	UpsertProgress(ctx context.Context, progress models.Progress) (models.Progress, error)
}

type ProgressSummary struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type TrainingOverview struct {
	Modules  []ModuleState   `json:"modules"`
	Progress ProgressSummary `json:"progress"`
}

type ModuleDetail struct {
	Module      ModuleState       `json:"module"`
	InputValues map[string]string `json:"inputValues"`
	StudentID   string            `json:"studentId"`
}

type ProgressService struct {
	Store   ProgressStore
	Inputs  InputStore
	Catalog *catalog.Catalog
	Now     func() time.Time
}

func NewProgressService(store ProgressStore, inputs InputStore, cat *catalog.Catalog) *ProgressService {
	return &ProgressService{Store: store, Inputs: inputs, Catalog: cat, Now: time.Now}
}

func (s *ProgressService) completedSet(ctx context.Context, studentID string) (map[string]bool, error) {
	records, err := s.Store.ListProgress(ctx, studentID)
	if err != nil {
		return nil, ErrUpstream(err, "Server error")
	}
	completed := make(map[string]bool, len(records))
	for _, record := range records {
		if record.Status == models.ProgressCompleted {
			completed[record.ModuleID] = true
		}
	}
	return completed, nil
}

func (s *ProgressService) Overview(ctx context.Context, studentID string) (TrainingOverview, error) {
	completed, err := s.completedSet(ctx, studentID)
	if err != nil {
		return TrainingOverview{}, err
	}
	states := ComputeStatus(s.Catalog.All(), completed)
	done := 0
	for _, state := range states {
		if state.Status == ModuleCompleted {
			done++
		}
	}
	total := len(states)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(done) / float64(total) * 100))
	}
	return TrainingOverview{
		Modules:  states,
		Progress: ProgressSummary{Completed: done, Total: total, Percentage: percentage},
	}, nil
}

// state resolves one module's status, rejecting unknown or locked modules.
func (s *ProgressService) state(ctx context.Context, studentID, moduleID string) (ModuleState, error) {
	if _, ok := s.Catalog.ByID(moduleID); !ok {
		return ModuleState{}, ErrNotFound("Module not found")
	}
	completed, err := s.completedSet(ctx, studentID)
	if err != nil {
		return ModuleState{}, err
	}
	for _, state := range ComputeStatus(s.Catalog.All(), completed) {
		if state.ID != moduleID {
			continue
		}
		if state.Status == ModuleLocked {
			return ModuleState{}, ErrLocked("Module is locked")
		}
		return state, nil
	}
	return ModuleState{}, ErrNotFound("Module not found")
}

func (s *ProgressService) Module(ctx context.Context, studentID, moduleID string) (ModuleDetail, error) {
	state, err := s.state(ctx, studentID, moduleID)
	if err != nil {
		return ModuleDetail{}, err
	}
	saved, err := s.Inputs.ListInputs(ctx, studentID, moduleID)
	if err != nil {
		return ModuleDetail{}, ErrUpstream(err, "Server error")
	}
	values := make(map[string]string, len(saved))
	for _, input := range saved {
		values[input.InputKey] = input.Value
	}
	return ModuleDetail{Module: state, InputValues: values, StudentID: studentID}, nil
}

// Complete marks an unlocked module completed. Completing it again refreshes
// the completion date.
func (s *ProgressService) Complete(ctx context.Context, studentID, moduleID string) (models.Progress, error) {
	if strings.TrimSpace(moduleID) == "" {
		return models.Progress{}, ErrInvalidInput("moduleId is required")
	}
	state, err := s.state(ctx, studentID, moduleID)
	if err != nil {
		return models.Progress{}, err
	}
	record, err := s.Store.UpsertProgress(ctx, models.Progress{
		StudentID:     studentID,
		ModuleID:      state.ID,
		ModuleOrder:   state.Order,
		Status:        models.ProgressCompleted,
		CompletedDate: DateOf(s.Now()),
	})
	if err != nil {
		return models.Progress{}, ErrUpstream(err, "Server error")
	}
	return record, nil
}
