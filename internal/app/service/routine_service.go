package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
)

var (
	ErrRoutineNotFound     = errors.New("routine not found")
	ErrRoutineStepNotFound = errors.New("routine step not found")
	ErrInvalidPeriod       = errors.New("period must be morning or evening")
)

type RoutineStepInput struct {
	StepOrder   int
	Name        string
	Instruction string
	ProductIDs  []uint
}

type RoutineInput struct {
	SkinTypeID  uint
	Period      model.RoutinePeriod
	Title       string
	Description string
	Steps       []RoutineStepInput
}

type RoutineService interface {
	GetAllRoutines() ([]model.Routine, error)
	GetRoutineByID(id uint) (*model.Routine, error)
	GetRoutinesBySkinType(skinTypeID uint, period *model.RoutinePeriod) ([]model.Routine, error)
	CreateRoutine(input RoutineInput) (*model.Routine, error)
	UpdateRoutine(id uint, input RoutineInput) (*model.Routine, error)
	DeleteRoutine(id uint) error

	AddStep(routineID uint, input RoutineStepInput) (*model.RoutineStep, error)
	UpdateStep(stepID uint, input RoutineStepInput) (*model.RoutineStep, error)
	DeleteStep(stepID uint) error
	SetStepProducts(stepID uint, productIDs []uint) (*model.RoutineStep, error)
}

type routineService struct {
	routineRepo  repository.RoutineRepository
	skinTypeRepo repository.SkinTypeRepository
	productRepo  repository.ProductRepository
}

func NewRoutineService(
	routineRepo repository.RoutineRepository,
	skinTypeRepo repository.SkinTypeRepository,
	productRepo repository.ProductRepository,
) RoutineService {
	return &routineService{
		routineRepo:  routineRepo,
		skinTypeRepo: skinTypeRepo,
		productRepo:  productRepo,
	}
}

func (s *routineService) GetAllRoutines() ([]model.Routine, error) {
	return s.routineRepo.FindAll()
}

func (s *routineService) GetRoutineByID(id uint) (*model.Routine, error) {
	routine, err := s.routineRepo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrRoutineNotFound)
	}
	return routine, nil
}

func (s *routineService) GetRoutinesBySkinType(skinTypeID uint, period *model.RoutinePeriod) ([]model.Routine, error) {
	var p model.RoutinePeriod
	if period != nil {
		if !period.Valid() {
			return nil, ErrInvalidPeriod
		}
		p = *period
	}
	return s.routineRepo.FindBySkinType(skinTypeID, p)
}

// checkProducts fails when any referenced product is missing
func (s *routineService) checkProducts(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return err
	}
	found := make(map[uint]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
	}
	return nil
}

func (s *routineService) validate(input RoutineInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrNameRequired
	}
	if !input.Period.Valid() {
		return ErrInvalidPeriod
	}
	if _, err := s.skinTypeRepo.FindByID(input.SkinTypeID); err != nil {
		return notFoundAs(err, ErrSkinTypeNotFound)
	}
	return nil
}

func buildStep(input RoutineStepInput) (model.RoutineStep, error) {
	if strings.TrimSpace(input.Name) == "" {
		return model.RoutineStep{}, ErrNameRequired
	}
	step := model.RoutineStep{
		StepOrder:   input.StepOrder,
		Name:        strings.TrimSpace(input.Name),
		Instruction: input.Instruction,
	}
	seen := make(map[uint]bool, len(input.ProductIDs))
	for _, id := range input.ProductIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		step.Products = append(step.Products, model.RoutineProduct{ProductID: id})
	}
	return step, nil
}

func (s *routineService) CreateRoutine(input RoutineInput) (*model.Routine, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	routine := &model.Routine{
		SkinTypeID:  input.SkinTypeID,
		Period:      input.Period,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
	}
	for i, in := range input.Steps {
		if err := s.checkProducts(in.ProductIDs); err != nil {
			return nil, err
		}
		step, err := buildStep(in)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.StepOrder == 0 {
			step.StepOrder = i + 1
		}
		routine.Steps = append(routine.Steps, step)
	}

	if err := s.routineRepo.Create(routine); err != nil {
		return nil, err
	}

	logger.Info("Routine created", map[string]interface{}{
		"routine_id":   routine.ID,
		"skin_type_id": routine.SkinTypeID,
		"period":       routine.Period,
	})
	return s.GetRoutineByID(routine.ID)
}

// UpdateRoutine rewrites the routine header; steps are edited individually
func (s *routineService) UpdateRoutine(id uint, input RoutineInput) (*model.Routine, error) {
	routine, err := s.GetRoutineByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	routine.SkinTypeID = input.SkinTypeID
	routine.Period = input.Period
	routine.Title = strings.TrimSpace(input.Title)
	routine.Description = input.Description
	if err := s.routineRepo.Update(routine); err != nil {
		return nil, err
	}
	return s.GetRoutineByID(id)
}

func (s *routineService) DeleteRoutine(id uint) error {
	if err := s.routineRepo.Delete(id); err != nil {
		return notFoundAs(err, ErrRoutineNotFound)
	}
	logger.Info("Routine deleted", map[string]interface{}{
		"routine_id": id,
	})
	return nil
}

func (s *routineService) AddStep(routineID uint, input RoutineStepInput) (*model.RoutineStep, error) {
	routine, err := s.GetRoutineByID(routineID)
	if err != nil {
		return nil, err
	}
	if err := s.checkProducts(input.ProductIDs); err != nil {
		return nil, err
	}
	step, err := buildStep(input)
	if err != nil {
		return nil, err
	}
	step.RoutineID = routineID
	if step.StepOrder == 0 {
		step.StepOrder = len(routine.Steps) + 1
	}
	if err := s.routineRepo.CreateStep(&step); err != nil {
		return nil, err
	}
	return s.routineRepo.FindStepByID(step.ID)
}

func (s *routineService) UpdateStep(stepID uint, input RoutineStepInput) (*model.RoutineStep, error) {
	step, err := s.routineRepo.FindStepByID(stepID)
	if err != nil {
		return nil, notFoundAs(err, ErrRoutineStepNotFound)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	step.Name = strings.TrimSpace(input.Name)
	step.Instruction = input.Instruction
	if input.StepOrder > 0 {
		step.StepOrder = input.StepOrder
	}
	if err := s.routineRepo.UpdateStep(step); err != nil {
		return nil, err
	}
	if input.ProductIDs != nil {
		return s.SetStepProducts(stepID, input.ProductIDs)
	}
	return step, nil
}

func (s *routineService) DeleteStep(stepID uint) error {
	if err := s.routineRepo.DeleteStep(stepID); err != nil {
		return notFoundAs(err, ErrRoutineStepNotFound)
	}
	return nil
}

func (s *routineService) SetStepProducts(stepID uint, productIDs []uint) (*model.RoutineStep, error) {
	if _, err := s.routineRepo.FindStepByID(stepID); err != nil {
		return nil, notFoundAs(err, ErrRoutineStepNotFound)
	}
	if err := s.checkProducts(productIDs); err != nil {
		return nil, err
	}
	if err := s.routineRepo.SetStepProducts(stepID, productIDs); err != nil {
		logger.Error("Failed to set routine step products", err, map[string]interface{}{
			"step_id": stepID,
		})
		return nil, err
	}
	return s.routineRepo.FindStepByID(stepID)
}
