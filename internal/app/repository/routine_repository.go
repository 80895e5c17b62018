package repository

import (
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type RoutineRepository interface {
	Create(routine *model.Routine) error
	FindAll() ([]model.Routine, error)
	FindByID(id uint) (*model.Routine, error)
	FindBySkinType(skinTypeID uint, period model.RoutinePeriod) ([]model.Routine, error)
	Update(routine *model.Routine) error
	Delete(id uint) error

	CreateStep(step *model.RoutineStep) error
	FindStepByID(id uint) (*model.RoutineStep, error)
	UpdateStep(step *model.RoutineStep) error
	DeleteStep(id uint) error
	SetStepProducts(stepID uint, productIDs []uint) error
}

type routineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) RoutineRepository {
	return &routineRepository{db: db}
}

func (r *routineRepository) withSteps(db *gorm.DB) *gorm.DB {
	return db.Preload("SkinType").
		Preload("Steps", func(sdb *gorm.DB) *gorm.DB {
			return sdb.Order("routine_steps.step_order ASC")
		}).
		Preload("Steps.Products.Product.Pictures")
}

func (r *routineRepository) Create(routine *model.Routine) error {
	logger.Debug("Creating routine in database", map[string]interface{}{
		"skin_type_id": routine.SkinTypeID,
		"period":       routine.Period,
		"step_count":   len(routine.Steps),
	})

	if err := r.db.Omit("SkinType").Create(routine).Error; err != nil {
		logger.Error("Failed to create routine in database", err, map[string]interface{}{
			"skin_type_id": routine.SkinTypeID,
		})
		return err
	}
	return nil
}

func (r *routineRepository) FindAll() ([]model.Routine, error) {
	var routines []model.Routine
	if err := r.withSteps(r.db).Order("skin_type_id ASC, period ASC").Find(&routines).Error; err != nil {
		logger.Error("Failed to list routines", err)
		return nil, err
	}
	return routines, nil
}

func (r *routineRepository) FindByID(id uint) (*model.Routine, error) {
	var routine model.Routine
	if err := r.withSteps(r.db).First(&routine, id).Error; err != nil {
		return nil, err
	}
	return &routine, nil
}

// FindBySkinType lists routines of a skin type, optionally narrowed to one period
func (r *routineRepository) FindBySkinType(skinTypeID uint, period model.RoutinePeriod) ([]model.Routine, error) {
	query := r.withSteps(r.db).Where("skin_type_id = ?", skinTypeID)
	if period != "" {
		query = query.Where("period = ?", period)
	}

	var routines []model.Routine
	if err := query.Order("period DESC").Find(&routines).Error; err != nil {
		logger.Error("Failed to find routines by skin type", err, map[string]interface{}{
			"skin_type_id": skinTypeID,
			"period":       period,
		})
		return nil, err
	}
	return routines, nil
}

func (r *routineRepository) Update(routine *model.Routine) error {
	if err := r.db.Omit("SkinType", "Steps").Save(routine).Error; err != nil {
		logger.Error("Failed to update routine in database", err, map[string]interface{}{
			"routine_id": routine.ID,
		})
		return err
	}
	return nil
}

func (r *routineRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Routine{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete routine from database", result.Error, map[string]interface{}{
			"routine_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *routineRepository) CreateStep(step *model.RoutineStep) error {
	if err := r.db.Create(step).Error; err != nil {
		logger.Error("Failed to create routine step in database", err, map[string]interface{}{
			"routine_id": step.RoutineID,
		})
		return err
	}
	return nil
}

func (r *routineRepository) FindStepByID(id uint) (*model.RoutineStep, error) {
	var step model.RoutineStep
	if err := r.db.Preload("Products.Product").First(&step, id).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *routineRepository) UpdateStep(step *model.RoutineStep) error {
	return r.db.Omit("Products").Save(step).Error
}

func (r *routineRepository) DeleteStep(id uint) error {
	result := r.db.Delete(&model.RoutineStep{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *routineRepository) SetStepProducts(stepID uint, productIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("routine_step_id = ?", stepID).Delete(&model.RoutineProduct{}).Error; err != nil {
			return err
		}
		links := make([]model.RoutineProduct, 0, len(productIDs))
		for _, id := range uniqueIDs(productIDs) {
			links = append(links, model.RoutineProduct{RoutineStepID: stepID, ProductID: id})
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Omit("Product").Create(&links).Error
	})
}
