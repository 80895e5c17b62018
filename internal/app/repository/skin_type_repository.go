package repository

import (
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type SkinTypeRepository interface {
	Create(skinType *model.SkinType) error
	// FindAll returns skin types in stored order (ascending ID)
	FindAll() ([]model.SkinType, error)
	FindByID(id uint) (*model.SkinType, error)
	Update(skinType *model.SkinType) error
	Delete(id uint) error
}

type skinTypeRepository struct {
	db *gorm.DB
}

func NewSkinTypeRepository(db *gorm.DB) SkinTypeRepository {
	return &skinTypeRepository{db: db}
}

func (r *skinTypeRepository) Create(skinType *model.SkinType) error {
	if err := r.db.Create(skinType).Error; err != nil {
		logger.Error("Failed to create skin type in database", err, map[string]interface{}{
			"name": skinType.Name,
		})
		return err
	}
	return nil
}

func (r *skinTypeRepository) FindAll() ([]model.SkinType, error) {
	var skinTypes []model.SkinType
	if err := r.db.Order("id ASC").Find(&skinTypes).Error; err != nil {
		logger.Error("Failed to list skin types", err)
		return nil, err
	}
	return skinTypes, nil
}

func (r *skinTypeRepository) FindByID(id uint) (*model.SkinType, error) {
	var skinType model.SkinType
	if err := r.db.First(&skinType, id).Error; err != nil {
		return nil, err
	}
	return &skinType, nil
}

func (r *skinTypeRepository) Update(skinType *model.SkinType) error {
	if err := r.db.Save(skinType).Error; err != nil {
		logger.Error("Failed to update skin type in database", err, map[string]interface{}{
			"skin_type_id": skinType.ID,
		})
		return err
	}
	return nil
}

func (r *skinTypeRepository) Delete(id uint) error {
	result := r.db.Delete(&model.SkinType{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete skin type from database", result.Error, map[string]interface{}{
			"skin_type_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
