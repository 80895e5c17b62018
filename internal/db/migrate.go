package db

import (
	"errors"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency-friendly order
func Models() []interface{} {
	return []interface{}{
		&model.SkinType{},
		&model.User{},
		&model.PasswordReset{},
		&model.Brand{},
		&model.Category{},
		&model.Product{},
		&model.ProductVariation{},
		&model.ProductPicture{},
		&model.ProductUsage{},
		&model.ProductForSkinType{},
		&model.ProductMainIngredient{},
		&model.ProductDetailIngredient{},
		&model.Promotion{},
		&model.PromotionProduct{},
		&model.PromotionCustomer{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderProduct{},
		&model.Quiz{},
		&model.Question{},
		&model.Answer{},
		&model.UserQuizAttempt{},
		&model.History{},
		&model.Result{},
		&model.Routine{},
		&model.RoutineStep{},
		&model.RoutineProduct{},
		&model.RatingFeedback{},
		&model.RatingFeedbackImage{},
		&model.MomoPayment{},
		&model.MomoCallback{},
		&model.VnpayTransaction{},
		&model.ZaloPayOrder{},
		&model.ZaloPayRedirect{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedReferenceData(DB); err != nil {
		logger.Error("Failed to seed reference data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedReferenceData inserts the skin type buckets and base categories when the tables are empty
func SeedReferenceData(db *gorm.DB) error {
	if err := seedSkinTypes(db); err != nil {
		logger.Error("Failed to seed skin types", err)
		return err
	}
	if err := seedCategories(db); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}
	return nil
}

func seedSkinTypes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.SkinType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Skin types already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	skinTypes := []model.SkinType{
		{Name: "Dry", Description: "Tight, flaky skin that needs rich hydration", MinScore: 0, MaxScore: 10},
		{Name: "Normal", Description: "Balanced skin with few concerns", MinScore: 11, MaxScore: 20},
		{Name: "Combination", Description: "Oily T-zone with normal or dry cheeks", MinScore: 21, MaxScore: 30},
		{Name: "Oily", Description: "Shiny skin with enlarged pores", MinScore: 31, MaxScore: 40},
		{Name: "Sensitive", Description: "Easily irritated, reactive skin", MinScore: 41, MaxScore: 60},
	}
	if err := db.Create(&skinTypes).Error; err != nil {
		return err
	}

	logger.Info("Skin types seeded successfully", map[string]interface{}{
		"total_records": len(skinTypes),
	})
	return nil
}

func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	names := []string{"Cleanser", "Toner", "Serum", "Moisturizer", "Sunscreen", "Mask"}
	categories := make([]model.Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, model.Category{Name: name, Slug: util.Slugify(name, "category")})
	}
	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_records": len(categories),
	})
	return nil
}

// SeedAdmin creates the first admin account if no user has that email yet
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("Admin account seeded", map[string]interface{}{
		"email": email,
	})
	return nil
}
