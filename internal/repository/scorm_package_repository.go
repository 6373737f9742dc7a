package repository

import (
	"edu_market_backend/internal/model"

	"gorm.io/gorm"
)

type ScormPackageRepository struct {
	DB *gorm.DB
}

func NewScormPackageRepository(db *gorm.DB) *ScormPackageRepository {
	return &ScormPackageRepository{DB: db}
}

func (r *ScormPackageRepository) FindByID(id uint) (*model.ScormPackage, error) {
	var pkg model.ScormPackage
	err := r.DB.First(&pkg, id).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *ScormPackageRepository) FindByLessonID(lessonID uint) (*model.ScormPackage, error) {
	var pkg model.ScormPackage
	err := r.DB.Where("lesson_id = ?", lessonID).First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}
