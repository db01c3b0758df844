package fitquestionstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "interview-eval-backend/models/db"
)

type Provider interface {
	GetByID(id string) (rec *dbmodels.FitQuestion, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByID(id string) (*dbmodels.FitQuestion, error) {
	rec := dbmodels.FitQuestion{}
	err := i.db.
		Model(&dbmodels.FitQuestion{}).
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
