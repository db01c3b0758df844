package evaluationstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"interview-eval-backend/models"
	dbmodels "interview-eval-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Evaluation) (id string, err error)
	GetByID(id string) (rec *dbmodels.Evaluation, err error)
	List() ([]dbmodels.Evaluation, error)
	// Update - условная запись: применяется только если текущая версия записи
	// равна expectedVersion, при этом версия увеличивается ровно на 1.
	// Возвращает (nil, nil), если записи нет, и ошибку VERSION_CONFLICT при расхождении версий.
	Update(rec dbmodels.Evaluation, expectedVersion int64) (*dbmodels.Evaluation, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Evaluation) (string, error) {
	err := i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Evaluation, error) {
	rec := dbmodels.Evaluation{}
	err := i.db.
		Model(&dbmodels.Evaluation{}).
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

func (i impl) List() (list []dbmodels.Evaluation, err error) {
	list = []dbmodels.Evaluation{}
	err = i.db.
		Model(&dbmodels.Evaluation{}).
		Order("created_at desc").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Update(rec dbmodels.Evaluation, expectedVersion int64) (*dbmodels.Evaluation, error) {
	updMap := map[string]interface{}{
		"candidate_id":       rec.CandidateID,
		"round_number":       rec.RoundNumber,
		"interviews":         rec.Interviews,
		"forms":              rec.Forms,
		"fit_question_id":    rec.FitQuestionID,
		"process_status":     rec.ProcessStatus,
		"process_started_at": rec.ProcessStartedAt,
		"round_history":      rec.RoundHistory,
		"version":            gorm.Expr("version + 1"),
	}
	tx := i.db.
		Model(&dbmodels.Evaluation{}).
		Where("id = ? and version = ?", rec.ID, expectedVersion).
		Updates(updMap)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		// отличаем отсутствие записи от проигранной гонки версий
		exists, err := i.exists(rec.ID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, nil
		}
		return nil, models.NewEvalError(models.ErrCodeVersionConflict, "запись оценки изменена параллельным запросом")
	}
	return i.GetByID(rec.ID)
}

func (i impl) exists(id string) (bool, error) {
	var exists bool
	err := i.db.
		Model(&dbmodels.Evaluation{}).
		Select("count(*) > 0").
		Where("id = ?", id).
		Find(&exists).
		Error
	return exists, err
}
