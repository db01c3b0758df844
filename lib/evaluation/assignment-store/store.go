package assignmentstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"interview-eval-backend/models"
	dbmodels "interview-eval-backend/models/db"
)

type Provider interface {
	ListByEvaluation(evaluationID string) ([]dbmodels.InterviewAssignment, error)
	ListByEmail(email string) ([]dbmodels.InterviewAssignment, error)
	Find(evaluationID, slotID string) (rec *dbmodels.InterviewAssignment, err error)
	// Store атомарно применяет результат сверки плана с приглашениями:
	// удаляет записи по убранным слотам, обновляет/создает записи по целевому списку
	// и условно (по версии) переводит процесс оценки в указанный статус.
	// Либо применяется все целиком, либо ничего.
	Store(evaluationID string, targets []dbmodels.InterviewAssignment, opts StoreOptions) error
}

type StoreOptions struct {
	RoundNumber     int
	RemovedSlotIDs  []string
	RefreshSlotIDs  []string // слоты, по которым реально ушли письма - только им обновляется invitation_sent_at
	SentAt          time.Time
	Status          models.EvalProcessStatus
	UpdateStartedAt bool // выставить process_started_at, если он еще пуст
	ExpectedVersion int64
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) ListByEvaluation(evaluationID string) (list []dbmodels.InterviewAssignment, err error) {
	list = []dbmodels.InterviewAssignment{}
	err = i.db.
		Model(&dbmodels.InterviewAssignment{}).
		Where("evaluation_id = ?", evaluationID).
		Order("round_number, created_at").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListByEmail(email string) (list []dbmodels.InterviewAssignment, err error) {
	list = []dbmodels.InterviewAssignment{}
	err = i.db.
		Model(&dbmodels.InterviewAssignment{}).
		Where("lower(interviewer_email) = lower(?)", email).
		Order("created_at desc").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Find(evaluationID, slotID string) (*dbmodels.InterviewAssignment, error) {
	rec := dbmodels.InterviewAssignment{}
	err := i.db.
		Model(&dbmodels.InterviewAssignment{}).
		Where("evaluation_id = ? and slot_id = ?", evaluationID, slotID).
		Order("round_number desc").
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

func (i impl) Store(evaluationID string, targets []dbmodels.InterviewAssignment, opts StoreOptions) error {
	refresh := map[string]bool{}
	for _, slotID := range opts.RefreshSlotIDs {
		refresh[slotID] = true
	}
	return i.db.Transaction(func(tx *gorm.DB) error {
		if len(opts.RemovedSlotIDs) > 0 {
			err := tx.
				Where("evaluation_id = ? and round_number = ?", evaluationID, opts.RoundNumber).
				Where("slot_id in ?", opts.RemovedSlotIDs).
				Delete(&dbmodels.InterviewAssignment{}).
				Error
			if err != nil {
				return errors.Wrap(err, "ошибка удаления приглашений по убранным слотам")
			}
		}
		for _, target := range targets {
			err := upsertAssignment(tx, evaluationID, opts, target, refresh[target.SlotID])
			if err != nil {
				return err
			}
		}
		return flipStatus(tx, evaluationID, opts)
	})
}

func upsertAssignment(tx *gorm.DB, evaluationID string, opts StoreOptions, target dbmodels.InterviewAssignment, refresh bool) error {
	current := dbmodels.InterviewAssignment{}
	err := tx.
		Model(&dbmodels.InterviewAssignment{}).
		Where("evaluation_id = ? and slot_id = ? and round_number = ?", evaluationID, target.SlotID, opts.RoundNumber).
		First(&current).
		Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		rec := dbmodels.InterviewAssignment{
			EvaluationID:     evaluationID,
			SlotID:           target.SlotID,
			RoundNumber:      opts.RoundNumber,
			InterviewerEmail: target.InterviewerEmail,
			InterviewerName:  target.InterviewerName,
			CaseFolderID:     target.CaseFolderID,
			FitQuestionID:    target.FitQuestionID,
		}
		if refresh {
			sentAt := opts.SentAt
			rec.InvitationSentAt = &sentAt
		}
		return errors.Wrapf(tx.Create(&rec).Error, "ошибка сохранения приглашения по слоту %v", target.SlotID)
	}
	// created_at существующей записи сохраняется, invitation_sent_at обновляется
	// только по реально отправленным слотам
	updMap := map[string]interface{}{
		"interviewer_email": target.InterviewerEmail,
		"interviewer_name":  target.InterviewerName,
		"case_folder_id":    target.CaseFolderID,
		"fit_question_id":   target.FitQuestionID,
	}
	if refresh {
		updMap["invitation_sent_at"] = opts.SentAt
	}
	err = tx.
		Model(&dbmodels.InterviewAssignment{}).
		Where("id = ?", current.ID).
		Updates(updMap).
		Error
	return errors.Wrapf(err, "ошибка обновления приглашения по слоту %v", target.SlotID)
}

func flipStatus(tx *gorm.DB, evaluationID string, opts StoreOptions) error {
	updMap := map[string]interface{}{
		"process_status": opts.Status,
		"version":        gorm.Expr("version + 1"),
	}
	if opts.UpdateStartedAt {
		// выставляется только один раз, при первой активации раунда
		updMap["process_started_at"] = gorm.Expr("coalesce(process_started_at, ?)", opts.SentAt)
	}
	res := tx.
		Model(&dbmodels.Evaluation{}).
		Where("id = ? and version = ?", evaluationID, opts.ExpectedVersion).
		Updates(updMap)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists bool
		err := tx.
			Model(&dbmodels.Evaluation{}).
			Select("count(*) > 0").
			Where("id = ?", evaluationID).
			Find(&exists).
			Error
		if err != nil {
			return err
		}
		if !exists {
			return models.NewEvalError(models.ErrCodeNotFound, "запись оценки не найдена")
		}
		return models.NewEvalError(models.ErrCodeVersionConflict, "запись оценки изменена параллельным запросом")
	}
	return nil
}
