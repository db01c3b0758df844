package dbmodels

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"interview-eval-backend/models"
)

// Evaluation - агрегат процесса оценки кандидата.
// Поля interviews/forms/round_history хранятся как jsonb и всегда описывают текущий раунд,
// история завершённых раундов копится в round_history и после записи не меняется.
type Evaluation struct {
	BaseModel
	CandidateID      *string                  `gorm:"type:varchar(36);index"`
	RoundNumber      int                      `gorm:"not null;default:1"`
	Interviews       InterviewSlots           `gorm:"type:jsonb"`
	Forms            InterviewForms           `gorm:"type:jsonb"`
	FitQuestionID    *string                  `gorm:"type:varchar(36)"` // общий fit-вопрос раунда
	ProcessStatus    models.EvalProcessStatus `gorm:"type:varchar(20)"`
	ProcessStartedAt *time.Time
	RoundHistory     EvalRoundHistory `gorm:"type:jsonb"`
	Version          int64            `gorm:"not null;default:1"` // счетчик версий для условной записи
}

type InterviewSlot struct {
	ID               string  `json:"id"`
	InterviewerName  string  `json:"interviewer_name"`
	InterviewerEmail string  `json:"interviewer_email"`
	CaseFolderID     *string `json:"case_folder_id,omitempty"`
	FitQuestionID    *string `json:"fit_question_id,omitempty"`
}

type InterviewSlots []InterviewSlot

func (j InterviewSlots) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *InterviewSlots) Scan(value interface{}) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}

type CriterionScore struct {
	CriterionID string   `json:"criterion_id"`
	Score       *float64 `json:"score,omitempty"`
}

// InterviewForm - форма оценки интервьюера по одному слоту.
// После выставления submitted=true форма больше не редактируется.
type InterviewForm struct {
	SlotID              string                      `json:"slot_id"`
	InterviewerName     string                      `json:"interviewer_name"`
	Submitted           bool                        `json:"submitted"`
	SubmittedAt         *time.Time                  `json:"submitted_at,omitempty"`
	Notes               string                      `json:"notes,omitempty"`
	FitScore            *float64                    `json:"fit_score,omitempty"`
	CaseScore           *float64                    `json:"case_score,omitempty"`
	FitCriteria         []CriterionScore            `json:"fit_criteria,omitempty"`
	CaseCriteria        []CriterionScore            `json:"case_criteria,omitempty"`
	OfferRecommendation *models.OfferRecommendation `json:"offer_recommendation,omitempty"`
}

type InterviewForms []InterviewForm

func (j InterviewForms) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *InterviewForms) Scan(value interface{}) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}

// EvalRoundSnapshot - замороженная копия завершённого раунда.
type EvalRoundSnapshot struct {
	RoundNumber      int                      `json:"round_number"`
	Interviews       InterviewSlots           `json:"interviews"`
	Forms            InterviewForms           `json:"forms"`
	FitQuestionID    *string                  `json:"fit_question_id,omitempty"`
	ProcessStatus    models.EvalProcessStatus `json:"process_status"`
	ProcessStartedAt *time.Time               `json:"process_started_at,omitempty"`
	CompletedAt      time.Time                `json:"completed_at"`
	CreatedAt        time.Time                `json:"created_at"`
}

type EvalRoundHistory []EvalRoundSnapshot

func (j EvalRoundHistory) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *EvalRoundHistory) Scan(value interface{}) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}

func (e Evaluation) FindSlot(slotID string) *InterviewSlot {
	for idx := range e.Interviews {
		if e.Interviews[idx].ID == slotID {
			return &e.Interviews[idx]
		}
	}
	return nil
}

func (e Evaluation) FindForm(slotID string) *InterviewForm {
	for idx := range e.Forms {
		if e.Forms[idx].SlotID == slotID {
			return &e.Forms[idx]
		}
	}
	return nil
}

// EffectiveFitQuestionID - fit-вопрос слота, либо общий вопрос раунда, если на слоте не задан.
func (e Evaluation) EffectiveFitQuestionID(slot InterviewSlot) *string {
	if slot.FitQuestionID != nil && *slot.FitQuestionID != "" {
		return slot.FitQuestionID
	}
	if e.FitQuestionID != nil && *e.FitQuestionID != "" {
		return e.FitQuestionID
	}
	return nil
}
