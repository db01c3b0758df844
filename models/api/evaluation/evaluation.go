package evalapimodels

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"interview-eval-backend/models"
	dbmodels "interview-eval-backend/models/db"
)

// EvaluationPlanData - редактирование плана текущего раунда.
type EvaluationPlanData struct {
	CandidateID   *string    `json:"candidate_id,omitempty"`    // ид кандидата
	FitQuestionID *string    `json:"fit_question_id,omitempty"` // общий fit-вопрос раунда
	Interviews    []SlotData `json:"interviews"`                // желаемый план интервью
}

type SlotData struct {
	ID               string  `json:"id,omitempty"` // пусто для нового слота
	InterviewerName  string  `json:"interviewer_name"`
	InterviewerEmail string  `json:"interviewer_email"`
	CaseFolderID     *string `json:"case_folder_id,omitempty"`
	FitQuestionID    *string `json:"fit_question_id,omitempty"`
}

func (v EvaluationPlanData) Validate() error {
	if len(v.Interviews) == 0 {
		return errors.New("план интервью не может быть пустым")
	}
	seen := map[string]bool{}
	for _, slot := range v.Interviews {
		if slot.ID != "" {
			if seen[slot.ID] {
				return errors.Errorf("слот %v указан в плане более одного раза", slot.ID)
			}
			seen[slot.ID] = true
		}
		if strings.TrimSpace(slot.InterviewerName) == "" {
			return errors.New("не указано имя интервьюера")
		}
	}
	return nil
}

type SendInvitationsData struct {
	Scope models.SendScope `json:"scope"` // all/updated
}

func (v SendInvitationsData) Validate() error {
	return v.Scope.Validate()
}

type CriterionScoreData struct {
	CriterionID string   `json:"criterion_id"`
	Score       *float64 `json:"score,omitempty"`
}

// FormSubmissionData - частичное обновление формы оценки,
// поле применяется только если явно присутствует в запросе.
type FormSubmissionData struct {
	Submitted           *bool                       `json:"submitted,omitempty"`
	Notes               *string                     `json:"notes,omitempty"`
	FitScore            *float64                    `json:"fit_score,omitempty"`
	CaseScore           *float64                    `json:"case_score,omitempty"`
	FitCriteria         *[]CriterionScoreData       `json:"fit_criteria,omitempty"`
	CaseCriteria        *[]CriterionScoreData       `json:"case_criteria,omitempty"`
	OfferRecommendation *models.OfferRecommendation `json:"offer_recommendation,omitempty"`
}

func (v FormSubmissionData) Validate() error {
	if err := validateScore(v.FitScore); err != nil {
		return err
	}
	if err := validateScore(v.CaseScore); err != nil {
		return err
	}
	if v.FitCriteria != nil {
		if err := validateCriteria(*v.FitCriteria); err != nil {
			return err
		}
	}
	if v.CaseCriteria != nil {
		if err := validateCriteria(*v.CaseCriteria); err != nil {
			return err
		}
	}
	if v.OfferRecommendation != nil {
		if err := v.OfferRecommendation.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateScore(score *float64) error {
	if score == nil {
		return nil
	}
	if *score < 0 || *score > 5 {
		return errors.Errorf("оценка вне шкалы 0-5 (%v)", *score)
	}
	return nil
}

func validateCriteria(list []CriterionScoreData) error {
	for _, c := range list {
		if c.CriterionID == "" {
			return errors.New("не указан идентификатор критерия")
		}
		if err := validateScore(c.Score); err != nil {
			return err
		}
	}
	return nil
}

type InvitationStateView struct {
	HasInvitations    bool       `json:"has_invitations"`
	HasPendingChanges bool       `json:"has_pending_changes"`
	LastSentAt        *time.Time `json:"last_sent_at,omitempty"`
}

type SlotView struct {
	ID               string  `json:"id"`
	InterviewerName  string  `json:"interviewer_name"`
	InterviewerEmail string  `json:"interviewer_email"`
	CaseFolderID     *string `json:"case_folder_id,omitempty"`
	FitQuestionID    *string `json:"fit_question_id,omitempty"`
}

type FormView struct {
	SlotID              string                      `json:"slot_id"`
	InterviewerName     string                      `json:"interviewer_name"`
	Submitted           bool                        `json:"submitted"`
	SubmittedAt         *time.Time                  `json:"submitted_at,omitempty"`
	Notes               string                      `json:"notes,omitempty"`
	FitScore            *float64                    `json:"fit_score,omitempty"`
	CaseScore           *float64                    `json:"case_score,omitempty"`
	FitCriteria         []CriterionScoreData        `json:"fit_criteria,omitempty"`
	CaseCriteria        []CriterionScoreData        `json:"case_criteria,omitempty"`
	OfferRecommendation *models.OfferRecommendation `json:"offer_recommendation,omitempty"`
}

type RoundSnapshotView struct {
	RoundNumber      int                      `json:"round_number"`
	Interviews       []SlotView               `json:"interviews"`
	Forms            []FormView               `json:"forms"`
	FitQuestionID    *string                  `json:"fit_question_id,omitempty"`
	ProcessStatus    models.EvalProcessStatus `json:"process_status"`
	ProcessStartedAt *time.Time               `json:"process_started_at,omitempty"`
	CompletedAt      time.Time                `json:"completed_at"`
	CreatedAt        time.Time                `json:"created_at"`
}

type EvaluationView struct {
	ID               string                   `json:"id"`
	CandidateID      *string                  `json:"candidate_id,omitempty"`
	CandidateName    string                   `json:"candidate_name,omitempty"` // заполняется по возможности
	RoundNumber      int                      `json:"round_number"`
	Interviews       []SlotView               `json:"interviews"`
	Forms            []FormView               `json:"forms"`
	FitQuestionID    *string                  `json:"fit_question_id,omitempty"`
	ProcessStatus    models.EvalProcessStatus `json:"process_status"`
	ProcessStartedAt *time.Time               `json:"process_started_at,omitempty"`
	RoundHistory     []RoundSnapshotView      `json:"round_history"`
	InvitationState  InvitationStateView      `json:"invitation_state"`
	Version          int64                    `json:"version"`
	CreationDate     time.Time                `json:"creation_date"`
}

// AssignmentView - приглашение интервьюера с контекстом для списка "мои интервью".
type AssignmentView struct {
	EvaluationID     string     `json:"evaluation_id"`
	SlotID           string     `json:"slot_id"`
	RoundNumber      int        `json:"round_number"`
	CandidateName    string     `json:"candidate_name,omitempty"`
	CaseTitle        string     `json:"case_title,omitempty"`
	FitQuestionTitle string     `json:"fit_question_title,omitempty"`
	InvitationSentAt *time.Time `json:"invitation_sent_at,omitempty"`
	Submitted        bool       `json:"submitted"`
}

func SlotConvert(rec dbmodels.InterviewSlot) SlotView {
	return SlotView{
		ID:               rec.ID,
		InterviewerName:  rec.InterviewerName,
		InterviewerEmail: rec.InterviewerEmail,
		CaseFolderID:     rec.CaseFolderID,
		FitQuestionID:    rec.FitQuestionID,
	}
}

func FormConvert(rec dbmodels.InterviewForm) FormView {
	return FormView{
		SlotID:              rec.SlotID,
		InterviewerName:     rec.InterviewerName,
		Submitted:           rec.Submitted,
		SubmittedAt:         rec.SubmittedAt,
		Notes:               rec.Notes,
		FitScore:            rec.FitScore,
		CaseScore:           rec.CaseScore,
		FitCriteria:         criteriaConvert(rec.FitCriteria),
		CaseCriteria:        criteriaConvert(rec.CaseCriteria),
		OfferRecommendation: rec.OfferRecommendation,
	}
}

func criteriaConvert(list []dbmodels.CriterionScore) []CriterionScoreData {
	if list == nil {
		return nil
	}
	result := make([]CriterionScoreData, 0, len(list))
	for _, c := range list {
		result = append(result, CriterionScoreData{CriterionID: c.CriterionID, Score: c.Score})
	}
	return result
}

func SnapshotConvert(rec dbmodels.EvalRoundSnapshot) RoundSnapshotView {
	view := RoundSnapshotView{
		RoundNumber:      rec.RoundNumber,
		Interviews:       make([]SlotView, 0, len(rec.Interviews)),
		Forms:            make([]FormView, 0, len(rec.Forms)),
		FitQuestionID:    rec.FitQuestionID,
		ProcessStatus:    rec.ProcessStatus,
		ProcessStartedAt: rec.ProcessStartedAt,
		CompletedAt:      rec.CompletedAt,
		CreatedAt:        rec.CreatedAt,
	}
	for _, slot := range rec.Interviews {
		view.Interviews = append(view.Interviews, SlotConvert(slot))
	}
	for _, form := range rec.Forms {
		view.Forms = append(view.Forms, FormConvert(form))
	}
	return view
}

func EvaluationConvert(rec dbmodels.Evaluation, state InvitationStateView, candidateName string) EvaluationView {
	view := EvaluationView{
		ID:               rec.ID,
		CandidateID:      rec.CandidateID,
		CandidateName:    candidateName,
		RoundNumber:      rec.RoundNumber,
		Interviews:       make([]SlotView, 0, len(rec.Interviews)),
		Forms:            make([]FormView, 0, len(rec.Forms)),
		FitQuestionID:    rec.FitQuestionID,
		ProcessStatus:    rec.ProcessStatus,
		ProcessStartedAt: rec.ProcessStartedAt,
		RoundHistory:     make([]RoundSnapshotView, 0, len(rec.RoundHistory)),
		InvitationState:  state,
		Version:          rec.Version,
		CreationDate:     rec.CreatedAt,
	}
	for _, slot := range rec.Interviews {
		view.Interviews = append(view.Interviews, SlotConvert(slot))
	}
	for _, form := range rec.Forms {
		view.Forms = append(view.Forms, FormConvert(form))
	}
	for _, snapshot := range rec.RoundHistory {
		view.RoundHistory = append(view.RoundHistory, SnapshotConvert(snapshot))
	}
	return view
}
