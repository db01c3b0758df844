package evaluationhandler

import (
	"strings"

	"github.com/google/uuid"

	"interview-eval-backend/models"
	dbmodels "interview-eval-backend/models/db"
)

// buildTargets собирает целевой список приглашений из живого плана раунда.
// Каждый слот обязан иметь корректные почту интервьюера, кейс и fit-вопрос.
func buildTargets(rec dbmodels.Evaluation) ([]dbmodels.InterviewAssignment, error) {
	targets := make([]dbmodels.InterviewAssignment, 0, len(rec.Interviews))
	for _, slot := range rec.Interviews {
		email := strings.TrimSpace(slot.InterviewerEmail)
		if email == "" {
			return nil, models.NewEvalErrorf(models.ErrCodeMissingAssignmentData,
				"по слоту %v не указана почта интервьюера", slot.ID)
		}
		if !strings.Contains(email, "@") {
			return nil, models.NewEvalErrorf(models.ErrCodeInvalidAssignmentData,
				"по слоту %v указана некорректная почта интервьюера (%v)", slot.ID, email)
		}
		caseFolderID := strValue(slot.CaseFolderID)
		if caseFolderID == "" {
			return nil, models.NewEvalErrorf(models.ErrCodeMissingAssignmentData,
				"по слоту %v не назначен кейс", slot.ID)
		}
		if _, err := uuid.Parse(caseFolderID); err != nil {
			return nil, models.NewEvalErrorf(models.ErrCodeInvalidAssignmentData,
				"по слоту %v указан некорректный идентификатор кейса (%v)", slot.ID, caseFolderID)
		}
		fitQuestionID := strValue(rec.EffectiveFitQuestionID(slot))
		if fitQuestionID == "" {
			return nil, models.NewEvalErrorf(models.ErrCodeMissingAssignmentData,
				"по слоту %v не назначен fit-вопрос", slot.ID)
		}
		if _, err := uuid.Parse(fitQuestionID); err != nil {
			return nil, models.NewEvalErrorf(models.ErrCodeInvalidAssignmentData,
				"по слоту %v указан некорректный идентификатор fit-вопроса (%v)", slot.ID, fitQuestionID)
		}
		targets = append(targets, dbmodels.InterviewAssignment{
			EvaluationID:     rec.ID,
			SlotID:           slot.ID,
			RoundNumber:      rec.RoundNumber,
			InterviewerEmail: email,
			InterviewerName:  strings.TrimSpace(slot.InterviewerName),
			CaseFolderID:     caseFolderID,
			FitQuestionID:    fitQuestionID,
		})
	}
	return targets, nil
}

// diffAssignments делит целевой список на изменившиеся слоты (нужна повторная отправка)
// и находит приглашения по слотам, убранным из плана.
func diffAssignments(targets []dbmodels.InterviewAssignment, existing []dbmodels.InterviewAssignment, roundNumber int) (changedSlotIDs []string, removedSlotIDs []string) {
	existingMap := map[string]dbmodels.InterviewAssignment{}
	for _, a := range existing {
		if a.RoundNumber != roundNumber {
			continue
		}
		existingMap[a.SlotID] = a
	}
	targetSlots := map[string]bool{}
	for _, target := range targets {
		targetSlots[target.SlotID] = true
		current, ok := existingMap[target.SlotID]
		if !ok {
			changedSlotIDs = append(changedSlotIDs, target.SlotID)
			continue
		}
		if !strings.EqualFold(current.InterviewerEmail, target.InterviewerEmail) ||
			strings.TrimSpace(current.InterviewerName) != target.InterviewerName ||
			current.CaseFolderID != target.CaseFolderID ||
			current.FitQuestionID != target.FitQuestionID {
			changedSlotIDs = append(changedSlotIDs, target.SlotID)
		}
	}
	for slotID := range existingMap {
		if !targetSlots[slotID] {
			removedSlotIDs = append(removedSlotIDs, slotID)
		}
	}
	return changedSlotIDs, removedSlotIDs
}
