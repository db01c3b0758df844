package evaluationhandler

import (
	"strings"
	"time"

	dbmodels "interview-eval-backend/models/db"
)

type InvitationState struct {
	HasInvitations    bool
	HasPendingChanges bool
	LastSentAt        *time.Time
}

// ComputeInvitationState сравнивает живой план раунда с сохраненными приглашениями.
// Чистая функция, без обращений к БД.
func ComputeInvitationState(rec dbmodels.Evaluation, assignments []dbmodels.InterviewAssignment) InvitationState {
	state := InvitationState{}
	roundAssignments := map[string]dbmodels.InterviewAssignment{}
	for _, a := range assignments {
		if a.RoundNumber != rec.RoundNumber {
			continue
		}
		roundAssignments[a.SlotID] = a
	}
	liveSlots := map[string]bool{}
	for _, slot := range rec.Interviews {
		liveSlots[slot.ID] = true
		assignment, ok := roundAssignments[slot.ID]
		if !ok {
			// по слоту еще никого не приглашали
			state.HasPendingChanges = true
			continue
		}
		state.HasInvitations = true
		if !assignmentMatchesSlot(rec, slot, assignment) {
			state.HasPendingChanges = true
		}
		if assignment.InvitationSentAt != nil &&
			(state.LastSentAt == nil || assignment.InvitationSentAt.After(*state.LastSentAt)) {
			sentAt := *assignment.InvitationSentAt
			state.LastSentAt = &sentAt
		}
	}
	for slotID := range roundAssignments {
		if !liveSlots[slotID] {
			// приглашение по слоту, которого больше нет в плане
			state.HasPendingChanges = true
		}
	}
	if !state.HasInvitations {
		state.HasPendingChanges = true
	}
	return state
}

func assignmentMatchesSlot(rec dbmodels.Evaluation, slot dbmodels.InterviewSlot, assignment dbmodels.InterviewAssignment) bool {
	if !strings.EqualFold(strings.TrimSpace(slot.InterviewerEmail), strings.TrimSpace(assignment.InterviewerEmail)) {
		return false
	}
	if strings.TrimSpace(slot.InterviewerName) != strings.TrimSpace(assignment.InterviewerName) {
		return false
	}
	if strValue(slot.CaseFolderID) != assignment.CaseFolderID {
		return false
	}
	if strValue(rec.EffectiveFitQuestionID(slot)) != assignment.FitQuestionID {
		return false
	}
	return true
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
