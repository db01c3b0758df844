package evaluationhandler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"interview-eval-backend/models"
	dbmodels "interview-eval-backend/models/db"
)

func TestBuildTargets(t *testing.T) {
	t.Run(`корректный план превращается в цели приглашений`, func(t *testing.T) {
		s1 := testSlot(" Ivanov@Example.com ")
		s1.InterviewerName = "  Иванов  "
		rec := makeEval(s1)

		targets, err := buildTargets(rec)
		require.NoError(t, err)
		require.Len(t, targets, 1)
		require.Equal(t, rec.ID, targets[0].EvaluationID)
		require.Equal(t, s1.ID, targets[0].SlotID)
		require.Equal(t, rec.RoundNumber, targets[0].RoundNumber)
		require.Equal(t, "Ivanov@Example.com", targets[0].InterviewerEmail)
		require.Equal(t, "Иванов", targets[0].InterviewerName)
		require.Equal(t, *s1.CaseFolderID, targets[0].CaseFolderID)
		require.Equal(t, *s1.FitQuestionID, targets[0].FitQuestionID)
	})

	t.Run(`fit-вопрос слота берется вместо общего вопроса раунда`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		globalQuestion := uuid.NewString()
		rec := makeEval(s1)
		rec.FitQuestionID = &globalQuestion

		targets, err := buildTargets(rec)
		require.NoError(t, err)
		require.Equal(t, *s1.FitQuestionID, targets[0].FitQuestionID)
	})

	t.Run(`общий fit-вопрос раунда закрывает слот без своего вопроса`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		s1.FitQuestionID = nil
		globalQuestion := uuid.NewString()
		rec := makeEval(s1)
		rec.FitQuestionID = &globalQuestion

		targets, err := buildTargets(rec)
		require.NoError(t, err)
		require.Equal(t, globalQuestion, targets[0].FitQuestionID)
	})

	t.Run(`пустая почта интервьюера`, func(t *testing.T) {
		s1 := testSlot("   ")
		rec := makeEval(s1)

		_, err := buildTargets(rec)
		require.True(t, models.IsEvalError(err, models.ErrCodeMissingAssignmentData))
	})

	t.Run(`почта без @`, func(t *testing.T) {
		s1 := testSlot("ivanov.example.com")
		rec := makeEval(s1)

		_, err := buildTargets(rec)
		require.True(t, models.IsEvalError(err, models.ErrCodeInvalidAssignmentData))
	})

	t.Run(`слот без кейса`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		s1.CaseFolderID = nil
		rec := makeEval(s1)

		_, err := buildTargets(rec)
		require.True(t, models.IsEvalError(err, models.ErrCodeMissingAssignmentData))
	})

	t.Run(`кейс с некорректным идентификатором`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		badID := "not-a-uuid"
		s1.CaseFolderID = &badID
		rec := makeEval(s1)

		_, err := buildTargets(rec)
		require.True(t, models.IsEvalError(err, models.ErrCodeInvalidAssignmentData))
	})

	t.Run(`слот без fit-вопроса при отсутствии общего вопроса раунда`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		s1.FitQuestionID = nil
		rec := makeEval(s1)

		_, err := buildTargets(rec)
		require.True(t, models.IsEvalError(err, models.ErrCodeMissingAssignmentData))
	})

	t.Run(`fit-вопрос с некорректным идентификатором`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		badID := "42"
		s1.FitQuestionID = &badID
		rec := makeEval(s1)

		_, err := buildTargets(rec)
		require.True(t, models.IsEvalError(err, models.ErrCodeInvalidAssignmentData))
	})
}

func TestDiffAssignments(t *testing.T) {
	buildFor := func(t *testing.T, rec dbmodels.Evaluation) []dbmodels.InterviewAssignment {
		targets, err := buildTargets(rec)
		require.NoError(t, err)
		return targets
	}

	t.Run(`без сохраненных приглашений все слоты новые`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		s2 := testSlot("petrov@example.com")
		rec := makeEval(s1, s2)

		changed, removed := diffAssignments(buildFor(t, rec), nil, rec.RoundNumber)
		require.ElementsMatch(t, []string{s1.ID, s2.ID}, changed)
		require.Empty(t, removed)
	})

	t.Run(`совпадающие приглашения не попадают в изменившиеся`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		rec := makeEval(s1)
		existing := []dbmodels.InterviewAssignment{makeAssignment(rec, s1, nil)}

		changed, removed := diffAssignments(buildFor(t, rec), existing, rec.RoundNumber)
		require.Empty(t, changed)
		require.Empty(t, removed)
	})

	t.Run(`регистр почты не считается изменением`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		rec := makeEval(s1)
		a := makeAssignment(rec, s1, nil)
		a.InterviewerEmail = "IVANOV@example.com"

		changed, _ := diffAssignments(buildFor(t, rec), []dbmodels.InterviewAssignment{a}, rec.RoundNumber)
		require.Empty(t, changed)
	})

	t.Run(`смена интервьюера на слоте`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		rec := makeEval(s1)
		a := makeAssignment(rec, s1, nil)
		a.InterviewerEmail = "sidorov@example.com"

		changed, removed := diffAssignments(buildFor(t, rec), []dbmodels.InterviewAssignment{a}, rec.RoundNumber)
		require.Equal(t, []string{s1.ID}, changed)
		require.Empty(t, removed)
	})

	t.Run(`смена кейса на слоте`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		rec := makeEval(s1)
		a := makeAssignment(rec, s1, nil)
		a.CaseFolderID = uuid.NewString()

		changed, _ := diffAssignments(buildFor(t, rec), []dbmodels.InterviewAssignment{a}, rec.RoundNumber)
		require.Equal(t, []string{s1.ID}, changed)
	})

	t.Run(`убранный из плана слот попадает в удаляемые`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		removedSlot := testSlot("petrov@example.com")
		rec := makeEval(s1)
		existing := []dbmodels.InterviewAssignment{
			makeAssignment(rec, s1, nil),
			makeAssignment(rec, removedSlot, nil),
		}

		changed, removed := diffAssignments(buildFor(t, rec), existing, rec.RoundNumber)
		require.Empty(t, changed)
		require.Equal(t, []string{removedSlot.ID}, removed)
	})

	t.Run(`приглашения прошлых раундов не участвуют в сравнении`, func(t *testing.T) {
		s1 := testSlot("ivanov@example.com")
		rec := makeEval(s1)
		rec.RoundNumber = 2
		old := makeAssignment(rec, s1, nil)
		old.RoundNumber = 1

		changed, removed := diffAssignments(buildFor(t, rec), []dbmodels.InterviewAssignment{old}, rec.RoundNumber)
		require.Equal(t, []string{s1.ID}, changed)
		require.Empty(t, removed)
	})
}
