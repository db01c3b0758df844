package evaluationhandler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"interview-eval-backend/models"
	evalapimodels "interview-eval-backend/models/api/evaluation"
	dbmodels "interview-eval-backend/models/db"
)

func ptrBool(v bool) *bool        { return &v }
func ptrFloat(v float64) *float64 { return &v }
func ptrStr(v string) *string     { return &v }

func seedInvited(t *testing.T, env *testEnv, slots ...dbmodels.InterviewSlot) string {
	id := env.seedEvaluation(t, models.EvalProcessDraft, slots...)
	_, err := env.handler.SendInvitations(id, sendAll())
	require.Nil(t, err)
	return id
}

func TestSubmitForm(t *testing.T) {
	t.Run(`среднее по критериям с округлением до 1 знака`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		id := seedInvited(t, env, s1)

		view, err := env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			FitCriteria: &[]evalapimodels.CriterionScoreData{
				{CriterionID: "a", Score: ptrFloat(4)},
				{CriterionID: "b", Score: ptrFloat(5)},
			},
		})
		require.Nil(t, err)
		require.NotNil(t, view.Forms[0].FitScore)
		require.Equal(t, 4.5, *view.Forms[0].FitScore)
	})

	t.Run(`пустые критерии - берется явная оценка`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		id := seedInvited(t, env, s1)

		view, err := env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			FitCriteria: &[]evalapimodels.CriterionScoreData{},
			FitScore:    ptrFloat(3),
		})
		require.Nil(t, err)
		require.Equal(t, 3.0, *view.Forms[0].FitScore)
	})

	t.Run(`частичное обновление не трогает прочие поля`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		id := seedInvited(t, env, s1)

		_, err := env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			CaseScore: ptrFloat(4),
			Notes:     ptrStr("сильный кандидат"),
		})
		require.Nil(t, err)

		view, err := env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			FitScore: ptrFloat(2),
		})
		require.Nil(t, err)
		require.Equal(t, 4.0, *view.Forms[0].CaseScore)
		require.Equal(t, 2.0, *view.Forms[0].FitScore)
		require.Equal(t, "сильный кандидат", view.Forms[0].Notes)
	})

	t.Run(`чужая почта - ACCESS_DENIED без изменения записи`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		id := seedInvited(t, env, s1)
		before, _ := env.store.GetByID(id)

		_, err := env.handler.SubmitForm(id, s1.ID, "petrov@example.com", evalapimodels.FormSubmissionData{
			FitScore: ptrFloat(5),
		})
		require.True(t, models.IsEvalError(err, models.ErrCodeAccessDenied))
		after, _ := env.store.GetByID(id)
		require.Equal(t, before.Version, after.Version)
		require.Nil(t, after.Forms[0].FitScore)
	})

	t.Run(`регистр почты не мешает доступу`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		id := seedInvited(t, env, s1)

		_, err := env.handler.SubmitForm(id, s1.ID, "Ivanov@Example.COM", evalapimodels.FormSubmissionData{
			FitScore: ptrFloat(5),
		})
		require.Nil(t, err)
	})

	t.Run(`повторная отправка - FORM_ALREADY_SUBMITTED, форма не меняется`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		s2 := env.newSlot("petrov@example.com", "Петров")
		id := seedInvited(t, env, s1, s2)

		_, err := env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			FitScore:  ptrFloat(4),
			Submitted: ptrBool(true),
		})
		require.Nil(t, err)

		_, err = env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			FitScore: ptrFloat(1),
		})
		require.True(t, models.IsEvalError(err, models.ErrCodeFormAlreadySubmitted))
		rec, _ := env.store.GetByID(id)
		form := rec.FindForm(s1.ID)
		require.Equal(t, 4.0, *form.FitScore)
		require.True(t, form.Submitted)
		require.NotNil(t, form.SubmittedAt)
	})

	t.Run(`последняя отправленная форма завершает процесс, но не раунд`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		s2 := env.newSlot("petrov@example.com", "Петров")
		id := seedInvited(t, env, s1, s2)

		view, err := env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			Submitted: ptrBool(true),
		})
		require.Nil(t, err)
		require.Equal(t, models.EvalProcessInProgress, view.ProcessStatus)

		view, err = env.handler.SubmitForm(id, s2.ID, "petrov@example.com", evalapimodels.FormSubmissionData{
			Submitted: ptrBool(true),
			OfferRecommendation: func() *models.OfferRecommendation {
				v := models.OfferYesStrong
				return &v
			}(),
		})
		require.Nil(t, err)
		require.Equal(t, models.EvalProcessCompleted, view.ProcessStatus)
		require.Equal(t, 1, view.RoundNumber) // раунд продвигается отдельной операцией
	})

	t.Run(`оценка вне шкалы - INVALID_INPUT`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		id := seedInvited(t, env, s1)

		_, err := env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			FitScore: ptrFloat(7),
		})
		require.True(t, models.IsEvalError(err, models.ErrCodeInvalidInput))
	})

	t.Run(`слот без приглашения - NOT_FOUND`, func(t *testing.T) {
		env := newTestEnv(testPortalURL)
		s1 := env.newSlot("ivanov@example.com", "Иванов")
		id := env.seedEvaluation(t, models.EvalProcessDraft, s1)

		_, err := env.handler.SubmitForm(id, s1.ID, "ivanov@example.com", evalapimodels.FormSubmissionData{
			FitScore: ptrFloat(3),
		})
		require.True(t, models.IsEvalError(err, models.ErrCodeNotFound))
	})
}
