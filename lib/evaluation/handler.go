package evaluationhandler

import (
	"math"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"interview-eval-backend/config"
	"interview-eval-backend/db"
	candidatestore "interview-eval-backend/lib/candidate/store"
	casefolderstore "interview-eval-backend/lib/case-folder/store"
	assignmentstore "interview-eval-backend/lib/evaluation/assignment-store"
	evaluationstore "interview-eval-backend/lib/evaluation/store"
	fitquestionstore "interview-eval-backend/lib/fit-question/store"
	"interview-eval-backend/lib/smtp"
	usershandler "interview-eval-backend/lib/users"
	"interview-eval-backend/models"
	evalapimodels "interview-eval-backend/models/api/evaluation"
	dbmodels "interview-eval-backend/models/db"
)

const draftInterviewerName = "Interviewer"

type Provider interface {
	Create(candidateID *string) (id string, err error)
	Get(id string) (evalapimodels.EvaluationView, error)
	List() ([]evalapimodels.EvaluationView, error)
	UpdatePlan(id string, payload evalapimodels.EvaluationPlanData) (evalapimodels.EvaluationView, error)
	// SendInvitations сверяет план раунда с отправленными приглашениями и рассылает недостающие.
	// Повторная рассылка без изменений плана - безопасный no-op.
	// Гонка двух рассылок по одной оценке не блокируется: проигравший условную запись
	// мог успеть отправить письма повторно, доставка приглашений - at-least-once.
	SendInvitations(id string, payload evalapimodels.SendInvitationsData) (evalapimodels.EvaluationView, error)
	AdvanceRound(id string) (evalapimodels.EvaluationView, error)
	SubmitForm(id, slotID, email string, payload evalapimodels.FormSubmissionData) (evalapimodels.EvaluationView, error)
	ListByInterviewer(email string) ([]evalapimodels.AssignmentView, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(
		evaluationstore.NewInstance(db.DB),
		assignmentstore.NewInstance(db.DB),
		candidatestore.NewInstance(db.DB),
		casefolderstore.NewInstance(db.DB),
		fitquestionstore.NewInstance(db.DB),
		usershandler.Instance,
		smtp.Instance,
		config.Conf.Portal.BaseURL,
	)
}

func NewProvider(
	store evaluationstore.Provider,
	assignmentStore assignmentstore.Provider,
	candidateStore candidatestore.Provider,
	caseFolderStore casefolderstore.Provider,
	fitQuestionStore fitquestionstore.Provider,
	users usershandler.Provider,
	mailer smtp.Provider,
	portalBaseURL string,
) Provider {
	return &impl{
		store:            store,
		assignmentStore:  assignmentStore,
		candidateStore:   candidateStore,
		caseFolderStore:  caseFolderStore,
		fitQuestionStore: fitQuestionStore,
		users:            users,
		mailer:           mailer,
		portalBaseURL:    portalBaseURL,
	}
}

type impl struct {
	store            evaluationstore.Provider
	assignmentStore  assignmentstore.Provider
	candidateStore   candidatestore.Provider
	caseFolderStore  casefolderstore.Provider
	fitQuestionStore fitquestionstore.Provider
	users            usershandler.Provider
	mailer           smtp.Provider
	portalBaseURL    string
}

func (i impl) getLogger(evaluationID string) *log.Entry {
	return log.WithField("evaluation_id", evaluationID)
}

func (i impl) Create(candidateID *string) (string, error) {
	slot, form := newDraftSlot()
	rec := dbmodels.Evaluation{
		CandidateID:   candidateID,
		RoundNumber:   1,
		Interviews:    dbmodels.InterviewSlots{slot},
		Forms:         dbmodels.InterviewForms{form},
		ProcessStatus: models.EvalProcessDraft,
		RoundHistory:  dbmodels.EvalRoundHistory{},
		Version:       1,
	}
	return i.store.Create(rec)
}

func (i impl) Get(id string) (evalapimodels.EvaluationView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	if rec == nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeNotFound, "запись оценки не найдена")
	}
	return i.view(*rec)
}

func (i impl) List() ([]evalapimodels.EvaluationView, error) {
	list, err := i.store.List()
	if err != nil {
		return nil, err
	}
	result := make([]evalapimodels.EvaluationView, 0, len(list))
	for _, rec := range list {
		view, err := i.view(rec)
		if err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, nil
}

func (i impl) UpdatePlan(id string, payload evalapimodels.EvaluationPlanData) (evalapimodels.EvaluationView, error) {
	if err := payload.Validate(); err != nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeInvalidInput, err.Error())
	}
	rec, err := i.store.GetByID(id)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	if rec == nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeNotFound, "запись оценки не найдена")
	}

	interviews := make(dbmodels.InterviewSlots, 0, len(payload.Interviews))
	forms := make(dbmodels.InterviewForms, 0, len(payload.Interviews))
	for _, slotData := range payload.Interviews {
		slot := dbmodels.InterviewSlot{
			ID:               slotData.ID,
			InterviewerName:  strings.TrimSpace(slotData.InterviewerName),
			InterviewerEmail: strings.TrimSpace(slotData.InterviewerEmail),
			CaseFolderID:     slotData.CaseFolderID,
			FitQuestionID:    slotData.FitQuestionID,
		}
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		form := dbmodels.InterviewForm{
			SlotID:          slot.ID,
			InterviewerName: slot.InterviewerName,
		}
		if current := rec.FindForm(slot.ID); current != nil {
			form = *current
			if !form.Submitted {
				form.InterviewerName = slot.InterviewerName
			}
		}
		interviews = append(interviews, slot)
		forms = append(forms, form)
	}
	// слот с отправленной формой убрать из плана нельзя
	for _, form := range rec.Forms {
		if !form.Submitted {
			continue
		}
		kept := false
		for _, slot := range interviews {
			if slot.ID == form.SlotID {
				kept = true
				break
			}
		}
		if !kept {
			return evalapimodels.EvaluationView{}, models.NewEvalErrorf(models.ErrCodeInvalidInput,
				"слот %v с отправленной формой нельзя убрать из плана", form.SlotID)
		}
	}

	rec.Interviews = interviews
	rec.Forms = forms
	if payload.CandidateID != nil {
		rec.CandidateID = payload.CandidateID
	}
	if payload.FitQuestionID != nil {
		rec.FitQuestionID = payload.FitQuestionID
	}
	return i.conditionalUpdate(*rec)
}

func (i impl) SendInvitations(id string, payload evalapimodels.SendInvitationsData) (evalapimodels.EvaluationView, error) {
	if err := payload.Validate(); err != nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeInvalidInput, err.Error())
	}
	logger := i.getLogger(id)
	rec, err := i.store.GetByID(id)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	if rec == nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeNotFound, "запись оценки не найдена")
	}

	targets, err := buildTargets(*rec)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	existing, err := i.assignmentStore.ListByEvaluation(id)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	changedSlotIDs, removedSlotIDs := diffAssignments(targets, existing, rec.RoundNumber)

	scope := payload.Scope
	if rec.ProcessStatus == models.EvalProcessDraft {
		// первая активация раунда всегда рассылает всем
		scope = models.SendScopeAll
	}
	if scope == models.SendScopeUpdated && len(changedSlotIDs) == 0 && len(removedSlotIDs) == 0 {
		logger.Info("план не менялся, повторная рассылка не требуется")
		return i.view(*rec)
	}

	sendSet := targets
	if scope == models.SendScopeUpdated {
		changed := map[string]bool{}
		for _, slotID := range changedSlotIDs {
			changed[slotID] = true
		}
		sendSet = make([]dbmodels.InterviewAssignment, 0, len(changedSlotIDs))
		for _, target := range targets {
			if changed[target.SlotID] {
				sendSet = append(sendSet, target)
			}
		}
	}

	portalBase, err := parsePortalBase(i.portalBaseURL)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	candidateName := i.candidateName(logger, rec.CandidateID)
	for _, target := range sendSet {
		if err = i.deliver(logger, *rec, target, portalBase, candidateName); err != nil {
			return evalapimodels.EvaluationView{}, err
		}
	}

	refreshSlotIDs := make([]string, 0, len(sendSet))
	for _, target := range sendSet {
		refreshSlotIDs = append(refreshSlotIDs, target.SlotID)
	}
	opts := assignmentstore.StoreOptions{
		RoundNumber:     rec.RoundNumber,
		RemovedSlotIDs:  removedSlotIDs,
		RefreshSlotIDs:  refreshSlotIDs,
		SentAt:          time.Now(),
		Status:          models.EvalProcessInProgress,
		UpdateStartedAt: true,
		ExpectedVersion: rec.Version,
	}
	if err = i.assignmentStore.Store(id, targets, opts); err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	logger.WithField("sent_count", len(sendSet)).Info("приглашения на интервью разосланы")
	return i.Get(id)
}

func (i impl) deliver(logger *log.Entry, rec dbmodels.Evaluation, target dbmodels.InterviewAssignment, portalBase *url.URL, candidateName string) error {
	if _, err := i.users.EnsureAccount(target.InterviewerEmail, target.InterviewerName); err != nil {
		return err
	}
	caseFolder, err := i.caseFolderStore.GetByID(target.CaseFolderID)
	if err != nil {
		return err
	}
	if caseFolder == nil {
		return models.NewEvalErrorf(models.ErrCodeInvalidAssignmentResources,
			"кейс %v по слоту %v не найден", target.CaseFolderID, target.SlotID)
	}
	fitQuestion, err := i.fitQuestionStore.GetByID(target.FitQuestionID)
	if err != nil {
		return err
	}
	if fitQuestion == nil {
		return models.NewEvalErrorf(models.ErrCodeInvalidAssignmentResources,
			"fit-вопрос %v по слоту %v не найден", target.FitQuestionID, target.SlotID)
	}
	mail := smtp.InterviewAssignmentMail{
		CandidateName:    candidateName,
		InterviewerName:  target.InterviewerName,
		CaseTitle:        caseFolder.Title,
		FitQuestionTitle: fitQuestion.Title,
		Link:             buildPortalLink(portalBase, rec.ID, target.SlotID),
	}
	if err = i.mailer.SendInterviewAssignment(target.InterviewerEmail, mail); err != nil {
		return err
	}
	logger.WithField("interviewer_email", target.InterviewerEmail).Info("отправлено приглашение на интервью")
	return nil
}

func (i impl) AdvanceRound(id string) (evalapimodels.EvaluationView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	if rec == nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeNotFound, "запись оценки не найдена")
	}
	if len(rec.Forms) == 0 {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeFormsPending, "в раунде нет ни одной формы оценки")
	}
	for _, form := range rec.Forms {
		if !form.Submitted {
			return evalapimodels.EvaluationView{}, models.NewEvalErrorf(models.ErrCodeFormsPending,
				"форма по слоту %v еще не отправлена", form.SlotID)
		}
	}

	now := time.Now()
	snapshot := dbmodels.EvalRoundSnapshot{
		RoundNumber:      rec.RoundNumber,
		Interviews:       rec.Interviews,
		Forms:            rec.Forms,
		FitQuestionID:    rec.FitQuestionID,
		ProcessStatus:    models.EvalProcessCompleted,
		ProcessStartedAt: rec.ProcessStartedAt,
		CompletedAt:      now,
		CreatedAt:        rec.CreatedAt,
	}
	history := make(dbmodels.EvalRoundHistory, 0, len(rec.RoundHistory)+1)
	for _, prior := range rec.RoundHistory {
		if prior.RoundNumber == snapshot.RoundNumber {
			// повторный снимок того же раунда замещает прежний
			snapshot.CreatedAt = prior.CreatedAt
			continue
		}
		history = append(history, prior)
	}
	history = append(history, snapshot)
	sort.Slice(history, func(a, b int) bool {
		return history[a].RoundNumber < history[b].RoundNumber
	})

	slot, form := newDraftSlot()
	rec.RoundNumber++
	rec.Interviews = dbmodels.InterviewSlots{slot}
	rec.Forms = dbmodels.InterviewForms{form}
	rec.FitQuestionID = nil
	rec.ProcessStatus = models.EvalProcessDraft
	rec.ProcessStartedAt = nil
	rec.RoundHistory = history
	return i.conditionalUpdate(*rec)
}

func (i impl) SubmitForm(id, slotID, email string, payload evalapimodels.FormSubmissionData) (evalapimodels.EvaluationView, error) {
	if err := payload.Validate(); err != nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeInvalidInput, err.Error())
	}
	assignment, err := i.assignmentStore.Find(id, slotID)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	if assignment == nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeNotFound, "приглашение по слоту не найдено")
	}
	if !strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(assignment.InterviewerEmail)) {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeAccessDenied,
			"форма доступна только приглашенному интервьюеру")
	}
	rec, err := i.store.GetByID(id)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	if rec == nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeNotFound, "запись оценки не найдена")
	}
	form := rec.FindForm(slotID)
	if form == nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeNotFound, "форма по слоту не найдена в текущем раунде")
	}
	if form.Submitted {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeFormAlreadySubmitted,
			"форма уже отправлена и не подлежит изменению")
	}

	mergeForm(form, payload)
	if payload.Submitted != nil && *payload.Submitted {
		now := time.Now()
		form.Submitted = true
		form.SubmittedAt = &now
	}
	if allFormsSubmitted(rec.Forms) {
		rec.ProcessStatus = models.EvalProcessCompleted
	}
	return i.conditionalUpdate(*rec)
}

func (i impl) ListByInterviewer(email string) ([]evalapimodels.AssignmentView, error) {
	assignments, err := i.assignmentStore.ListByEmail(email)
	if err != nil {
		return nil, err
	}
	result := make([]evalapimodels.AssignmentView, 0, len(assignments))
	for _, assignment := range assignments {
		logger := i.getLogger(assignment.EvaluationID).WithField("slot_id", assignment.SlotID)
		rec, err := i.store.GetByID(assignment.EvaluationID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			logger.Warn("приглашение ссылается на несуществующую оценку")
			continue
		}
		view := evalapimodels.AssignmentView{
			EvaluationID:     assignment.EvaluationID,
			SlotID:           assignment.SlotID,
			RoundNumber:      assignment.RoundNumber,
			CandidateName:    i.candidateName(logger, rec.CandidateID),
			InvitationSentAt: assignment.InvitationSentAt,
			Submitted:        formSubmitted(*rec, assignment),
		}
		// названия кейса и вопроса - только контекст списка, их отсутствие не фатально
		if caseFolder, err := i.caseFolderStore.GetByID(assignment.CaseFolderID); err == nil && caseFolder != nil {
			view.CaseTitle = caseFolder.Title
		} else {
			logger.WithField("case_folder_id", assignment.CaseFolderID).Warn("кейс недоступен, список вернется без его названия")
		}
		if fitQuestion, err := i.fitQuestionStore.GetByID(assignment.FitQuestionID); err == nil && fitQuestion != nil {
			view.FitQuestionTitle = fitQuestion.Title
		} else {
			logger.WithField("fit_question_id", assignment.FitQuestionID).Warn("fit-вопрос недоступен, список вернется без его названия")
		}
		result = append(result, view)
	}
	return result, nil
}

func (i impl) conditionalUpdate(rec dbmodels.Evaluation) (evalapimodels.EvaluationView, error) {
	updated, err := i.store.Update(rec, rec.Version)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	if updated == nil {
		return evalapimodels.EvaluationView{}, models.NewEvalError(models.ErrCodeNotFound, "запись оценки не найдена")
	}
	return i.view(*updated)
}

func (i impl) view(rec dbmodels.Evaluation) (evalapimodels.EvaluationView, error) {
	assignments, err := i.assignmentStore.ListByEvaluation(rec.ID)
	if err != nil {
		return evalapimodels.EvaluationView{}, err
	}
	state := ComputeInvitationState(rec, assignments)
	stateView := evalapimodels.InvitationStateView{
		HasInvitations:    state.HasInvitations,
		HasPendingChanges: state.HasPendingChanges,
		LastSentAt:        state.LastSentAt,
	}
	candidateName := i.candidateName(i.getLogger(rec.ID), rec.CandidateID)
	return evalapimodels.EvaluationConvert(rec, stateView, candidateName), nil
}

func (i impl) candidateName(logger *log.Entry, candidateID *string) string {
	if candidateID == nil || *candidateID == "" {
		return ""
	}
	rec, err := i.candidateStore.GetByID(*candidateID)
	if err != nil {
		logger.WithError(err).Warn("ошибка получения кандидата, контекст будет неполным")
		return ""
	}
	if rec == nil {
		logger.WithField("candidate_id", *candidateID).Warn("кандидат не найден, контекст будет неполным")
		return ""
	}
	return rec.GetFullName()
}

func newDraftSlot() (dbmodels.InterviewSlot, dbmodels.InterviewForm) {
	slot := dbmodels.InterviewSlot{
		ID:              uuid.NewString(),
		InterviewerName: draftInterviewerName,
	}
	form := dbmodels.InterviewForm{
		SlotID:          slot.ID,
		InterviewerName: slot.InterviewerName,
	}
	return slot, form
}

func allFormsSubmitted(forms dbmodels.InterviewForms) bool {
	for _, form := range forms {
		if !form.Submitted {
			return false
		}
	}
	return len(forms) > 0
}

func formSubmitted(rec dbmodels.Evaluation, assignment dbmodels.InterviewAssignment) bool {
	if assignment.RoundNumber == rec.RoundNumber {
		if form := rec.FindForm(assignment.SlotID); form != nil {
			return form.Submitted
		}
		return false
	}
	for _, snapshot := range rec.RoundHistory {
		if snapshot.RoundNumber != assignment.RoundNumber {
			continue
		}
		for _, form := range snapshot.Forms {
			if form.SlotID == assignment.SlotID {
				return form.Submitted
			}
		}
	}
	return false
}

func mergeForm(form *dbmodels.InterviewForm, payload evalapimodels.FormSubmissionData) {
	if payload.Notes != nil {
		form.Notes = *payload.Notes
	}
	if payload.FitCriteria != nil {
		form.FitCriteria = criteriaFromData(*payload.FitCriteria)
		form.FitScore = resolveScore(form.FitCriteria, payload.FitScore, form.FitScore)
	} else if payload.FitScore != nil {
		form.FitScore = payload.FitScore
	}
	if payload.CaseCriteria != nil {
		form.CaseCriteria = criteriaFromData(*payload.CaseCriteria)
		form.CaseScore = resolveScore(form.CaseCriteria, payload.CaseScore, form.CaseScore)
	} else if payload.CaseScore != nil {
		form.CaseScore = payload.CaseScore
	}
	if payload.OfferRecommendation != nil {
		form.OfferRecommendation = payload.OfferRecommendation
	}
}

func criteriaFromData(list []evalapimodels.CriterionScoreData) []dbmodels.CriterionScore {
	result := make([]dbmodels.CriterionScore, 0, len(list))
	for _, c := range list {
		result = append(result, dbmodels.CriterionScore{CriterionID: c.CriterionID, Score: c.Score})
	}
	return result
}

// resolveScore: среднее по заполненным критериям с округлением до 1 знака,
// иначе явно переданная оценка, иначе прежнее значение.
func resolveScore(criteria []dbmodels.CriterionScore, direct *float64, previous *float64) *float64 {
	var sum float64
	var count int
	for _, c := range criteria {
		if c.Score != nil {
			sum += *c.Score
			count++
		}
	}
	if count > 0 {
		mean := math.Round(sum/float64(count)*10) / 10
		return &mean
	}
	if direct != nil {
		return direct
	}
	return previous
}

func parsePortalBase(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, models.NewEvalErrorf(models.ErrCodeInvalidPortalURL,
			"не настроен абсолютный http(s) адрес портала (%v)", raw)
	}
	return u, nil
}

func buildPortalLink(base *url.URL, evaluationID, slotID string) string {
	link := *base
	link.Path = path.Join(link.Path, "interview")
	query := link.Query()
	query.Set("evaluation_id", evaluationID)
	query.Set("slot_id", slotID)
	link.RawQuery = query.Encode()
	return link.String()
}
