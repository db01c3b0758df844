package evaluationhandler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	assignmentstore "interview-eval-backend/lib/evaluation/assignment-store"
	"interview-eval-backend/lib/smtp"
	"interview-eval-backend/models"
	dbmodels "interview-eval-backend/models/db"
)

// копия через json, чтобы тестовое хранилище не делило срезы с вызывающим кодом
func deepCopy(src, dst interface{}) {
	raw, err := json.Marshal(src)
	if err != nil {
		panic(err)
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		panic(err)
	}
}

type fakeEvalStore struct {
	recs map[string]*dbmodels.Evaluation
}

func newFakeEvalStore() *fakeEvalStore {
	return &fakeEvalStore{recs: map[string]*dbmodels.Evaluation{}}
}

func (s *fakeEvalStore) Create(rec dbmodels.Evaluation) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now()
	stored := dbmodels.Evaluation{}
	deepCopy(rec, &stored)
	s.recs[rec.ID] = &stored
	return rec.ID, nil
}

func (s *fakeEvalStore) GetByID(id string) (*dbmodels.Evaluation, error) {
	stored, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	rec := dbmodels.Evaluation{}
	deepCopy(stored, &rec)
	return &rec, nil
}

func (s *fakeEvalStore) List() ([]dbmodels.Evaluation, error) {
	list := make([]dbmodels.Evaluation, 0, len(s.recs))
	for id := range s.recs {
		rec, _ := s.GetByID(id)
		list = append(list, *rec)
	}
	return list, nil
}

func (s *fakeEvalStore) Update(rec dbmodels.Evaluation, expectedVersion int64) (*dbmodels.Evaluation, error) {
	stored, ok := s.recs[rec.ID]
	if !ok {
		return nil, nil
	}
	if stored.Version != expectedVersion {
		return nil, models.NewEvalError(models.ErrCodeVersionConflict, "запись оценки изменена параллельным запросом")
	}
	rec.Version = expectedVersion + 1
	rec.CreatedAt = stored.CreatedAt
	updated := dbmodels.Evaluation{}
	deepCopy(rec, &updated)
	s.recs[rec.ID] = &updated
	return s.GetByID(rec.ID)
}

type fakeAssignmentStore struct {
	evalStore  *fakeAssignmentEvalBridge
	recs       []dbmodels.InterviewAssignment
	storeCalls int
}

// мост к хранилищу оценок: Store атомарно меняет и приглашения, и статус оценки
type fakeAssignmentEvalBridge struct {
	store *fakeEvalStore
}

func newFakeAssignmentStore(evalStore *fakeEvalStore) *fakeAssignmentStore {
	return &fakeAssignmentStore{evalStore: &fakeAssignmentEvalBridge{store: evalStore}}
}

func (s *fakeAssignmentStore) ListByEvaluation(evaluationID string) ([]dbmodels.InterviewAssignment, error) {
	list := []dbmodels.InterviewAssignment{}
	for _, rec := range s.recs {
		if rec.EvaluationID == evaluationID {
			list = append(list, rec)
		}
	}
	return list, nil
}

func (s *fakeAssignmentStore) ListByEmail(email string) ([]dbmodels.InterviewAssignment, error) {
	list := []dbmodels.InterviewAssignment{}
	for _, rec := range s.recs {
		if strings.EqualFold(rec.InterviewerEmail, email) {
			list = append(list, rec)
		}
	}
	return list, nil
}

func (s *fakeAssignmentStore) Find(evaluationID, slotID string) (*dbmodels.InterviewAssignment, error) {
	var found *dbmodels.InterviewAssignment
	for idx := range s.recs {
		rec := s.recs[idx]
		if rec.EvaluationID != evaluationID || rec.SlotID != slotID {
			continue
		}
		if found == nil || rec.RoundNumber > found.RoundNumber {
			found = &rec
		}
	}
	if found == nil {
		return nil, nil
	}
	copied := *found
	return &copied, nil
}

func (s *fakeAssignmentStore) Store(evaluationID string, targets []dbmodels.InterviewAssignment, opts assignmentstore.StoreOptions) error {
	s.storeCalls++
	stored, ok := s.evalStore.store.recs[evaluationID]
	if !ok {
		return models.NewEvalError(models.ErrCodeNotFound, "запись оценки не найдена")
	}
	if stored.Version != opts.ExpectedVersion {
		return models.NewEvalError(models.ErrCodeVersionConflict, "запись оценки изменена параллельным запросом")
	}
	removed := map[string]bool{}
	for _, slotID := range opts.RemovedSlotIDs {
		removed[slotID] = true
	}
	kept := s.recs[:0:0]
	for _, rec := range s.recs {
		if rec.EvaluationID == evaluationID && rec.RoundNumber == opts.RoundNumber && removed[rec.SlotID] {
			continue
		}
		kept = append(kept, rec)
	}
	s.recs = kept
	refresh := map[string]bool{}
	for _, slotID := range opts.RefreshSlotIDs {
		refresh[slotID] = true
	}
	for _, target := range targets {
		s.upsert(evaluationID, target, opts, refresh[target.SlotID])
	}
	stored.ProcessStatus = opts.Status
	if opts.UpdateStartedAt && stored.ProcessStartedAt == nil {
		sentAt := opts.SentAt
		stored.ProcessStartedAt = &sentAt
	}
	stored.Version++
	return nil
}

func (s *fakeAssignmentStore) upsert(evaluationID string, target dbmodels.InterviewAssignment, opts assignmentstore.StoreOptions, refresh bool) {
	for idx := range s.recs {
		rec := &s.recs[idx]
		if rec.EvaluationID != evaluationID || rec.SlotID != target.SlotID || rec.RoundNumber != opts.RoundNumber {
			continue
		}
		rec.InterviewerEmail = target.InterviewerEmail
		rec.InterviewerName = target.InterviewerName
		rec.CaseFolderID = target.CaseFolderID
		rec.FitQuestionID = target.FitQuestionID
		if refresh {
			sentAt := opts.SentAt
			rec.InvitationSentAt = &sentAt
		}
		return
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
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	if refresh {
		sentAt := opts.SentAt
		rec.InvitationSentAt = &sentAt
	}
	s.recs = append(s.recs, rec)
}

type fakeCandidateStore struct {
	recs map[string]dbmodels.Candidate
}

func (s *fakeCandidateStore) GetByID(id string) (*dbmodels.Candidate, error) {
	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *fakeCandidateStore) List() ([]dbmodels.Candidate, error) {
	list := make([]dbmodels.Candidate, 0, len(s.recs))
	for _, rec := range s.recs {
		list = append(list, rec)
	}
	return list, nil
}

type fakeCaseFolderStore struct {
	recs map[string]dbmodels.CaseFolder
}

func (s *fakeCaseFolderStore) GetByID(id string) (*dbmodels.CaseFolder, error) {
	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type fakeFitQuestionStore struct {
	recs map[string]dbmodels.FitQuestion
}

func (s *fakeFitQuestionStore) GetByID(id string) (*dbmodels.FitQuestion, error) {
	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type fakeUsers struct {
	ensured []string
}

func (s *fakeUsers) EnsureAccount(email, name string) (*dbmodels.User, error) {
	s.ensured = append(s.ensured, email)
	rec := dbmodels.User{Email: email, Name: name, IsActive: true}
	rec.ID = uuid.NewString()
	return &rec, nil
}

type sentMail struct {
	to   string
	data smtp.InterviewAssignmentMail
}

type fakeMailer struct {
	sent     []sentMail
	failWith error
}

func (s *fakeMailer) SendEMail(from, to, message, subject string) error {
	return errors.New("not used in tests")
}

func (s *fakeMailer) SendInterviewAssignment(to string, data smtp.InterviewAssignmentMail) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.sent = append(s.sent, sentMail{to: to, data: data})
	return nil
}
