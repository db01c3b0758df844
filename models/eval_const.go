package models

import "github.com/pkg/errors"

type EvalProcessStatus string

const (
	EvalProcessDraft      EvalProcessStatus = "draft"
	EvalProcessInProgress EvalProcessStatus = "in-progress"
	EvalProcessCompleted  EvalProcessStatus = "completed"
)

func (s EvalProcessStatus) Validate() error {
	switch s {
	case EvalProcessDraft, EvalProcessInProgress, EvalProcessCompleted:
		return nil
	}
	return errors.Errorf("неизвестный статус процесса оценки (%v)", string(s))
}

type SendScope string

const (
	SendScopeAll     SendScope = "all"     // разослать приглашения всем интервьюерам раунда
	SendScopeUpdated SendScope = "updated" // разослать только по изменившимся слотам
)

func (s SendScope) Validate() error {
	switch s {
	case SendScopeAll, SendScopeUpdated:
		return nil
	}
	return errors.Errorf("неизвестная область рассылки (%v)", string(s))
}

type OfferRecommendation string

const (
	OfferYesPriority OfferRecommendation = "yes_priority"
	OfferYesStrong   OfferRecommendation = "yes_strong"
	OfferKeepWarm    OfferRecommendation = "yes_keep_warm"
	OfferNo          OfferRecommendation = "no_offer"
)

func (r OfferRecommendation) Validate() error {
	switch r {
	case OfferYesPriority, OfferYesStrong, OfferKeepWarm, OfferNo:
		return nil
	}
	return errors.Errorf("неизвестная рекомендация по офферу (%v)", string(r))
}
