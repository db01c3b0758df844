package dbmodels

import (
	"time"
)

// InterviewAssignment - факт приглашения интервьюера по слоту,
// живет отдельно от плана интервью в агрегате оценки.
// Уникальность (evaluation_id, slot_id) действует в рамках раунда,
// round_number секционирует записи, чтобы история приглашений сохранялась между раундами.
type InterviewAssignment struct {
	BaseModel
	EvaluationID     string `gorm:"type:varchar(36);uniqueIndex:idx_eval_slot_round"`
	SlotID           string `gorm:"type:varchar(36);uniqueIndex:idx_eval_slot_round"`
	RoundNumber      int    `gorm:"uniqueIndex:idx_eval_slot_round"`
	InterviewerEmail string `gorm:"type:varchar(255);index"`
	InterviewerName  string `gorm:"type:varchar(255)"`
	CaseFolderID     string `gorm:"type:varchar(36)"`
	FitQuestionID    string `gorm:"type:varchar(36)"`
	InvitationSentAt *time.Time
}
