package dbmodels

import "time"

// User - учетная запись интервьюера в портале.
type User struct {
	BaseModel
	Email     string `gorm:"type:varchar(255);uniqueIndex"`
	Name      string `gorm:"type:varchar(255)"`
	Password  string `gorm:"type:varchar(128)"`
	IsActive  bool
	LastLogin time.Time
}
