package dbmodels

import "fmt"

type Candidate struct {
	BaseModel
	FirstName  string `gorm:"type:varchar(255)"`
	LastName   string `gorm:"type:varchar(255)"`
	MiddleName string `gorm:"type:varchar(255)"`
	Email      string `gorm:"type:varchar(255)"`
	Phone      string `gorm:"type:varchar(255)"`
	Position   string `gorm:"type:varchar(255)"` // позиция, на которую рассматривается кандидат
	Comment    string
}

func (r Candidate) GetFullName() string {
	return fmt.Sprintf("%s %s", r.FirstName, r.LastName)
}
