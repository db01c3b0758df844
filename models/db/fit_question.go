package dbmodels

// FitQuestion - fit-вопрос, назначаемый на слот или на раунд целиком.
type FitQuestion struct {
	BaseModel
	Title string `gorm:"type:varchar(255)"`
	Text  string
}
