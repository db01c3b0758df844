package dbmodels

// CaseFolder - кейс (набор материалов), назначаемый на интервью-слот.
type CaseFolder struct {
	BaseModel
	Title       string `gorm:"type:varchar(255)"`
	Description string
}
