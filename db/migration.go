package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	dbmodels "interview-eval-backend/models/db"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.User{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры User")
	}
	if err := DB.AutoMigrate(&dbmodels.Candidate{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Candidate")
	}
	if err := DB.AutoMigrate(&dbmodels.CaseFolder{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры CaseFolder")
	}
	if err := DB.AutoMigrate(&dbmodels.FitQuestion{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры FitQuestion")
	}
	if err := DB.AutoMigrate(&dbmodels.Evaluation{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Evaluation")
	}
	if err := DB.AutoMigrate(&dbmodels.InterviewAssignment{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры InterviewAssignment")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
