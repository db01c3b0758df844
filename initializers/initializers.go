package initializers

import (
	"interview-eval-backend/config"
	"interview-eval-backend/fiberlog"
	evaluationhandler "interview-eval-backend/lib/evaluation"
	usershandler "interview-eval-backend/lib/users"
)

var LoggerConfig *fiberlog.Config

func InitAllServices() {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitSmtp()
	usershandler.NewHandler()
	evaluationhandler.NewHandler()
}
