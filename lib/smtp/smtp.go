package smtp

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	log "github.com/sirupsen/logrus"

	"interview-eval-backend/models"
)

var Instance Provider

type Provider interface {
	SendEMail(from, to, message, subject string) error
	SendInterviewAssignment(to string, data InterviewAssignmentMail) error
}

// InterviewAssignmentMail - контекст письма-приглашения на интервью.
type InterviewAssignmentMail struct {
	CandidateName    string
	InterviewerName  string
	CaseTitle        string
	FitQuestionTitle string
	Link             string
}

func Connect(user, password, host, port string, tlsEnabled bool) error {
	Instance = &impl{
		user:       user,
		password:   password,
		host:       host,
		port:       port,
		tlsEnabled: tlsEnabled,
	}
	return nil
}

type impl struct {
	user       string
	password   string
	host       string
	port       string
	tlsEnabled bool
}

func (i impl) SendEMail(from, to, message, subject string) (err error) {
	logger := log.WithField("sender", from)
	if i.user == "" || i.host == "" || i.port == "" {
		return models.NewEvalError(models.ErrCodeMailerUnavailable, "smtp клиент не настроен")
	}
	// Receiver email address.
	sendTo := []string{
		to,
	}
	// Authentication.
	auth := sasl.NewPlainClient("", i.user, i.password)
	mimeHeaders := "MIME-version: 1.0;\nContent-Type: text/plain; charset=\"UTF-8\";\r\n"
	body := strings.NewReader(fmt.Sprintf("Subject: Interview Eval - %s\n%s\r\n Отправитель: %s\r\n %s\r\n", subject, mimeHeaders, from, message))

	// Sending email.
	if i.tlsEnabled {
		err = smtp.SendMailTLS(i.host+":"+i.port, auth, i.user, sendTo, body)
	} else {
		err = smtp.SendMail(i.host+":"+i.port, auth, i.user, sendTo, body)
	}
	if err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
		return models.NewEvalErrorf(models.ErrCodeMailerUnavailable, "smtp транспорт недоступен: %v", err)
	}
	logger.Info("письмо отправлено")
	return nil
}

func (i impl) SendInterviewAssignment(to string, data InterviewAssignmentMail) error {
	message := fmt.Sprintf(
		"Здравствуйте, %s!\r\n"+
			"Вам назначено интервью с кандидатом %s.\r\n"+
			"Кейс: %s\r\n"+
			"Fit-вопрос: %s\r\n"+
			"Форма оценки: %s",
		data.InterviewerName, data.CandidateName, data.CaseTitle, data.FitQuestionTitle, data.Link)
	return i.SendEMail(i.user, to, message, "Приглашение на интервью")
}
