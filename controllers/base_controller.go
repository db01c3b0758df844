package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"interview-eval-backend/models"
	apimodels "interview-eval-backend/models/api"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	id := ctx.Params("id")
	if id == "" {
		return "", errors.New("не указан идентификатор записи")
	}
	return id, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
}

// SendError переводит код ошибки рабочего процесса в HTTP статус,
// ошибки без кода возвращаются как 500 с общим сообщением.
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, hMsg string) error {
	code, ok := models.CodeOf(err)
	if !ok {
		logger.WithError(err).Error(hMsg)
		return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(hMsg))
	}
	logger.WithError(err).WithField("code", string(code)).Warn(hMsg)
	return ctx.Status(statusOf(code)).JSON(apimodels.NewCodeError(code, err.Error()))
}

func statusOf(code models.ErrCode) int {
	switch code {
	case models.ErrCodeNotFound:
		return fiber.StatusNotFound
	case models.ErrCodeAccessDenied:
		return fiber.StatusForbidden
	case models.ErrCodeVersionConflict,
		models.ErrCodeFormAlreadySubmitted,
		models.ErrCodeFormsPending:
		return fiber.StatusConflict
	case models.ErrCodeMailerUnavailable:
		return fiber.StatusServiceUnavailable
	case models.ErrCodeInvalidPortalURL:
		return fiber.StatusInternalServerError
	default:
		// INVALID_INPUT и ошибки данных назначения
		return fiber.StatusBadRequest
	}
}
