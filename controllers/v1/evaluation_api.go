package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"interview-eval-backend/controllers"
	evaluationhandler "interview-eval-backend/lib/evaluation"
	"interview-eval-backend/middleware"
	apimodels "interview-eval-backend/models/api"
	evalapimodels "interview-eval-backend/models/api/evaluation"
)

type evaluationApiController struct {
	controllers.BaseAPIController
}

func InitEvaluationApiRouters(app *fiber.App) {
	controller := evaluationApiController{}
	app.Route("evaluation", func(router fiber.Router) {
		router.Get("my", controller.myAssignments)
		router.Post("", controller.create)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Put("plan", controller.updatePlan)
			idRoute.Post("send_invitations", controller.sendInvitations)
			idRoute.Post("advance_round", controller.advanceRound)
			idRoute.Post("slot/:slot_id/form", controller.submitForm)
		})
		router.Get("", controller.list)
	})
}

// @Summary Создание процесса оценки
// @Tags Оценка
// @Description Создание процесса оценки кандидата (раунд 1, черновик)
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 createEvaluationData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/evaluation [post]
func (c *evaluationApiController) create(ctx *fiber.Ctx) error {
	var payload createEvaluationData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := evaluationhandler.Instance.Create(payload.CandidateID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания процесса оценки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

type createEvaluationData struct {
	CandidateID *string `json:"candidate_id,omitempty"`
}

// @Summary Получение процесса оценки
// @Tags Оценка
// @Description Процесс оценки с вычисленным состоянием приглашений
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=evalapimodels.EvaluationView}
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/evaluation/{id} [get]
func (c *evaluationApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := evaluationhandler.Instance.Get(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения процесса оценки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Список процессов оценки
// @Tags Оценка
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]evalapimodels.EvaluationView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/evaluation [get]
func (c *evaluationApiController) list(ctx *fiber.Ctx) error {
	list, err := evaluationhandler.Instance.List()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка процессов оценки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Изменение плана раунда
// @Tags Оценка
// @Description Изменение плана интервью текущего раунда
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 evalapimodels.EvaluationPlanData	true	"request body"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=evalapimodels.EvaluationView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @router /api/v1/evaluation/{id}/plan [put]
func (c *evaluationApiController) updatePlan(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload evalapimodels.EvaluationPlanData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := evaluationhandler.Instance.UpdatePlan(id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения плана интервью")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Рассылка приглашений
// @Tags Оценка
// @Description Сверка плана с приглашениями и рассылка писем интервьюерам
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 evalapimodels.SendInvitationsData	true	"request body"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=evalapimodels.EvaluationView}
// @Failure 400 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 503 {object} apimodels.Response
// @router /api/v1/evaluation/{id}/send_invitations [post]
func (c *evaluationApiController) sendInvitations(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload evalapimodels.SendInvitationsData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := evaluationhandler.Instance.SendInvitations(id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка рассылки приглашений")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Переход к следующему раунду
// @Tags Оценка
// @Description Архивация завершенного раунда и создание следующего
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=evalapimodels.EvaluationView}
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @router /api/v1/evaluation/{id}/advance_round [post]
func (c *evaluationApiController) advanceRound(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := evaluationhandler.Instance.AdvanceRound(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка перехода к следующему раунду")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Сохранение формы оценки
// @Tags Оценка
// @Description Сохранение/отправка формы оценки интервьюером
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 evalapimodels.FormSubmissionData	true	"request body"
// @Param   id          		path    string  true    "rec ID"
// @Param   slot_id     		path    string  true    "slot ID"
// @Success 200 {object} apimodels.Response{data=evalapimodels.EvaluationView}
// @Failure 403 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @router /api/v1/evaluation/{id}/slot/{slot_id}/form [post]
func (c *evaluationApiController) submitForm(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	slotID := ctx.Params("slot_id")
	if slotID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("не указан идентификатор слота"))
	}
	var payload evalapimodels.FormSubmissionData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	email := middleware.GetUserEmail(ctx)
	if email == "" {
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("в токене не указана почта интервьюера"))
	}
	view, err := evaluationhandler.Instance.SubmitForm(id, slotID, email, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка сохранения формы оценки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Мои интервью
// @Tags Оценка
// @Description Список приглашений текущего интервьюера
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]evalapimodels.AssignmentView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/evaluation/my [get]
func (c *evaluationApiController) myAssignments(ctx *fiber.Ctx) error {
	email := middleware.GetUserEmail(ctx)
	if email == "" {
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("в токене не указана почта интервьюера"))
	}
	list, err := evaluationhandler.Instance.ListByInterviewer(email)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка интервью")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}
