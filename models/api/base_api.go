package apimodels

import "interview-eval-backend/models"

type Response struct {
	Status  string         `json:"status"`            //результат обработки fail/success
	Code    models.ErrCode `json:"code,omitempty"`    //стабильный код ошибки
	Message string         `json:"message,omitempty"` //сообщение ошибки
	Data    interface{}    `json:"data,omitempty"`    //данные ответа
}

func NewError(message string) Response {
	return Response{
		Status:  "fail",
		Message: message,
	}
}

func NewCodeError(code models.ErrCode, message string) Response {
	return Response{
		Status:  "fail",
		Code:    code,
		Message: message,
	}
}

func NewResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}
