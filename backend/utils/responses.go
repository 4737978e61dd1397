package utils

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// FlashCookie carries the message across a redirect for HTML clients.
const FlashCookie = "flash"

// SuccessResponse структура для успешных ответов
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type FlashMessage struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// FlashResponse is what a form-style handler answers with: the message
// to show and where the browser would have been sent.
type FlashResponse struct {
	Success  bool         `json:"success"`
	Flash    FlashMessage `json:"flash"`
	Redirect string       `json:"redirect"`
	Data     interface{}  `json:"data,omitempty"`
}

// Success создает успешный JSON ответ
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}

	if len(meta) > 0 {
		response.Meta = meta[0]
	}

	return c.Status(status).JSON(response)
}

// Error создает JSON ответ с ошибкой
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// Flash answers a form submission. Browsers asking for HTML get a 303
// redirect with the message in a cookie, everything else gets a
// FlashResponse with the given status.
func Flash(c *fiber.Ctx, status int, category, message, redirect string, data ...interface{}) error {
	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML {
		c.Cookie(&fiber.Cookie{
			Name:     FlashCookie,
			Value:    url.QueryEscape(category + "|" + message),
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Redirect(redirect, fiber.StatusSeeOther)
	}

	response := FlashResponse{
		Success:  status < fiber.StatusBadRequest,
		Flash:    FlashMessage{Category: category, Message: message},
		Redirect: redirect,
	}
	if len(data) > 0 {
		response.Data = data[0]
	}

	return c.Status(status).JSON(response)
}

// NotFound отправляет ответ 404 Not Found
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}

// InternalServerError отправляет ответ 500 Internal Server Error
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, fiber.NewError(fiber.StatusInternalServerError, message))
}
