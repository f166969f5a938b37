package apperror

import (
	"errors"

	"mediflash/config"
	"mediflash/pkg/apperror/status"
	"mediflash/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

// WriteError logs a structured warning and returns a standardized JSON error
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, resp *ErrorResponse) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    resp.Code,
		"error_message": resp.Message,
		"field":         resp.Field,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"ip":            c.IP(),
		"request_id":    c.Get(fiber.HeaderXRequestID),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(resp)
}

// Shorthands for common error responses
func BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	return WriteError(module, c, fiber.StatusBadRequest, New(code, message))
}

// Invalid reports a validation failure with the offending field and any extra details.
func Invalid(module config.Module, c fiber.Ctx, code status.ErrorCode, field string, details any) error {
	return WriteError(module, c, fiber.StatusBadRequest, New(code, "Invalid input").WithField(field).WithDetails(details))
}

func NotFound(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	return WriteError(module, c, fiber.StatusNotFound, New(code, message))
}

// InternalError logs err and answers 500 with a fixed message so backend
// details never reach the client.
func InternalError(module config.Module, c fiber.Ctx, code status.ErrorCode, message string, err error) error {
	if err != nil {
		logger.Error(err, "%v: %s", module, message)
	}
	return WriteError(module, c, fiber.StatusInternalServerError, New(code, message))
}

// FromCoded writes a 400 for a client-range status.CodedError and a 500 for
// anything else.
func FromCoded(module config.Module, c fiber.Ctx, err error, fallback string) error {
	var coded status.CodedError
	if !errors.As(err, &coded) {
		return InternalError(module, c, status.Internal, fallback, err)
	}
	if coded.ErrorCode() < status.InternalErrorBase {
		return BadRequest(module, c, coded.ErrorCode(), coded.Error())
	}
	return InternalError(module, c, coded.ErrorCode(), fallback, err)
}

// OK writes data as a 200 JSON body.
func OK(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// Created writes data as a 201 JSON body.
func Created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}
