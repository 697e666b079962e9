package serverutils

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string, errs interface{}) Response {
	return Response{Success: false, Message: message, Errors: errs}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

// ErrorHandler is the fiber error handler. Validation errors become 400 with one message per field.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse("Validation failed", fields))
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Message, nil))
	}

	log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error", nil))
}
