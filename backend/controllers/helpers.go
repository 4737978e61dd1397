package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strconv"
	"strings"

	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// bind fills out from a JSON, form or multipart body and runs its validate
// tags. Bodies with fields that out does not declare are rejected.
func bind(c *fiber.Ctx, out interface{}) error {
	switch {
	case len(c.Body()) == 0:
	case c.Is("json"):
		dec := json.NewDecoder(bytes.NewReader(c.Body()))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			return &services.Error{Kind: services.ErrValidation, Message: "Invalid request body."}
		}
	default:
		if err := c.BodyParser(out); err != nil {
			return &services.Error{Kind: services.ErrValidation, Message: "Invalid request body."}
		}
		if field := unknownFormField(c, out); field != "" {
			return &services.Error{Kind: services.ErrValidation, Message: fmt.Sprintf("Unknown field %q.", field)}
		}
	}

	if err := validate.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}

// formFields lists the form tags declared on the struct behind out.
func formFields(out interface{}) map[string]bool {
	t := reflect.TypeOf(out)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	fields := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("form"), ",")
		if name != "" && name != "-" {
			fields[name] = true
		}
	}
	return fields
}

// unknownFormField returns the first url-encoded or multipart value whose
// key out does not declare. Uploaded files are not checked here.
func unknownFormField(c *fiber.Ctx, out interface{}) string {
	allowed := formFields(out)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return ""
		}
		for key := range form.Value {
			if !allowed[key] {
				return key
			}
		}
		return ""
	}

	var unknown string
	c.Request().PostArgs().VisitAll(func(key, _ []byte) {
		if unknown == "" && !allowed[string(key)] {
			unknown = string(key)
		}
	})
	return unknown
}

// validationError reports the first failing field.
func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return &services.Error{Kind: services.ErrValidation, Message: "Invalid request body."}
	}

	fe := fields[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		msg = fmt.Sprintf("%s must be a valid email address.", fe.Field())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid.", fe.Field())
	}
	return &services.Error{Kind: services.ErrValidation, Message: msg}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Not found.")
	}
	return uint(id), nil
}

func statusFor(kind error) int {
	switch kind {
	case services.ErrValidation:
		return fiber.StatusUnprocessableEntity
	case services.ErrConflict:
		return fiber.StatusConflict
	case services.ErrNotFound:
		return fiber.StatusNotFound
	case services.ErrForbidden:
		return fiber.StatusForbidden
	case services.ErrPreconditionFailed:
		return fiber.StatusPreconditionFailed
	case services.ErrUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError flashes a service error and sends the client back to
// redirect. Anything that is not a service error is logged and hidden.
func respondError(c *fiber.Ctx, logger *log.Logger, err error, redirect string) error {
	var se *services.Error
	if errors.As(err, &se) {
		category := utils.FlashDanger
		if se.Kind == services.ErrConflict {
			category = utils.FlashWarning
		}
		return utils.Flash(c, statusFor(se.Kind), category, se.Message, redirect)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.Flash(c, fe.Code, utils.FlashDanger, fe.Message, redirect)
	}

	logger.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return utils.Flash(c, fiber.StatusInternalServerError, utils.FlashDanger, "Something went wrong.", redirect)
}

// ErrorHandler answers errors that escape a handler, such as those
// returned by middleware or an unknown route.
func ErrorHandler(logger *log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code == fiber.StatusNotFound {
				return utils.NotFound(c, fe.Message)
			}
			return utils.Error(c, fe.Code, fe)
		}

		logger.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return utils.InternalServerError(c, "Something went wrong.")
	}
}
