package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate кеширует метаданные структур, безопасен для конкурентного использования
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях об ошибках используем имена полей из json тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return v
}

// FieldError описывает первое нарушенное правило валидации
type FieldError struct {
	Field string // имя поля из json тега
	Tag   string // нарушенное правило (например, required)
}

func (e *FieldError) Error() string {
	if e.Tag == "required" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s failed %s validation", e.Field, e.Tag)
}

// ValidateRequest проверяет DTO запроса по тегам validate
// Возвращает *FieldError для первого нарушенного правила
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
	}

	return fmt.Errorf("failed to validate request: %w", err)
}

// MissingFields возвращает имена всех пустых обязательных полей
func MissingFields(req any) []string {
	var verrs validator.ValidationErrors
	if !errors.As(validate.Struct(req), &verrs) {
		return nil
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			fields = append(fields, fe.Field())
		}
	}
	return fields
}
