package validation

import (
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/response"
	"todoclient/internal/core/port"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	if err := Validator.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func addCustomTranslations() {
	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("notblank", Translator, func(ut ut.Translator) error {
		return ut.Add("notblank", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("notblank", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("max", Translator, func(ut ut.Translator) error {
		return ut.Add("max", "{0} must be at most {1} characters", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("max", getFieldName(fe.Field()), fe.Param())
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Title":       "Title",
		"Description": "Description",
		"Username":    "Username",
		"Password":    "Password",
		"Completed":   "Completed",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

func FormatValidationErrors(err error) []response.ValidationError {
	var errors []response.ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errors = append(errors, response.ValidationError{
				Field:   strings.ToLower(fieldError.Field()),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errors
}

// Validate runs struct validation and folds the field errors into a single
// ValidationFailure. The first field message becomes the user-facing text.
func Validate(op string, v interface{}) error {
	err := Validator.Struct(v)
	if err == nil {
		return nil
	}

	fields := FormatValidationErrors(err)
	if len(fields) == 0 {
		return domain.NewValidationError(op, err.Error())
	}

	return &domain.Error{
		Kind:    domain.KindValidation,
		Op:      op,
		Message: fields[0].Message,
		Err:     err,
	}
}

type structValidator struct{}

func New() port.Validator {
	return structValidator{}
}

func (structValidator) Validate(op string, v interface{}) error {
	return Validate(op, v)
}
