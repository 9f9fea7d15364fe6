package validation

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "footlens/internal/errors"
	"footlens/pkg/contracts/domain"
)

// FilterRequest is the filter sent by dashboard clients. Empty lists select everything.
type FilterRequest struct {
	Seasons    []string `json:"seasons" validate:"max=200,dive,required,max=32"`
	Severities []string `json:"severities" validate:"max=3,dive,oneof=Minor Moderate Severe"`
	Positions  []string `json:"positions" validate:"max=200,dive,required,max=64"`
	AgeGroups  []string `json:"age_groups" validate:"max=4,dive,oneof=Young Prime Experienced Veteran"`
	Teams      []string `json:"teams" validate:"max=200,dive,required,max=128"`
	Players    []string `json:"players" validate:"max=200,dive,required,max=128"`
}

// ExportRequest selects the rows and columns of a spreadsheet export
type ExportRequest struct {
	FilterRequest
	Columns []string `json:"columns" validate:"max=100,dive,column"`
}

// TopDropsRequest asks for the largest performance drops
type TopDropsRequest struct {
	FilterRequest
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

// InjuryQueryRequest narrows the injury analysis
type InjuryQueryRequest struct {
	FilterRequest
	Injury   string `json:"injury" validate:"max=128"`
	Severity string `json:"severity" validate:"omitempty,oneof=Minor Moderate Severe Unknown"`
}

// TrendQueryRequest narrows the trend cards
type TrendQueryRequest struct {
	FilterRequest
	Year  int `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Month int `json:"month" validate:"omitempty,gte=1,lte=12"`
}

// Validator validates request structs and renders failures as API errors
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a Validator with the column and json field name rules registered
func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	v.RegisterValidation("column", isColumn)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: v,
		logger:   logger.With(slog.String("component", "request_validator")),
	}
}

// Struct validates s and returns an *errors.APIError listing every failing field
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Namespace(),
			Message: formatFieldError(fe),
		})
	}

	v.logger.Debug("request rejected", slog.Int("errors", len(out)))
	return apierrors.NewValidationErrors(out)
}

func isColumn(fl validator.FieldLevel) bool {
	return domain.HasColumn(fl.Field().String())
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s accepts at most %s values", field, param)
		}
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "column":
		return fmt.Sprintf("%s is not a known column: %q", field, fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
