package database

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeFields trims every string and cleans the technology list: blanks are
// dropped, duplicates keep their first position.
func normalizeFields(f models.ProjectFields) models.ProjectFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.GithubLink = strings.TrimSpace(f.GithubLink)
	f.LiveDemoLink = strings.TrimSpace(f.LiveDemoLink)
	f.VideoFilename = strings.TrimSpace(f.VideoFilename)

	technologies := make([]string, 0, len(f.Technologies))
	seen := make(map[string]struct{}, len(f.Technologies))
	for _, tech := range f.Technologies {
		tech = strings.TrimSpace(tech)
		if tech == "" {
			continue
		}
		if _, dup := seen[tech]; dup {
			continue
		}
		seen[tech] = struct{}{}
		technologies = append(technologies, tech)
	}
	f.Technologies = technologies
	return f
}

func validateFields(f models.ProjectFields) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewValidationError(err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return errs.NewMissingRequiredFieldError(fe.Field())
	case "http_url":
		return errs.NewInvalidFieldError(fe.Field(), "must be an absolute http(s) URL")
	case "max":
		return errs.NewInvalidFieldError(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
	default:
		return errs.NewInvalidFieldError(fe.Field(), fe.Tag())
	}
}
