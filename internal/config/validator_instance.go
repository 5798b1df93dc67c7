package config

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/gameready/internal/environment"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern      = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	componentIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	appIDPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+){2,}$`)
	packagePattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]*(:[a-z0-9]+)?$`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("component_id", func(fl validator.FieldLevel) bool {
			return componentIDPattern.MatchString(fl.Field().String())
		})

		// Empty values pass; pair with required where needed.
		_ = v.RegisterValidation("app_id", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value == "" || appIDPattern.MatchString(value)
		})

		_ = v.RegisterValidation("package_name", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value == "" || packagePattern.MatchString(value)
		})

		_ = v.RegisterValidation("env_kind", func(fl validator.FieldLevel) bool {
			_, err := environment.ParseKind(fl.Field().String())
			return err == nil
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns a configured validator instance for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}
