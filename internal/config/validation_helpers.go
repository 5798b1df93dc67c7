package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

// ConvertValidationError normalizes validator errors into validation errors
// whose field names follow the YAML keys.
func ConvertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return gameerrors.NewValidationError(field, msg, err)
	}

	return gameerrors.NewValidationError("config", err.Error(), err)
}

// yamlishFieldName drops the root struct name and lowercases the rest, e.g.
// "Catalog.Components[2].ID" becomes "components[2].id".
func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

// FieldForItem formats the YAML path of a list element's field.
func FieldForItem(list string, index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, index, field)
}
