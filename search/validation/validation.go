package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/catalog"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
)

const (
	tagCatalogField    = "catalog_field"
	tagFieldOperator   = "field_operator"
	tagUnknownOperator = "known_operator"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report paths with wire names: groups[0].conditions[1].operator
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(tagCatalogField, func(fl validator.FieldLevel) bool {
		_, ok := catalog.Lookup(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}

	v.RegisterStructValidation(validateConditionOperator, models.Condition{})
	return v
}

// validateConditionOperator checks the operator against the global set and
// against the condition's field class
func validateConditionOperator(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.Condition)
	if c.Operator == "" {
		return
	}
	if !catalog.IsOperator(c.Operator) {
		sl.ReportError(c.Operator, "operator", "Operator", tagUnknownOperator, "")
		return
	}
	field, ok := catalog.Lookup(c.Field)
	if !ok {
		return
	}
	if !field.Supports(catalog.Operator(c.Operator)) {
		sl.ReportError(c.Operator, "operator", "Operator", tagFieldOperator, c.Field)
	}
}

// ValidateSearchRequest checks the tree against the catalog. It collects every
// failure into a *errors.ValidationError. Paging and sort_by are not rejected;
// the executor clamps and falls back instead.
func ValidateSearchRequest(req *models.SearchRequest) error {
	if req == nil {
		return searchErrors.NewValidationError("body", "request is required")
	}

	var details []searchErrors.FieldError
	if err := validate.Struct(req); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return searchErrors.NewValidationError("body", err.Error())
		}
		for _, fe := range fieldErrs {
			details = append(details, searchErrors.FieldError{
				Field:   trimRoot(fe.Namespace()),
				Message: message(fe),
			})
		}
	}

	details = append(details, duplicateIDs(req.Root())...)

	if len(details) > 0 {
		return &searchErrors.ValidationError{Details: details}
	}
	return nil
}

// ValidateGroup validates a standalone group as a request root
func ValidateGroup(g models.Group) error {
	req := models.NewSearchRequest(g)
	return ValidateSearchRequest(&req)
}

// trimRoot drops the leading struct type name from a validator namespace
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case tagCatalogField:
		return fmt.Sprintf("unknown field %q", fe.Value())
	case tagUnknownOperator:
		return fmt.Sprintf("unknown operator %q", fe.Value())
	case tagFieldOperator:
		return fmt.Sprintf("operator %q is not valid for field %q", fe.Value(), fe.Param())
	default:
		return "is invalid"
	}
}

// duplicateIDs reports every node id seen more than once, at its later occurrence
func duplicateIDs(root models.Group) []searchErrors.FieldError {
	seen := map[string]bool{}
	var out []searchErrors.FieldError

	check := func(id, path string) {
		if id == "" {
			return
		}
		if seen[id] {
			out = append(out, searchErrors.FieldError{Field: path, Message: fmt.Sprintf("duplicate id %q", id)})
			return
		}
		seen[id] = true
	}

	var walk func(g models.Group, prefix string)
	walk = func(g models.Group, prefix string) {
		for i, c := range g.Conditions {
			check(c.ID, fmt.Sprintf("%sconditions[%d].id", prefix, i))
		}
		for i, sub := range g.Groups {
			subPrefix := fmt.Sprintf("%sgroups[%d].", prefix, i)
			check(sub.ID, subPrefix+"id")
			walk(sub, subPrefix)
		}
	}
	walk(root, "")
	return out
}
