package casefile

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
)

// DefaultTimeToProcess replaces a missing or zero lab processing time.
const DefaultTimeToProcess = 30

// ErrInvalidCase is matched by every import rejection.
var ErrInvalidCase = errors.NewSentinel("invalid case")

// ValidationError lists every problem found in a rejected case file.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid case: " + strings.Join(e.Problems, "; ")
}

// Is makes errors.Is(err, ErrInvalidCase) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidCase //nolint:errorlint,err113 // sentinel identity
}

func invalid(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// caseValidate is the validator instance for case files. Initialized in init() with custom validators.
var caseValidate *validator.Validate

func init() {
	caseValidate = validator.New(validator.WithRequiredStructEnabled())
	caseValidate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = caseValidate.RegisterValidation("response_ref", validateResponseRef)
}

// validateResponseRef checks the "<treeId>-<responseId>" shape used by contradictions and cross-person requirements.
func validateResponseRef(fl validator.FieldLevel) bool {
	tree, response, ok := strings.Cut(fl.Field().String(), "-")
	return ok && tree != "" && response != ""
}

// Validate checks that c is complete and internally addressable. It does not modify c.
func Validate(c *models.Case) error {
	if c == nil {
		return invalid("case is empty")
	}
	var problems []string
	if err := caseValidate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return errors.Wrap(err, "validate case")
		}
		for _, fe := range validationErrors {
			problems = append(problems, describe(fe))
		}
	}
	problems = append(problems, checkReferences(c)...)
	if len(problems) > 0 {
		return invalid(problems...)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	// Drop the struct type name so that paths read like the JSON document.
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "response_ref":
		return field + " must look like <treeId>-<responseId>"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

func checkReferences(c *models.Case) []string {
	var problems []string
	duplicates := func(kind string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				problems = append(problems, fmt.Sprintf("duplicate %s id %q", kind, id))
			}
			seen[id] = true
		}
	}

	var locationIDs, evidenceIDs, personIDs, newsIDs []string
	for _, l := range c.Scene {
		locationIDs = append(locationIDs, l.ID)
	}
	for i, e := range c.Evidence {
		evidenceIDs = append(evidenceIDs, e.ID)
		if e.Analyzed && !e.Collected {
			problems = append(problems, fmt.Sprintf("evidence[%d] is analyzed but not collected", i))
		}
	}
	for _, p := range c.People {
		personIDs = append(personIDs, p.ID)
		var treeIDs []string
		for _, tree := range p.DialogueTrees {
			treeIDs = append(treeIDs, tree.ID)
		}
		duplicates("dialogue tree of "+p.ID, treeIDs)
	}
	for _, n := range c.BreakingNews {
		newsIDs = append(newsIDs, n.ID)
	}
	duplicates("location", locationIDs)
	duplicates("evidence", evidenceIDs)
	duplicates("person", personIDs)
	duplicates("breaking news", newsIDs)

	if c.Solution.Culprit != "" {
		culprit := c.FindPerson(c.Solution.Culprit)
		switch {
		case culprit == nil:
			problems = append(problems, fmt.Sprintf("solution.culprit %q is not a person in the case", c.Solution.Culprit))
		case culprit.Type != models.PersonTypeSuspect:
			problems = append(problems, fmt.Sprintf("solution.culprit %q is not a suspect", c.Solution.Culprit))
		}
	}
	return problems
}

// applyDefaults fills optional values the engine depends on.
func applyDefaults(c *models.Case) {
	for i := range c.Evidence {
		if c.Evidence[i].TimeToProcess == 0 {
			c.Evidence[i].TimeToProcess = DefaultTimeToProcess
		}
	}
}
