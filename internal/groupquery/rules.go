package groupquery

import (
	"regexp"

	"github.com/rotisserie/eris"

	"github.com/flowaudit/audit-engine/internal/checklist"
)

// ValidateResponse applies the query's validation rules to response data in
// rule order. Failures carry the rule's message. A pattern rule whose
// pattern does not compile fails with checklist.ErrInvalidPattern.
func ValidateResponse(q *GroupQuery, data checklist.Data) ([]checklist.ValidationError, error) {
	errs := []checklist.ValidationError{}
	for _, rule := range q.Config.ValidationRules {
		value := data.Get(rule.Field)
		failed := false

		switch rule.Rule {
		case RuleRequired:
			failed = value.IsBlank()
		case RuleMin:
			if n, ok := value.AsNumber(); ok {
				failed = n < rule.Value.ToNumber()
			}
		case RuleMax:
			if n, ok := value.AsNumber(); ok {
				failed = n > rule.Value.ToNumber()
			}
		case RulePattern:
			s, ok := value.AsString()
			if !ok {
				break
			}
			pattern, _ := rule.Value.AsString()
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, eris.Wrapf(checklist.ErrInvalidPattern, "rule on %q: %s", rule.Field, err.Error())
			}
			failed = !re.MatchString(s)
		default:
			return nil, eris.Errorf("groupquery: unknown validation rule %q on %q", rule.Rule, rule.Field)
		}

		if failed {
			errs = append(errs, checklist.ValidationError{Field: rule.Field, Message: rule.Message})
		}
	}
	return errs, nil
}
