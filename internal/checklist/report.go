package checklist

// Report is the outcome of checking one set of response data.
type Report struct {
	CompletionPercentage int               `json:"completionPercentage" yaml:"completionPercentage"`
	Errors               []ValidationError `json:"errors" yaml:"errors"`
	Visibility           map[string]bool   `json:"visibility" yaml:"visibility"`
	Warnings             []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Check parses raw against the indexed template, then computes completion,
// validation errors and field visibility. Template warnings are carried
// along unchanged.
func (idx *Index) Check(mode CompletionMode, raw Data) Report {
	data := ParseData(idx.Template, raw)
	return Report{
		CompletionPercentage: idx.Completion(mode, data),
		Errors:               idx.Validate(data),
		Visibility:           VisibleFields(idx.Template, data),
		Warnings:             idx.warnings,
	}
}
