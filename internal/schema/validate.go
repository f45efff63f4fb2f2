package schema

// Violation describes a single structural mismatch between a CAP
// record and the schema. Path is best-effort: the underlying validator
// reports location inside its message, so Path may be empty.
type Violation struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Validate checks instance against the document. Returns nil on pass.
// The validator library raises its verdict as an error; this translates
// it into an explicit result so callers propagate it by ordinary
// control flow instead of stack unwinding.
func Validate(doc *Document, instance any) *Violation {
	if err := doc.resolved.Validate(instance); err != nil {
		return &Violation{Message: err.Error()}
	}
	return nil
}
