// Package validate is phase D: invariant checks over compiled prompt text,
// with targeted repair strategies and a bounded recompile loop. It never
// throws for a rule violation; the report is the correctness signal.
package validate

// IssueCode identifies one invariant contract.
type IssueCode string

const (
	IssueMissingTrigger      IssueCode = "missing_lora_trigger"
	IssueHairWithSealed      IssueCode = "hair_with_sealed_helmet"
	IssueMissingFaceSegment  IssueCode = "missing_face_segment"
	IssueTokenBudgetExceeded IssueCode = "token_budget_exceeded"
	IssueExpressionOnSealed  IssueCode = "expression_on_sealed_subject"
)

// Severity splits hard contract violations from advisories.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one detected violation. SubjectIndex is -1 for spec-wide issues;
// repair strategies target subjects through the index, never by parsing
// diagnostic prose.
type Issue struct {
	Code         IssueCode `json:"code"`
	Severity     Severity  `json:"severity"`
	SubjectIndex int       `json:"subject_index"`
	Field        string    `json:"field,omitempty"`
	Detail       string    `json:"detail,omitempty"`
}

// Report is the per-beat validation outcome handed to callers and tests.
type Report struct {
	Valid                bool     `json:"valid"`
	Issues               []Issue  `json:"issues"`
	RepairsApplied       []string `json:"repairs_applied"`
	IterationCount       int      `json:"iteration_count"`
	MaxIterationsReached bool     `json:"max_iterations_reached"`
	FinalPrompt          string   `json:"final_prompt"`
}

func hasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
