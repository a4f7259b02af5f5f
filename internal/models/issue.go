package models

import "sort"

// Severity of a validation issue. Errors fail the run; warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Scope identifies the level a validation issue applies to.
type Scope string

const (
	ScopeFile       Scope = "file"
	ScopeArtifact   Scope = "artifact"
	ScopeModule     Scope = "module"
	ScopeRepository Scope = "repository"
)

// IssueCode enumerates the validation failure taxonomy.
type IssueCode string

const (
	CodeAnnotationAbsent     IssueCode = "AnnotationAbsent"
	CodeAnnotationIncomplete IssueCode = "AnnotationIncomplete"
	CodeUnresolvedReference  IssueCode = "UnresolvedReference"
	CodeDanglingDependency   IssueCode = "DanglingDependency"
	CodeReferenceAsymmetry   IssueCode = "ReferenceAsymmetry"
	CodeMalformedArtifact    IssueCode = "MalformedArtifact"
	CodeWriteConflict        IssueCode = "WriteConflict"
)

// ValidationIssue is one recorded problem, attached to a file or artifact.
type ValidationIssue struct {
	Scope    Scope     `json:"scope"`
	Severity Severity  `json:"severity"`
	Code     IssueCode `json:"code"`
	Message  string    `json:"message"`
	Path     string    `json:"path"`
}

// severityRank orders errors before warnings.
func severityRank(s Severity) int {
	if s == SeverityError {
		return 0
	}
	return 1
}

// SortIssues sorts issues by (severity desc, scope, path, code) for stable,
// diffable report output.
func SortIssues(issues []ValidationIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if severityRank(a.Severity) != severityRank(b.Severity) {
			return severityRank(a.Severity) < severityRank(b.Severity)
		}
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Code < b.Code
	})
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}
