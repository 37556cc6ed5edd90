package model

// CheckStatus is the outcome of a single preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed but something needs attention.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult is the result of a single preflight check run by an engine
// or by the doctor command itself.
type CheckResult struct {
	ID      string      // Stable identifier for the check (e.g. "docker_reachable").
	Message string      // Human readable description of the result.
	Status  CheckStatus // Outcome of the check.
}

// CountByStatus tallies check results per status.
func CountByStatus(results []CheckResult) (ok, warnings, errors int) {
	for _, r := range results {
		switch r.Status {
		case CheckStatusOK:
			ok++
		case CheckStatusWarning:
			warnings++
		case CheckStatusError:
			errors++
		}
	}
	return
}
