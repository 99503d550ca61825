package report

import (
	"fmt"
	"time"

	"github.com/wonny/flipwatch/internal/contracts"
)

// Assemble packages hits into the run report.
// Hits are copied in the given order and never truncated; status is hits or no_activity.
// Complete refines the status once skipped candidates are known.
// ⭐ SSOT: 리포트 상태 결정은 여기서만
func Assemble(date contracts.SessionDate, hits []contracts.Hit, generatedAt time.Time) contracts.RunReport {
	copied := make([]contracts.Hit, len(hits))
	copy(copied, hits)

	status := contracts.StatusNoActivity
	if len(copied) > 0 {
		status = contracts.StatusHits
	}

	return contracts.RunReport{
		Date:        date,
		GeneratedAt: generatedAt,
		Status:      status,
		Hits:        copied,
		Candidates:  []string{},
	}
}

// Complete attaches the screened candidates and skipped ones to an assembled report
// and settles the final status so a fetch failure never reads as "nothing found":
//   - hits stay hits (skips are listed alongside);
//   - no hits with every candidate lost to fetch failures → failed;
//   - no hits with some candidates lost to fetch failures → partial.
//
// no_data skips are not failures and leave no_activity untouched.
func Complete(rep contracts.RunReport, candidates []string, skipped []contracts.SkippedCandidate) contracts.RunReport {
	rep.Candidates = append([]string{}, candidates...)
	rep.Skipped = skipped

	failures := 0
	for _, s := range skipped {
		if s.Failure() {
			failures++
		}
	}

	if len(skipped) > 0 {
		rep.Diagnostic = fmt.Sprintf("%d of %d candidates skipped", len(skipped), len(candidates))
	}

	if rep.Status != contracts.StatusNoActivity || failures == 0 {
		return rep
	}

	if failures == len(candidates) {
		rep.Status = contracts.StatusFailed
		rep.Diagnostic = fmt.Sprintf("broker flow unavailable for all %d candidates", len(candidates))
		if first := firstFailure(skipped); first != "" {
			rep.Diagnostic += ": " + first
		}
		return rep
	}

	rep.Status = contracts.StatusPartial
	return rep
}

func firstFailure(skipped []contracts.SkippedCandidate) string {
	for _, s := range skipped {
		if s.Failure() && s.Error != "" {
			return s.Error
		}
	}
	return ""
}

// NoSessionData builds the report for a date with no published session (weekend, holiday, not yet updated)
func NoSessionData(date contracts.SessionDate, generatedAt time.Time) contracts.RunReport {
	return contracts.RunReport{
		Date:        date,
		GeneratedAt: generatedAt,
		Status:      contracts.StatusNoSessionData,
		Hits:        []contracts.Hit{},
		Candidates:  []string{},
		Diagnostic:  "no published session data for " + date.String(),
	}
}

// Failed builds the diagnostic report for a run that could not complete
func Failed(date contracts.SessionDate, generatedAt time.Time, err error) contracts.RunReport {
	diagnostic := "unknown error"
	if err != nil {
		diagnostic = err.Error()
	}

	return contracts.RunReport{
		Date:        date,
		GeneratedAt: generatedAt,
		Status:      contracts.StatusFailed,
		Hits:        []contracts.Hit{},
		Candidates:  []string{},
		Diagnostic:  diagnostic,
	}
}
