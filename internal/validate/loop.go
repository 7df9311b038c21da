package validate

import (
	"github.com/DNG-hub/StoryArt-sub001/internal/compile"
	"github.com/DNG-hub/StoryArt-sub001/internal/logger"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// MaxRepairIterations bounds the repair loop. On cap the best-effort result
// is returned with the residual issues; the loop never silently succeeds
// and never panics.
const MaxRepairIterations = 2

// Run compiles, validates, and repairs a spec until it is valid or the
// iteration cap is reached. The returned report is always structurally
// complete, including the final prompt text.
func Run(spec *vbs.Spec) Report {
	prompt := compile.Prompt(spec)
	issues := Check(spec, prompt)

	report := Report{
		Issues:      issues,
		FinalPrompt: prompt,
	}

	for iter := 0; iter < MaxRepairIterations && hasErrors(issues); iter++ {
		repairs := Repair(spec, issues)
		report.RepairsApplied = append(report.RepairsApplied, repairs...)
		report.IterationCount = iter + 1

		prompt = compile.Prompt(spec)
		issues = Check(spec, prompt)
		report.Issues = issues
		report.FinalPrompt = prompt

		if len(repairs) == 0 {
			// No strategy could act; more iterations cannot help.
			break
		}
	}

	report.Valid = !hasErrors(report.Issues)
	report.MaxIterationsReached = !report.Valid && report.IterationCount >= MaxRepairIterations

	if !report.Valid {
		logger.Warn("beat %s: prompt not fully valid after %d repair iteration(s), %d issue(s) remain",
			spec.BeatID, report.IterationCount, len(report.Issues))
	}
	return report
}
