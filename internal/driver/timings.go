package driver

import (
	"encoding/json"
	"fmt"

	"weave/internal/diag"
	"weave/internal/observ"
	"weave/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Files   int                  `json:"files"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// TimingDiagnostic summarizes t as an info diagnostic; the JSON report
// rides in its only note.
func TimingDiagnostic(t *observ.Timer, files int) (diag.Diagnostic, bool) {
	if t == nil {
		return diag.Diagnostic{}, false
	}
	report := t.Report()
	payload := timingPayload{Kind: "compile", Files: files, TotalMS: report.TotalMS, Phases: report.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return diag.Diagnostic{}, false
	}
	d := diag.New(diag.SevInfo, diag.CmpInfo, source.NoSpan,
		fmt.Sprintf("timings (%s): %d files, total %.2f ms", payload.Kind, files, payload.TotalMS))
	return d.WithNote(source.NoSpan, string(data)), true
}

// appendTimingDiagnostic adds the timing entry even to a full bag.
func appendTimingDiagnostic(bag *diag.Bag, d diag.Diagnostic) {
	if bag == nil || bag.Add(d) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(d)
	bag.Merge(overflow)
}
