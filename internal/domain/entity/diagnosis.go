package entity

// DiagnosisVerdict classifies what one bounded re-perception revealed about a
// failed replay hint.
type DiagnosisVerdict string

const (
	VerdictAbsorbed     DiagnosisVerdict = "absorbed"      // label still near cached point
	VerdictDisplaced    DiagnosisVerdict = "displaced"     // label moved, patch available
	VerdictAbsent       DiagnosisVerdict = "absent"        // label gone, triage listing
	VerdictDelayTooLow  DiagnosisVerdict = "delayTooLow"   // visible now, sleep was too short
	VerdictPriorSuspect DiagnosisVerdict = "priorSuspect"  // not visible, inspect prior step
	VerdictTuneScrolls  DiagnosisVerdict = "tuneScrolls"   // visible after N, adjust count
	VerdictMoreScrolls  DiagnosisVerdict = "moreScrolls"   // not visible, scroll further
)

// Patch is one actionable field correction for a stale hint.
type Patch struct {
	Field    string `json:"field"`
	Was      string `json:"was"`
	ShouldBe string `json:"shouldBe"`
}

// Diagnosis is the deterministic, local outcome of diagnosing one failed
// replayed step.
type Diagnosis struct {
	StepIndex   int              `json:"stepIndex"`
	StepType    string           `json:"stepType"`
	Label       string           `json:"label,omitempty"`
	Verdict     DiagnosisVerdict `json:"verdict"`
	Summary     string           `json:"summary"`
	Patches     []Patch          `json:"patches,omitempty"`
	VisibleText []string         `json:"visibleText,omitempty"`
}
