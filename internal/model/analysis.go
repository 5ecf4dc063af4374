package model

import "github.com/marktron/app-gaps/pkg/appstore"

// Impact rates how strongly a theme affects users. The model assigns it;
// the pipeline passes it through without re-validation.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Theme is one synthesized unmet-need insight. Quote is instructed to be a
// verbatim substring of the input reviews; the pipeline does not verify
// that post hoc.
type Theme struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Quote   string `json:"quote"`
	Impact  Impact `json:"impact"`
	Feature string `json:"feature"`
}

// PrioritizedTheme is the title+impact projection of a theme, ordered
// High to Low by the model and not re-sorted here.
type PrioritizedTheme struct {
	Title  string `json:"title"`
	Impact Impact `json:"impact"`
}

// AnalysisResult is the parsed model output. Both slices may be empty but
// are never nil: absence in the raw payload normalizes to empty at the
// parse boundary.
type AnalysisResult struct {
	Themes            []Theme            `json:"themes"`
	PrioritizedThemes []PrioritizedTheme `json:"prioritizedThemes"`
}

// Report is the full outcome of one analysis run: the canonical
// identifier, the (possibly empty) lookup record, and the themes.
type Report struct {
	AppID   string            `json:"app_id"`
	AppInfo *appstore.AppInfo `json:"app_info,omitempty"`
	AnalysisResult
}
