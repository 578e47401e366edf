package onboarding

import (
	"time"

	"github.com/ainager-onboarding/internal/pkg/clock"
)

// Phase names one step of a pipeline call.
type Phase string

const (
	PhaseFetchingWebsite       Phase = "fetching_website"
	PhaseExtractingContent     Phase = "extracting_content"
	PhaseSynthesizingKnowledge Phase = "synthesizing_knowledge"
	PhaseGeneratingDocument    Phase = "generating_document"
	PhaseSavingTenant          Phase = "saving_tenant"
)

var (
	VerifyPhases = []Phase{PhaseFetchingWebsite, PhaseExtractingContent, PhaseSynthesizingKnowledge}
	CreatePhases = []Phase{PhaseGeneratingDocument, PhaseSavingTenant}
)

// PhaseTiming is the measured duration of one completed phase.
type PhaseTiming struct {
	Phase      Phase `json:"phase"`
	DurationMS int64 `json:"duration_ms"`
}

// Progress walks a fixed phase sequence. The first phase starts on creation
// and each Advance completes the current one.
type Progress struct {
	clock   clock.Clock
	phases  []Phase
	idx     int
	started time.Time
	timings []PhaseTiming
}

func NewProgress(c clock.Clock, phases ...Phase) *Progress {
	return &Progress{clock: c, phases: phases, started: c.Now()}
}

// Current returns the running phase, or false once every phase has completed.
func (p *Progress) Current() (Phase, bool) {
	if p.idx >= len(p.phases) {
		return "", false
	}
	return p.phases[p.idx], true
}

// Advance completes the current phase and starts the next. It returns the new
// current phase, or false when the sequence is finished. Advancing a finished
// Progress is a no-op.
func (p *Progress) Advance() (Phase, bool) {
	if p.idx >= len(p.phases) {
		return "", false
	}
	now := p.clock.Now()
	p.timings = append(p.timings, PhaseTiming{Phase: p.phases[p.idx], DurationMS: now.Sub(p.started).Milliseconds()})
	p.idx++
	p.started = now
	return p.Current()
}

func (p *Progress) Done() bool { return p.idx >= len(p.phases) }

// Timings returns the completed phases in order.
func (p *Progress) Timings() []PhaseTiming {
	out := make([]PhaseTiming, len(p.timings))
	copy(out, p.timings)
	return out
}
