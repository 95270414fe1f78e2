package engine

import (
	"context"
	"fmt"

	"github.com/roach88/genesis/internal/activity"
	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/resolver"
)

// Log texts of a combination attempt.
const (
	textAttemptFormat = "正在尝试合成: %s + %s..."
	textSuccessFormat = "合成完成: 创造了 %s"
	textFailure       = "合成失败。"
)

// Attempt is one drop of an element onto a board instance.
type Attempt struct {
	// Source is the dragged element.
	Source element.Definition
	// SourceInstanceID is set when the element was dragged from the board.
	SourceInstanceID string
	// TargetInstanceID is the board instance it was dropped on.
	TargetInstanceID string
}

// Status says what a Combine call did to the session.
type Status string

const (
	// StatusApplied means the pair combined and the result was placed.
	StatusApplied Status = "applied"
	// StatusFailed means the pair did not combine; only the log changed.
	StatusFailed Status = "failed"
	// StatusStaleTarget means the target was gone before or after
	// resolution; nothing changed.
	StatusStaleTarget Status = "stale_target"
	// StatusIgnored means an instance was dropped on itself.
	StatusIgnored Status = "ignored"
)

// Outcome reports a Combine call.
type Outcome struct {
	Status Status          `json:"status"`
	Result resolver.Result `json:"result"`
	// Spawned is the placed result instance when Status is applied.
	Spawned *element.Instance `json:"spawned,omitempty"`
	// Discovered is true when the result was new to the library.
	Discovered bool `json:"discovered"`
	// UnlockedEra is set when the result is the first of a later era.
	UnlockedEra element.Era `json:"unlockedEra,omitempty"`
}

// Combine resolves Source against the target instance and applies the
// result. It never returns an error: every failure is an Outcome.
//
// Attempts are serialized. The target may be removed while the resolution
// is in flight; the result is then dropped without touching state.
func (e *Engine) Combine(ctx context.Context, a Attempt) Outcome {
	e.attemptMu.Lock()
	defer e.attemptMu.Unlock()

	if a.SourceInstanceID != "" && a.SourceInstanceID == a.TargetInstanceID {
		return Outcome{Status: StatusIgnored}
	}

	e.mu.Lock()
	target, ok := e.board.Instance(a.TargetInstanceID)
	e.mu.Unlock()
	if !ok {
		e.logger.Debug("combine target missing", "instance_id", a.TargetInstanceID)
		return Outcome{Status: StatusStaleTarget}
	}

	e.processing.Store(true)
	defer e.processing.Store(false)

	e.AppendLog(ctx, fmt.Sprintf(textAttemptFormat, a.Source.Name, target.Name), activity.KindInfo)

	res := e.resolver.Resolve(ctx, a.Source, target.Definition)

	e.mu.Lock()
	target, ok = e.board.Instance(a.TargetInstanceID)
	if !ok {
		e.mu.Unlock()
		e.logger.Info("combine target removed during resolution",
			"instance_id", a.TargetInstanceID,
			"outcome", res.Outcome.String(),
		)
		return Outcome{Status: StatusStaleTarget, Result: res}
	}

	if !res.Success() {
		text := res.FlavorText
		if text == "" {
			text = textFailure
		}
		e.log.Append(text, activity.KindFailure)
		e.mu.Unlock()
		e.save(ctx, blobLog)
		return Outcome{Status: StatusFailed, Result: res}
	}

	text := res.FlavorText
	if text == "" {
		text = fmt.Sprintf(textSuccessFormat, res.Element.Name)
	}
	e.log.Append(text, activity.KindSuccess)

	before := e.library.HighestEra()
	rec, discovered := e.library.Discover(*res.Element, e.now())
	inst := e.board.Spawn(rec, target.X, target.Y+SpawnOffsetY)

	out := Outcome{Status: StatusApplied, Result: res, Spawned: &inst, Discovered: discovered}
	if discovered && element.Later(before, rec.Era) != before {
		out.UnlockedEra = rec.Era
	}
	e.mu.Unlock()

	what := blobBoard | blobLog
	if discovered {
		what |= blobLibrary
	}
	e.save(ctx, what)

	e.logger.Debug("combined",
		"a", a.Source.Name,
		"b", target.Name,
		"result", rec.Name,
		"source", string(res.Source),
		"discovered", discovered,
	)
	return out
}
