package moderation

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/audit"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/observability"
)

type WarnOutcome struct {
	Count      int
	Limit      int
	Muted      bool
	MutedUntil time.Time
	MuteErr    error
}

// Warn records one more warning for target. Reaching the limit exactly mutes
// the target; a failed mute is reported on the outcome and the warning stays.
func (e *Engine) Warn(ctx context.Context, chatID, targetID, actorID int64) (*WarnOutcome, error) {
	if e.ledger == nil {
		return nil, errors.New("moderation engine: no infraction ledger")
	}
	count, err := e.ledger.Increment(ctx, chatID, targetID)
	if err != nil {
		return nil, err
	}
	out := &WarnOutcome{Count: count, Limit: e.opts.WarnLimit}
	e.auditor.Record(ctx, audit.Entry{
		ChatID:  chatID,
		UserID:  targetID,
		ActorID: actorID,
		Action:  audit.ActionWarn,
	})

	if count == e.opts.WarnLimit {
		until := e.now().Add(e.opts.WarnMute)
		actx, cancel := e.actionContext(ctx)
		out.MuteErr = e.sink.RestrictMember(actx, chatID, targetID, MutedPermissions(), &until)
		cancel()

		out.Muted = out.MuteErr == nil
		if out.Muted {
			out.MutedUntil = until
		}
		observability.RecordAction(audit.ActionMute, out.MuteErr)
		e.auditor.Record(ctx, audit.Entry{
			ChatID:  chatID,
			UserID:  targetID,
			ActorID: actorID,
			Action:  audit.ActionMute,
			Reason:  "warn limit",
			Err:     out.MuteErr,
		})
		if out.MuteErr != nil {
			e.logger.WithError(out.MuteErr).WithFields(log.Fields{
				"chat_id": chatID,
				"user_id": targetID,
			}).Warn("auto-mute failed")
		}
	}
	observability.RecordWarn(count == e.opts.WarnLimit)
	return out, nil
}

func (e *Engine) WarnLimit() int {
	return e.opts.WarnLimit
}
