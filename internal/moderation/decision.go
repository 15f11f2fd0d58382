package moderation

import (
	"strings"
	"time"
)

type Stage string

const (
	StageReceived      Stage = "received"
	StageFilterChecked Stage = "filter_checked"
	StageLinkChecked   Stage = "link_checked"
	StageSpamChecked   Stage = "spam_checked"
	StageDone          Stage = "done"
)

type ActionRecord struct {
	Kind string
	Err  error
}

// Decision is the trace of one message through the engine.
type Decision struct {
	ID        string
	ChatID    int64
	MessageID int
	UserID    int64
	At        time.Time

	Stage      Stage
	Skipped    bool
	SkipReason string

	IsAdmin       bool
	FilterMatched bool
	LinkFound     bool
	SpamDetected  bool

	Actions []ActionRecord
}

func (d *Decision) skip(reason string) {
	d.Skipped = true
	d.SkipReason = reason
}

// Deleted reports whether the message was removed, or at least attempted.
func (d *Decision) Deleted() bool {
	return d.LinkFound || d.SpamDetected
}

func (d *Decision) Failed() []ActionRecord {
	var failed []ActionRecord
	for _, a := range d.Actions {
		if a.Err != nil {
			failed = append(failed, a)
		}
	}
	return failed
}

func (d *Decision) Outcome() string {
	switch {
	case d.Skipped:
		return "skipped"
	case d.LinkFound:
		return "link"
	case d.SpamDetected:
		return "spam"
	case d.FilterMatched:
		return "replied"
	default:
		return "allowed"
	}
}

// Summary renders the decision as short "key: value" lines.
func (d *Decision) Summary() string {
	var b strings.Builder
	b.WriteString("decision: " + d.ID + "\n")
	b.WriteString("stage: " + string(d.Stage) + "\n")
	b.WriteString("outcome: " + d.Outcome() + "\n")
	if d.IsAdmin {
		b.WriteString("admin bypass: yes\n")
	}
	for _, a := range d.Actions {
		status := "ok"
		if a.Err != nil {
			status = a.Err.Error()
		}
		b.WriteString("action " + a.Kind + ": " + status + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
