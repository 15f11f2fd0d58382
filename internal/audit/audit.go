package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ActionReply   = "reply"
	ActionDelete  = "delete"
	ActionNotice  = "notice"
	ActionMute    = "mute"
	ActionWarn    = "warn"
	ActionBan     = "ban"
	ActionUnban   = "unban"
	ActionKick    = "kick"
	ActionUnmute  = "unmute"
	ActionReset   = "reset_warns"
	ActionSetting = "setting"
)

// Entry is one moderation action as it will appear in the audit trail.
type Entry struct {
	DecisionID string
	ChatID     int64
	UserID     int64
	ActorID    int64
	MessageID  int
	Action     string
	Reason     string
	Err        error
}

// Logger writes moderation actions as structured JSON lines.
type Logger struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("audit")}
}

// NewFileLogger appends JSON audit records to path.
func NewFileLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build audit logger: %w", err)
	}
	return New(logger), nil
}

func (l *Logger) Record(_ context.Context, e Entry) {
	fields := []zap.Field{
		zap.String("action", e.Action),
		zap.Int64("chat_id", e.ChatID),
		zap.Int64("user_id", e.UserID),
	}
	if e.DecisionID != "" {
		fields = append(fields, zap.String("decision_id", e.DecisionID))
	}
	if e.ActorID != 0 {
		fields = append(fields, zap.Int64("actor_id", e.ActorID))
	}
	if e.MessageID != 0 {
		fields = append(fields, zap.Int("message_id", e.MessageID))
	}
	if e.Reason != "" {
		fields = append(fields, zap.String("reason", e.Reason))
	}
	if e.Err != nil {
		l.logger.Warn("moderation action failed", append(fields, zap.Error(e.Err))...)
		return
	}
	l.logger.Info("moderation action", fields...)
}

func (l *Logger) Start(context.Context) error {
	return nil
}

func (l *Logger) Stop(context.Context) error {
	_ = l.logger.Sync()
	return nil
}
