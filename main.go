package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/audit"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/bot"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/config"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/db/sqlite"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/handlers/chat"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/i18n"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/infra"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/infrastructure/telegram"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/lifecycle"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/observability"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/spam"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/store"
)

const (
	shutdownTimeout = 15 * time.Second
	decisionHistory = 4096
)

func main() {
	log.SetFormatter(&config.NbFormatter{})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatalln("cant load config")
	}
	log.SetLevel(log.Level(cfg.LogLevel))
	i18n.SetDefaultLanguage(cfg.DefaultLanguage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatalln("bot stopped")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	dataDir, err := infra.GetWorkDir(cfg.DotPath)
	if err != nil {
		return err
	}

	db, err := sqlite.NewSQLiteClient(ctx, dataDir, cfg.DBName)
	if err != nil {
		return errors.WithMessage(err, "cant open database")
	}

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		_ = db.Close()
		return errors.WithMessage(err, "cant initialize bot api")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}
	log.WithField("username", botAPI.Self.UserName).Info("authorized")

	auditLog, err := audit.NewFileLogger(filepath.Join(dataDir, "audit.log"))
	if err != nil {
		_ = db.Close()
		return errors.WithMessage(err, "cant open audit log")
	}

	ops := telegram.NewOperations(botAPI, cfg.Actions.RequestsPerSecond, cfg.Actions.Timeout)
	settings := store.NewSettingsStore(db, cfg.Cache.Size, cfg.Cache.SettingsTTL)
	filters := store.NewFilterTable(db, cfg.Cache.Size, cfg.Cache.SettingsTTL)
	ledger := store.NewLedger(db)
	admins := permissions.NewResolver(ops, cfg.OwnerID, cfg.Cache.Size, cfg.Cache.AdminTTL)
	tracker := spam.NewTracker(spam.Config{
		Window:    cfg.Spam.Window,
		Threshold: cfg.Spam.Threshold,
		Slack:     cfg.Spam.Slack,
		IdleTTL:   cfg.Spam.IdleTTL,
	})

	engine, err := moderation.NewEngine(moderation.Deps{
		Settings: settings,
		Filters:  filters,
		Spam:     tracker,
		Admins:   admins,
		Ledger:   ledger,
		Sink:     ops,
		Auditor:  auditLog,
	}, moderation.Options{
		ActionTimeout: cfg.Actions.Timeout,
		WarnLimit:     cfg.Warn.Limit,
		WarnMute:      cfg.Warn.MuteDuration,
		HistorySize:   decisionHistory,
		Language:      cfg.DefaultLanguage,
	})
	if err != nil {
		_ = db.Close()
		return err
	}

	bot.RegisterUpdateHandler("membership", chat.NewMembership(ops, engine, admins, cfg.DefaultLanguage))
	bot.RegisterUpdateHandler("commands", chat.NewCommands(chat.CommandsDeps{
		Platform:  ops,
		Settings:  settings,
		Ledger:    ledger,
		Filters:   filters,
		Moderator: engine,
		Admins:    admins,
		Auditor:   auditLog,
		Language:  cfg.DefaultLanguage,
	}))
	bot.RegisterUpdateHandler("guard", chat.NewGuard(ops, engine, cfg.DefaultLanguage))

	service := bot.NewService(botAPI, bot.NewUpdateProcessor(cfg.EnabledHandlers), 0)

	runtime := lifecycle.NewRuntime()
	runtime.Register("sqlite", db)
	runtime.Register("audit", auditLog)
	runtime.Register("observability", observability.NewServer(cfg.Metrics.Addr))
	runtime.Register("spam_tracker", tracker)
	runtime.Register("bot_service", service)

	if err := runtime.Start(ctx); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-service.Done():
		runErr = errors.WithMessage(err, "update polling stopped")
		if err == nil {
			runErr = errors.New("update polling stopped")
		}
	case _, changed := <-infra.MonitorExecutable(ctx, infra.DefaultCheckInterval):
		if changed {
			log.Warn("executable file was modified, restarting")
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := runtime.Stop(stopCtx); err != nil {
		log.WithError(err).Error("unclean shutdown")
	}
	return runErr
}
