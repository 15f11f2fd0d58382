package bot

import (
	"context"
	"sync"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/infra"
)

const (
	defaultWorkers    = 8
	workerQueueLength = 64
	pollTimeout       = 60
)

var allowedUpdates = []string{"message", "edited_message", "chat_member", "my_chat_member", "callback_query"}

// Service polls Telegram and fans updates out to workers sharded by chat,
// so each chat's updates are processed in arrival order.
type Service struct {
	bot       updatesGetter
	buffer    int
	processor *UpdateProcessor
	workers   int
	logger    *log.Entry

	mu        sync.Mutex
	started   bool
	runCancel context.CancelFunc
	done      chan error
}

func NewService(bot updatesGetter, processor *UpdateProcessor, workers int) *Service {
	if workers < 1 {
		workers = defaultWorkers
	}
	buffer := 100
	if b, ok := bot.(*api.BotAPI); ok && b.Buffer > 0 {
		buffer = b.Buffer
	}
	return &Service{
		bot:       bot,
		buffer:    buffer,
		processor: processor,
		workers:   workers,
		logger:    log.WithField("object", "BotService"),
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.runCancel = cancel
	s.started = true
	s.done = make(chan error, 1)

	updateConfig := api.NewUpdate(0)
	updateConfig.Timeout = pollTimeout
	updateConfig.AllowedUpdates = allowedUpdates
	updates, errs := GetUpdatesChans(runCtx, s.bot, s.buffer, updateConfig)

	g := &errgroup.Group{}
	queues := make([]chan api.Update, s.workers)
	for i := range queues {
		queue := make(chan api.Update, workerQueueLength)
		queues[i] = queue
		g.Go(func() error {
			for update := range queue {
				s.process(runCtx, update)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer func() {
			for _, queue := range queues {
				close(queue)
			}
		}()
		return s.dispatch(runCtx, updates, errs, queues)
	})

	done := s.done
	go func() {
		done <- g.Wait()
		close(done)
	}()
	s.logger.WithField("workers", s.workers).Info("receiving updates")
	return nil
}

// Done yields the polling error, if any, once the service has stopped.
func (s *Service) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel, done := s.runCancel, s.done
	s.runCancel = nil
	s.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) dispatch(ctx context.Context, updates api.UpdatesChannel, errs chan error, queues []chan api.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				if err, ok := <-errs; ok && err != nil && !errors.Is(err, context.Canceled) {
					return errors.WithMessage(err, "get updates")
				}
				return nil
			}
			queue := queues[shard(&update, len(queues))]
			select {
			case queue <- update:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (s *Service) process(ctx context.Context, update api.Update) {
	err := infra.Safe("process_update", func() error {
		return s.processor.Process(ctx, &update)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WithError(err).WithField("update_id", update.UpdateID).Error("cant process update")
	}
}

func shard(u *api.Update, n int) int {
	chat := UpdateChat(u)
	if chat == nil || n <= 1 {
		return 0
	}
	return int(uint64(chat.ID) % uint64(n))
}
