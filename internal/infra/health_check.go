package infra

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultCheckInterval = 5 * time.Second

// MonitorExecutable signals once when the running binary is replaced on disk.
func MonitorExecutable(ctx context.Context, interval time.Duration) <-chan struct{} {
	exeFilename, err := os.Executable()
	if err != nil {
		log.WithError(err).Warn("cant resolve executable path for monitor")
		return MonitorFile(ctx, "", interval)
	}
	return MonitorFile(ctx, exeFilename, interval)
}

// MonitorFile signals once when path's modification time changes. The
// channel is closed when ctx is done. A file that cannot be stat'ed is never
// reported as changed.
func MonitorFile(ctx context.Context, path string, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	ch := make(chan struct{}, 1)
	entry := log.WithFields(log.Fields{"object": "FileMonitor", "path": path})

	stat, err := os.Stat(path)
	if err != nil {
		entry.WithError(err).Warn("cant stat file for monitor")
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch
	}
	originalTime := stat.ModTime()

	go func() {
		defer close(ch)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stat, err := os.Stat(path)
				if err != nil {
					entry.WithError(err).Debug("cant stat file for monitor tick")
					continue
				}
				if !originalTime.Equal(stat.ModTime()) {
					ch <- struct{}{}
					return
				}
			}
		}
	}()
	return ch
}
