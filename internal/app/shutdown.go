package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"osrs-quests-scraper/internal/observability"
)

// GracefulShutdown запускает мониторинг OS сигналов и возвращает context для отмены.
// При runTimeout == 0 прогон идёт без общего ограничения по времени
func GracefulShutdown(logger *observability.Logger, runTimeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	if runTimeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, runTimeout)
		parentCancel := cancel
		cancel = func() {
			timeoutCancel()
			parentCancel()
		}
	}

	// Канал для сигналов ОС
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel() // Отменяем context при получении сигнала
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
