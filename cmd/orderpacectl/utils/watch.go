package utils

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/concave-dev/orderpace/internal/logging"
)

// WatchInterval is the refresh period of watch mode
const WatchInterval = 2 * time.Second

// ErrWatchDone is returned by a watch function to end watch mode normally,
// for example once the watched task has finished.
var ErrWatchDone = errors.New("watch done")

// RunWithWatch executes fn once, or repeatedly in watch mode until SIGINT,
// SIGTERM or fn returns ErrWatchDone. Errors other than ErrWatchDone after the
// first refresh are logged and the loop continues, so a daemon restart does
// not end the watch.
func RunWithWatch(fn func() error, enableWatch bool) error {
	if !enableWatch {
		if err := fn(); err != nil && !errors.Is(err, ErrWatchDone) {
			return err
		}
		return nil
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(WatchInterval)
	defer ticker.Stop()

	fmt.Print("\033[2J\033[H") // Clear screen and move cursor to top
	if err := fn(); err != nil {
		if errors.Is(err, ErrWatchDone) {
			return nil
		}
		return err
	}

	for {
		select {
		case <-ticker.C:
			fmt.Print("\033[2J\033[H")
			if err := fn(); err != nil {
				if errors.Is(err, ErrWatchDone) {
					return nil
				}
				logging.Error("Error updating display: %v", err)
			}
		case <-sigChan:
			fmt.Println("\nWatch mode interrupted")
			return nil
		}
	}
}
