package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on every tick until ctx ends.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	if err := task(ctx); err != nil {
		log.Printf("[%s] error: %v", name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Printf("[%s] error: %v", name, err)
			}
		}
	}
}
