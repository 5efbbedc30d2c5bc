// displaysim runs one sync client per surface against a live backend and
// logs each surface's view once a second. Useful for watching a session
// from the command line while driving events through the API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/suitewell/suitewell-backend/internal/displayclient"
	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/utils"
)

func main() {
	log, err := logger.New("development")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	baseURL := utils.GetEnv("SUITEWELL_URL", "http://localhost:8080", log)
	token := os.Getenv("SUITEWELL_TOKEN")
	sessionID, err := uuid.Parse(os.Getenv("SUITEWELL_SESSION_ID"))
	if err != nil {
		log.Fatal("SUITEWELL_SESSION_ID must be a session uuid", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	surfaces := []displayclient.Surface{
		displayclient.SurfaceTV,
		displayclient.SurfaceTablet,
		displayclient.SurfaceRemote,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, surface := range surfaces {
		client := displayclient.New(displayclient.Config{
			BaseURL:   baseURL,
			Token:     token,
			SessionID: sessionID,
			Surface:   surface,
			Log:       log,
		})
		g.Go(func() error { return client.Run(ctx) })
		g.Go(func() error { return report(ctx, log, surface, client) })
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error("displaysim stopped", "error", err)
		os.Exit(1)
	}
}

func report(ctx context.Context, log *logger.Logger, surface displayclient.Surface, client *displayclient.Client) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			v := client.View()
			log.Info("view",
				"surface", string(surface),
				"lifecycle", string(v.Lifecycle),
				"phase", string(v.Phase),
				"block", v.CurrentBlock,
				"exercise", v.ExerciseName,
				"remaining", v.RemainingSeconds,
				"disconnected", v.Disconnected,
			)
		}
	}
}
