// Command seeder fills the database with demo activities so a freshly
// deployed bot has something to show. It is intended for local development
// and staging, not production.
//
// Flags:
//
//	--creator  user ID recorded as the creator of the demo rows
//	--wipe     delete existing activities before seeding
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hikoguma/raidbot/internal/adapter/postgres"
	activityrepo "github.com/hikoguma/raidbot/internal/adapter/postgres/activity"
	participantrepo "github.com/hikoguma/raidbot/internal/adapter/postgres/participant"
	"github.com/hikoguma/raidbot/internal/app"
	"github.com/hikoguma/raidbot/internal/config"
	"github.com/hikoguma/raidbot/internal/domain"
)

func main() {
	creatorFlag := flag.String("creator", "U-seeder", "user ID recorded as creator of demo rows")
	wipeFlag := flag.Bool("wipe", false, "delete existing activities before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		logger.Error("apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	activities := activityrepo.New(pool)
	participants := participantrepo.New(pool)

	if *wipeFlag {
		if _, err := participants.DeleteAll(ctx); err != nil {
			logger.Error("wipe participants", slog.String("error", err.Error()))
			os.Exit(1)
		}
		deleted, err := activities.DeleteAll(ctx)
		if err != nil {
			logger.Error("wipe activities", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("existing activities wiped", slog.Int64("deleted", deleted))
	}

	nextFriday := time.Now().AddDate(0, 0, (5-int(time.Now().Weekday())+7)%7+7)
	demos := []domain.Activity{
		{Name: "Raid", ScheduledAt: nextFriday.Format("2006-01-02") + " 20:00", CreatorID: *creatorFlag},
		{Name: "Dungeon", ScheduledAt: nextFriday.AddDate(0, 0, 1).Format("2006-01-02") + " 21:00", CreatorID: *creatorFlag},
	}

	for i := range demos {
		a, err := activities.Create(ctx, &demos[i])
		if err != nil {
			logger.Error("seed activity",
				slog.String("name", demos[i].Name), slog.String("error", err.Error()))
			os.Exit(1)
		}

		if _, err := participants.Create(ctx, &domain.Participant{
			UserID:      *creatorFlag,
			DisplayName: "Seeder",
			ActivityID:  a.ID,
		}); err != nil {
			logger.Error("seed participant", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("activity seeded",
			slog.String("name", a.Name), slog.String("scheduled_at", a.ScheduledAt))
	}

	logger.Info("seeding completed")
}
