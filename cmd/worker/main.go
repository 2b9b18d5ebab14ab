package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/casaloop/casaloop-backend/config"
	"github.com/casaloop/casaloop-backend/internal/analytics"
	"github.com/casaloop/casaloop-backend/internal/bootstrap"
	notifrepo "github.com/casaloop/casaloop-backend/internal/notifications/repository"
	notifsvc "github.com/casaloop/casaloop-backend/internal/notifications/service"
	cronjob "github.com/casaloop/casaloop-backend/internal/rewards/cron"
	rwdsvc "github.com/casaloop/casaloop-backend/internal/rewards/service"
	usersrepo "github.com/casaloop/casaloop-backend/internal/users/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[worker] config: %v", err)
	}

	ctx := context.Background()

	fs, err := bootstrap.OpenFirestore(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatalf("[worker] firestore: %v", err)
	}
	defer fs.Close()

	userRepo := usersrepo.NewUserRepository(fs)
	notifier := notifsvc.NewNotificationService(notifrepo.NewNotificationRepository(fs))
	rewards := rwdsvc.NewRewardService(userRepo, notifier)

	scheduler := cronjob.NewScheduler(rewards, userRepo)

	db, err := bootstrap.OpenAnalyticsDB(ctx, cfg.Analytics.DSN)
	if err != nil {
		log.Printf("[worker] analytics db unavailable, spend report disabled: %v", err)
	} else if db != nil {
		defer db.Close()
		scheduler.WithSpendReport(analytics.NewStore(db))
	}

	if err := scheduler.Start(); err != nil {
		log.Fatalf("[worker] scheduler: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[worker] shutting down")
	scheduler.Stop()
}
