package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timetracker/internal/config"
	"timetracker/internal/repository"
	"timetracker/internal/service"
	"timetracker/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	taskSvc := service.NewTaskService(taskRepo)
	timerSvc := service.NewTimerService(db, taskRepo, entryRepo)
	statsSvc := service.NewStatsService(taskRepo, entryRepo)
	reportSvc := service.NewReportService(userRepo, statsSvc)

	if cfg.ReportTime != "" {
		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleDaily(cfg.ReportTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			logDailyReports(jobCtx, reportSvc)
		}); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := web.NewServer(authSvc, taskSvc, timerSvc, statsSvc)
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Handler()}

	go func() {
		log.Printf("Time tracker listening on %s.", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}

// logDailyReports writes one summary line block per registered user.
func logDailyReports(ctx context.Context, reports *service.ReportService) {
	users, err := reports.Users(ctx)
	if err != nil {
		log.Printf("report: list users: %v", err)
		return
	}
	now := time.Now()
	for _, user := range users {
		summary, err := reports.Summary(ctx, user, now)
		if err != nil {
			log.Printf("report for %s: %v", user.Email, err)
			continue
		}
		log.Println(summary)
	}
}
