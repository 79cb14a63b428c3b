package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"leadblitz/internal/adapters/googleplaces"
	httpadapter "leadblitz/internal/adapters/http"
	"leadblitz/internal/adapters/hunter"
	"leadblitz/internal/adapters/memory"
	"leadblitz/internal/adapters/openai"
	pg "leadblitz/internal/adapters/postgres"
	"leadblitz/internal/adapters/sendgrid"
	stripeadapter "leadblitz/internal/adapters/stripe"
	"leadblitz/internal/adapters/twilio"
	"leadblitz/internal/config"
	"leadblitz/internal/ports"
	"leadblitz/internal/services/aiscore"
	"leadblitz/internal/services/billing"
	creditsvc "leadblitz/internal/services/credits"
	"leadblitz/internal/services/enrichment"
	"leadblitz/internal/services/fetcher"
	"leadblitz/internal/services/outreach"
	placesvc "leadblitz/internal/services/places"
	"leadblitz/internal/services/scoring"
	"leadblitz/internal/workers/batchrunner"
	"leadblitz/internal/workers/driprunner"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		zap.L().Warn("config incomplete", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		zap.L().Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		zap.L().Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	cacheRepo := pg.NewCacheRepository(db)
	creditRepo := pg.NewCreditRepository(db)
	leadRepo := pg.NewLeadRepository(db)
	subRepo := pg.NewSubscriptionRepository(db)
	paymentRepo := pg.NewPaymentRepository(db)
	statusStore := memory.NewStatusStore(cfg.BatchCapacity)

	var _ ports.CreditRepository = creditRepo
	var _ ports.LeadRepository = leadRepo

	// Providers
	aiClient := openai.New(cfg.OpenAIKey, cfg.OpenAIModel)
	placesClient := googleplaces.New(cfg.GoogleMapsKey)
	stripeClient := stripeadapter.New(cfg.StripeSecretKey)
	emailClient := sendgrid.New(cfg.SendgridKey, cfg.SendgridFrom)
	smsClient := twilio.New(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)

	var finder ports.EmailFinder
	if cfg.HunterKey != "" {
		finder = hunter.New(cfg.HunterKey)
	}

	// Services
	fetch := fetcher.New(cfg.FetchTimeout, cfg.FetchRetries, cfg.MaxFetches)
	cache := scoring.NewCache(cacheRepo, cfg.CacheMaxAge)
	orchestrator := scoring.NewOrchestrator(fetch, aiscore.New(aiClient), cache, cfg.MaxScorePages)
	creditSvc := creditsvc.NewService(creditRepo)
	drip := creditsvc.NewDrip(creditSvc, creditRepo, subRepo)
	placeSvc := placesvc.New(placesClient, leadRepo)
	billingSvc := billing.New(stripeClient, creditSvc, paymentRepo)
	outreachSvc := outreach.New(emailClient, smsClient, aiClient, creditSvc)
	enricher := enrichment.New(fetch, finder)
	batch := batchrunner.New(leadRepo, orchestrator, creditSvc, statusStore, cfg.BatchWorkers)

	go driprunner.New(drip, cfg.DripInterval).Run(ctx)

	srv := httpadapter.New(placeSvc, orchestrator, batch, statusStore,
		creditSvc, billingSvc, outreachSvc, enricher, leadRepo, cfg.StripeWebhookSecret)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	zap.L().Info("listening", zap.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		zap.L().Fatal("server error", zap.Error(err))
	}
}
