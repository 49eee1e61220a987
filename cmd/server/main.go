package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"questionnaire-api/internal/auth"
	"questionnaire-api/internal/config"
	apphttp "questionnaire-api/internal/http"
	"questionnaire-api/internal/identity"
	"questionnaire-api/internal/repository"
	"questionnaire-api/internal/repository/sqlite"
	"questionnaire-api/internal/service"
	"questionnaire-api/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	ledgerRepo := sqlite.NewLedgerRepository(db)
	credentialRepo := sqlite.NewCredentialRepository(db)
	surveyRepo := sqlite.NewSurveyRepository(db)
	responseRepo := sqlite.NewResponseRepository(db)
	lotteryRepo := sqlite.NewLotteryRepository(db)

	inits := []struct {
		name string
		init func(context.Context) error
	}{
		{"user", userRepo.Init},
		{"ledger", ledgerRepo.Init},
		{"credential", credentialRepo.Init},
		{"survey", surveyRepo.Init},
		{"response", responseRepo.Init},
		{"lottery", lotteryRepo.Init},
	}
	for _, r := range inits {
		if err := r.init(ctx); err != nil {
			logger.Fatalf("init %s repository: %v", r.name, err)
		}
	}

	provider := buildIdentityProvider(cfg, credentialRepo, logger)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	services := apphttp.Services{
		Auth:    service.NewAuthService(provider, userRepo),
		Users:   service.NewUserService(userRepo, ledgerRepo),
		Surveys: service.NewSurveyService(surveyRepo, responseRepo, userRepo),
		Analytics: service.NewAnalyticsService(userRepo, surveyRepo, responseRepo, ledgerRepo, storageSvc, service.ExportConfig{
			KeyPrefix: cfg.Storage.KeyPrefix,
			URLExpiry: time.Duration(cfg.Storage.URLExpiryMinutes) * time.Minute,
		}),
		Lottery: service.NewLotteryService(lotteryRepo, userRepo),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(services, auth.NewGate(provider, logger), logger)
	handler.RegisterRoutes(router, apphttp.RouteOptions{
		APIPrefix:      cfg.Server.APIPrefix,
		AllowedOrigins: cfg.Server.AllowedHosts,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s (api prefix %q)", cfg.Server.Addr, cfg.Server.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func buildIdentityProvider(cfg config.Config, credentials repository.CredentialRepository, logger *logrus.Logger) identity.Provider {
	if cfg.Identity.Mode == config.IdentityModeGoTrue {
		key := cfg.Identity.ServiceRoleKey
		if key == "" {
			key = cfg.Identity.AnonKey
		}
		logger.Infof("using gotrue identity provider at %s", cfg.Identity.BaseURL)
		return identity.NewGoTrueProvider(identity.GoTrueConfig{
			BaseURL: cfg.Identity.BaseURL,
			APIKey:  key,
			Timeout: cfg.Identity.Timeout,
		})
	}

	logger.Info("using local identity provider")
	return identity.NewLocalProvider(
		credentials,
		cfg.Identity.JWTSecret,
		time.Duration(cfg.Identity.TokenTTLMinutes)*time.Minute,
	)
}

// buildStorage returns nil when no bucket is configured; exports are then
// reported as unavailable.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage bucket not configured, response exports disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	svc, err := storage.NewS3Service(client, cfg.Storage.Bucket)
	if err != nil {
		return nil, err
	}
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return svc, nil
}
