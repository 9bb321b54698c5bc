package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/adapters/cache"
	"github.com/parchi-ai/clinic-backend/internal/adapters/database"
	"github.com/parchi-ai/clinic-backend/internal/adapters/events"
	"github.com/parchi-ai/clinic-backend/internal/api/handlers"
	"github.com/parchi-ai/clinic-backend/internal/api/routes"
	"github.com/parchi-ai/clinic-backend/internal/application/services"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/gemini"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/postgres"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/redis"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/whisper"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/notifications"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/observability"
	"github.com/parchi-ai/clinic-backend/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()
	log.Info().Msg("Redis client initialized")

	geminiClient, err := gemini.NewClient(&cfg.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Gemini client")
	}
	liveClient, err := gemini.NewLiveClient(&cfg.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Gemini live client")
	}

	var speechProvider providers.SpeechToTextProvider
	whisperClient, err := whisper.NewClient(&cfg.Whisper)
	if err != nil {
		log.Warn().Err(err).Msg("Whisper client unavailable, file transcription disabled")
	} else {
		speechProvider = whisperClient
	}

	var messageSender providers.MessageSender
	whatsappSender, err := notifications.NewWhatsAppCloudSender(&cfg.WhatsApp)
	if err != nil {
		log.Warn().Err(err).Msg("WhatsApp sender unavailable, appointment confirmations disabled")
	} else {
		messageSender = whatsappSender
	}

	cacheProvider := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	// Adapters
	var patientRepo repositories.PatientRepository = database.NewPatientAdapter(pgClient)
	patientRepo = database.NewCachedPatientAdapter(patientRepo, cacheProvider)

	appointmentRepo := database.NewAppointmentAdapter(pgClient)
	visitRepo := database.NewVisitAdapter(pgClient)
	documentRepo := database.NewDocumentAdapter(pgClient)
	consultRepo := database.NewConsultAdapter(pgClient)
	dumpRepo := database.NewClinicalDumpAdapter(pgClient)
	intakeRepo := database.NewIntakeSummaryAdapter(pgClient)
	differentialRepo := database.NewDifferentialAdapter(pgClient)
	reportRepo := database.NewReportInsightAdapter(pgClient)
	prescriptionRepo := database.NewPrescriptionAdapter(pgClient)
	noteRepo := database.NewNoteAdapter(pgClient)

	// Services
	contextService := services.NewContextService(patientRepo, visitRepo, documentRepo, consultRepo, dumpRepo)
	intakeService := services.NewIntakeSummaryService(contextService, appointmentRepo, intakeRepo, geminiClient, eventBus)
	differentialService := services.NewDifferentialService(patientRepo, appointmentRepo, intakeRepo, consultRepo, dumpRepo, differentialRepo, geminiClient)
	chatService := services.NewChatService(contextService, intakeRepo, geminiClient)
	searchService := services.NewSearchService(patientRepo, appointmentRepo, visitRepo, documentRepo, geminiClient)
	consultService := services.NewConsultService(patientRepo, consultRepo, dumpRepo, reportRepo, geminiClient, speechProvider)
	transcriptionService := services.NewTranscriptionService(liveClient)
	reminderService := services.NewReminderService(patientRepo, messageSender)

	// Handlers
	router := routes.NewRouter(
		handlers.NewPatientHandler(patientRepo),
		handlers.NewAppointmentHandler(appointmentRepo, reminderService),
		handlers.NewAIHandler(intakeService, differentialService, differentialRepo, eventBus),
		handlers.NewChatHandler(chatService),
		handlers.NewSearchHandler(searchService),
		handlers.NewConsultHandler(consultService, transcriptionService),
		handlers.NewRecordsHandler(visitRepo, documentRepo, prescriptionRepo, noteRepo, reportRepo, consultService),
		metrics,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming endpoints manage their own lifetimes
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
