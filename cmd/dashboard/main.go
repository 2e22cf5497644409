package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/auth"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/application"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/infrastructure"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/interfaces"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/config"
	database "github.com/Lucasmagista/financial-dashboard-sub001/internal/db"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/provider"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

type Server struct {
	router            *http.ServeMux
	jwtMiddleware     func(http.Handler) http.Handler
	cronMiddleware    func(http.Handler) http.Handler
	webhookHandler    *interfaces.WebhookHandler
	connectionHandler *interfaces.ConnectionHandler
	cronHandler       *interfaces.CronHandler
	forecastHandler   *interfaces.ForecastHandler
	txHandler         *interfaces.TransactionHandler
	categoryHandler   *interfaces.CategoryHandler
	recurringHandler  *interfaces.RecurringHandler
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/webhooks/provider", http.HandlerFunc(s.webhookHandler.HandleWebhook))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Internal routes (cron bearer token)
	internalRoutes := http.NewServeMux()
	internalRoutes.Handle("POST /api/internal/sync", s.cronMiddleware(http.HandlerFunc(s.cronHandler.SyncAll)))
	internalRoutes.Handle("POST /api/internal/recurring/process", s.cronMiddleware(http.HandlerFunc(s.cronHandler.ProcessRecurring)))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("POST /api/protected/connections",
		s.jwtMiddleware(http.HandlerFunc(s.connectionHandler.Connect)))
	protectedRoutes.Handle("GET /api/protected/connections",
		s.jwtMiddleware(http.HandlerFunc(s.connectionHandler.GetConnections)))
	protectedRoutes.Handle("POST /api/protected/connections/{id}/sync",
		s.jwtMiddleware(http.HandlerFunc(s.connectionHandler.SyncConnection)))
	protectedRoutes.Handle("DELETE /api/protected/connections/{id}",
		s.jwtMiddleware(http.HandlerFunc(s.connectionHandler.Disconnect)))

	protectedRoutes.Handle("GET /api/protected/forecast",
		s.jwtMiddleware(http.HandlerFunc(s.forecastHandler.GetForecast)))

	protectedRoutes.Handle("GET /api/protected/transactions",
		s.jwtMiddleware(http.HandlerFunc(s.txHandler.GetTransactions)))
	protectedRoutes.Handle("POST /api/protected/transactions/{id}/categorize",
		s.jwtMiddleware(http.HandlerFunc(s.txHandler.CategorizeTransaction)))
	protectedRoutes.Handle("POST /api/protected/transactions/categorize-pending",
		s.jwtMiddleware(http.HandlerFunc(s.txHandler.CategorizePending)))

	protectedRoutes.Handle("POST /api/protected/categories",
		s.jwtMiddleware(http.HandlerFunc(s.categoryHandler.CreateCategory)))
	protectedRoutes.Handle("GET /api/protected/categories",
		s.jwtMiddleware(http.HandlerFunc(s.categoryHandler.GetCategories)))

	protectedRoutes.Handle("POST /api/protected/recurring",
		s.jwtMiddleware(http.HandlerFunc(s.recurringHandler.CreateTemplate)))
	protectedRoutes.Handle("GET /api/protected/recurring",
		s.jwtMiddleware(http.HandlerFunc(s.recurringHandler.GetTemplates)))
	protectedRoutes.Handle("DELETE /api/protected/recurring/{id}",
		s.jwtMiddleware(http.HandlerFunc(s.recurringHandler.DeactivateTemplate)))

	// Main router
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/internal/", internalRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	dbService, err := database.NewDBService(cfg.DBConnectionString)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	providerClient := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderClientID, cfg.ProviderClientSecret)

	connectionRepo := infrastructure.NewConnectionRepository(dbService.DB)
	accountRepo := infrastructure.NewAccountRepository(dbService.DB)
	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	recurringRepo := infrastructure.NewRecurringTemplateRepository(dbService.DB)
	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)

	mergeService := application.NewMergeService(accountRepo, transactionRepo, providerClient)
	connectionService := application.NewConnectionService(connectionRepo, accountRepo, providerClient, mergeService)
	webhookService := application.NewWebhookService(connectionRepo, connectionService)
	recurringService := application.NewRecurringService(recurringRepo, transactionRepo, categoryRepo)
	categorizerService := application.NewCategorizerService(transactionRepo, categoryRepo)
	forecastService := application.NewForecastService(transactionRepo, accountRepo, recurringRepo)
	transactionService := application.NewTransactionService(transactionRepo)
	categoryService := application.NewCategoryService(categoryRepo)

	server := &Server{
		jwtMiddleware:     auth.JWTAccessTokenMiddleware(jwtManager),
		cronMiddleware:    auth.CronTokenMiddleware(cfg.CronSecret),
		webhookHandler:    interfaces.NewWebhookHandler(webhookService, cfg.WebhookSecret, respondJSON, respondError),
		connectionHandler: interfaces.NewConnectionHandler(connectionService, respondJSON, respondError),
		cronHandler:       interfaces.NewCronHandler(connectionService, recurringService, respondJSON, respondError),
		forecastHandler:   interfaces.NewForecastHandler(forecastService, respondJSON, respondError),
		txHandler:         interfaces.NewTransactionHandler(transactionService, categorizerService, respondJSON, respondError),
		categoryHandler:   interfaces.NewCategoryHandler(categoryService, respondJSON, respondError),
		recurringHandler:  interfaces.NewRecurringHandler(recurringService, respondJSON, respondError),
	}
	server.RegisterRoutes()

	if err := StartSyncScheduler(connectionService); err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}
	if err := StartRecurringScheduler(recurringService); err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}

	handler := loggingMiddleware(server.router)
	log.Println("Starting perf on port 6060...")
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func StartSyncScheduler(connectionService *application.ConnectionService) error {
	c := cron.New()
	_, err := c.AddFunc("@every 6h", func() {
		result, err := connectionService.SyncAll(context.Background(), 0)
		if err != nil {
			log.Printf("Error running batch sync: %v", err)
		} else {
			log.Printf("Batch sync finished: %d connections, %d accounts, %d transactions, %d failed",
				result.Connections, result.AccountsSynced, result.TransactionsSynced, result.Failed)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

func StartRecurringScheduler(recurringService *application.RecurringService) error {
	c := cron.New()
	_, err := c.AddFunc("@every 1h", func() {
		result, err := recurringService.ProcessDue(time.Now())
		if err != nil {
			log.Printf("Error processing recurring transactions: %v", err)
		} else {
			log.Printf("Recurring pass finished: %d/%d templates processed", result.Processed, result.Total)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
