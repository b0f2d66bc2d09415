// Command verifierd is the HTTP front-end for the verification engine: it
// loads configuration, wires the Orchestrator, and exposes /v1/verify,
// /v1/verify/batch, /health and /metrics over gorilla/mux, mirroring the
// teacher's services/verifier/main.go almost directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/forgedlabs/mailverify/internal/config"
	"github.com/forgedlabs/mailverify/internal/engine"
	"github.com/forgedlabs/mailverify/internal/enrich"
	"github.com/forgedlabs/mailverify/internal/jobs"
)

// Server holds the collaborators every handler needs.
type Server struct {
	engine *engine.Engine
	jobs   *jobs.Registry
	router *mux.Router
	config *config.Config
}

// VerifyRequest is the public request body for a single verification.
type VerifyRequest struct {
	Email                string `json:"email"`
	FastMode             bool   `json:"fast_mode,omitempty"`
	EnableInternetChecks *bool  `json:"enable_internet_checks,omitempty"`
	ConfidenceMode       string `json:"confidence_mode,omitempty"`
}

// BatchVerifyRequest is the public request body for a batch verification.
type BatchVerifyRequest struct {
	Emails   []string `json:"emails"`
	FastMode bool     `json:"fast_mode,omitempty"`
}

// BatchVerifyResponse wraps the job ID a batch submission is tracked under.
type BatchVerifyResponse struct {
	JobID string `json:"job_id"`
}

const maxBatchSize = 1000

func main() {
	cfg := config.Load(getEnv("CONFIG_PATH", "config/config.yaml"))

	eng := engine.New(cfg, enrich.NoOp{}, loadOverrides())

	server := &Server{
		engine: eng,
		jobs:   jobs.New(),
		router: mux.NewRouter(),
		config: cfg,
	}
	server.setupRoutes()

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("verifierd starting on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

// loadOverrides returns an empty override table; spec.md §6 leaves the
// override source unspecified beyond "domain-confidence overrides may
// independently raise score" (see DESIGN.md), so this process carries none
// by default and a deployment wires its own via config in the future.
func loadOverrides() engine.Overrides {
	return engine.Overrides{}
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/verify", s.handleVerify).Methods("POST", "OPTIONS")
	api.HandleFunc("/verify/batch", s.handleBatchVerify).Methods("POST", "OPTIONS")
	api.HandleFunc("/jobs/{id}", s.handleJobStatus).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	s.router.Use(corsMiddleware)
	s.router.Use(loggingMiddleware)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	enableInternet := s.config.EnableInternetChecks
	if req.EnableInternetChecks != nil {
		enableInternet = *req.EnableInternetChecks
	}

	verdict := s.engine.Verify(r.Context(), req.Email, req.FastMode, enableInternet, req.ConfidenceMode)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(verdict)
}

func (s *Server) handleBatchVerify(w http.ResponseWriter, r *http.Request) {
	var req BatchVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Emails) == 0 {
		http.Error(w, "emails array is required", http.StatusBadRequest)
		return
	}
	if len(req.Emails) > maxBatchSize {
		http.Error(w, fmt.Sprintf("maximum %d emails per batch", maxBatchSize), http.StatusBadRequest)
		return
	}

	jobID := s.jobs.Create("batch_verify", len(req.Emails), map[string]any{"fast_mode": req.FastMode})
	emails := req.Emails
	fastMode := req.FastMode
	enableInternet := s.config.EnableInternetChecks

	go s.runBatch(jobID, emails, fastMode, enableInternet)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(BatchVerifyResponse{JobID: jobID})
}

// runBatch verifies every address sequentially, recording each outcome in
// the Job Registry. It runs detached from the request that created it.
func (s *Server) runBatch(jobID string, emails []string, fastMode, enableInternet bool) {
	s.jobs.Start(jobID)
	ctx := context.Background()

	for _, email := range emails {
		verdict := s.engine.Verify(ctx, email, fastMode, enableInternet, "")
		success := verdict.Status != ""
		var errDetail string
		if !success {
			errDetail = "verification produced no verdict for " + email
		}
		s.jobs.Increment(jobID, success, errDetail)
	}

	s.jobs.Complete(jobID, "", "")
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := s.jobs.Get(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(job)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":    "healthy",
		"version":   "1.0.0",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(health)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "# HELP mailverify_verifications_total Total verifications served\n")
	fmt.Fprintf(w, "# TYPE mailverify_verifications_total counter\n")
	fmt.Fprintf(w, "mailverify_verifications_total 0\n")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
