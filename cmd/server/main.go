package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/amrita-prog/Paynion-Project/internal/auth"
	"github.com/amrita-prog/Paynion-Project/internal/config"
	"github.com/amrita-prog/Paynion-Project/internal/metrics"
	"github.com/amrita-prog/Paynion-Project/internal/middleware"
	"github.com/amrita-prog/Paynion-Project/internal/ocr"
	"github.com/amrita-prog/Paynion-Project/internal/service"
	"github.com/amrita-prog/Paynion-Project/internal/settlement"
	"github.com/amrita-prog/Paynion-Project/internal/storage/sqlite"
	"github.com/amrita-prog/Paynion-Project/pkg/logging"
)

// rpcReadMaxBytes bounds every request body except bill uploads.
const rpcReadMaxBytes = 1 << 20

func main() {
	logger := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		slog.Error("Failed to create data directory", "error", err)
		os.Exit(1)
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	lifecycle := settlement.NewLifecycle(store)

	recognizer := ocr.ByExtension{
		Image: ocr.NewTesseract(ocr.TesseractConfig{
			Binary:      cfg.TesseractPath,
			Lang:        cfg.TesseractLang,
			TessdataDir: cfg.TessdataDir,
			PSM:         cfg.TesseractPSM,
		}, ocr.ExecRunner{}),
		PDF: ocr.PDFText{},
	}
	parser := ocr.NewParser(recognizer, ocr.WithTimeout(cfg.OCRTimeout), ocr.WithLogger(logger))

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(jwtManager, service.PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)
	readMax := connect.WithReadMaxBytes(rpcReadMaxBytes)
	// Bill content travels base64 encoded in JSON.
	billReadMax := connect.WithReadMaxBytes(int(cfg.UploadMaxBytes*4/3) + 4096)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	mount := func(path string, h http.Handler) {
		r.Handle(path+"*", h)
	}
	mount(service.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store, logger), interceptors, readMax))
	mount(service.NewGroupServiceHandler(service.NewGroupService(store), interceptors, readMax))
	mount(service.NewExpenseServiceHandler(service.NewExpenseService(store), interceptors, readMax))
	mount(service.NewBillServiceHandler(service.NewBillService(parser, cfg.UploadMaxBytes), interceptors, billReadMax))
	mount(service.NewSettlementServiceHandler(service.NewSettlementService(store, lifecycle), interceptors, readMax))
	mount(service.NewPaymentServiceHandler(service.NewPaymentService(store), interceptors, readMax))

	r.With(middleware.RequireAuthHTTP(jwtManager)).
		Method(http.MethodGet, "/export/groups/{groupID}.xlsx", service.NewExportHandler(store))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimiddleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
