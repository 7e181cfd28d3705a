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

	"github.com/joho/godotenv"
	"github.com/zhouzirui/z-memo/backend/internal/config"
	"github.com/zhouzirui/z-memo/backend/internal/handler"
	"github.com/zhouzirui/z-memo/backend/internal/model/policy"
	"github.com/zhouzirui/z-memo/backend/internal/observability"
	"github.com/zhouzirui/z-memo/backend/internal/service/ai"
	"github.com/zhouzirui/z-memo/backend/internal/service/dialogue"
	"github.com/zhouzirui/z-memo/backend/internal/service/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	policyStore := policy.NewMemoryStore(policy.Seed())
	activePolicy, ok := policyStore.FindByID(cfg.Memory.PolicyID)
	if !ok {
		log.Fatalf("unknown MEMORY_POLICY %q", cfg.Memory.PolicyID)
	}

	memoryStore := memory.NewStore(cfg.Memory.HistoryLimit)
	metrics := observability.NewMetrics(cfg.Metrics.Namespace, nil)

	var dialogueSvc *dialogue.Service
	if cfg.AI.Enabled() {
		gateway, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
		} else {
			dialogueSvc = dialogue.NewService(gateway, memoryStore, activePolicy, dialogue.Config{
				WindowSize:    cfg.Memory.WindowSize,
				TurnTimeout:   cfg.Memory.TurnTimeout,
				FormatRetries: cfg.Memory.FormatRetries,
			}, metrics)
			log.Printf("dialogue service initialized (policy=%s, window=%d, history=%d, retries=%d)",
				activePolicy.ID, cfg.Memory.WindowSize, cfg.Memory.HistoryLimit, cfg.Memory.FormatRetries)
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	router := handler.NewRouter(policyStore, dialogueSvc, memoryStore)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Z Memo backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
