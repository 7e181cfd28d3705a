package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-memo/backend/internal/config"
	"github.com/zhouzirui/z-memo/backend/internal/model/policy"
	"github.com/zhouzirui/z-memo/backend/internal/service/ai"
	"github.com/zhouzirui/z-memo/backend/internal/service/dialogue"
	"github.com/zhouzirui/z-memo/backend/internal/service/memory"
)

var (
	userID   string
	policyID string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "turntester",
	Short: "Drive the dialogue pipeline against the configured Ark model",
}

var chatCmd = &cobra.Command{
	Use:   "chat <message> [message...]",
	Short: "Send messages as consecutive turns for one user and print each structured reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, store, err := buildService(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		for i, message := range args {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			reply, err := svc.HandleTurn(ctx, userID, message)
			cancel()
			if err != nil {
				return fmt.Errorf("turn %d failed: %w", i+1, err)
			}
			if err := enc.Encode(reply); err != nil {
				return err
			}
		}

		log.Printf("[turntester] user=%s memory length=%d", userID, len(store.Get(userID)))
		return nil
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply <message>",
	Short: "Send one stateless message and print the raw model text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		text, err := svc.Reply(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&policyID, "policy", "p", "", "Policy ID (default: $MEMORY_POLICY or digest)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 45*time.Second, "Per-turn timeout")
	chatCmd.Flags().StringVarP(&userID, "user", "u", "manual", "User identifier the turns are recorded under")

	rootCmd.AddCommand(chatCmd, replyCmd)
}

func buildService(ctx context.Context) (*dialogue.Service, *memory.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if !cfg.AI.Enabled() {
		return nil, nil, fmt.Errorf("AI 未启用，请先在环境变量中配置 ARK_API_KEY 与 Model")
	}

	id := cfg.Memory.PolicyID
	if policyID != "" {
		id = policyID
	}
	p, ok := policy.NewMemoryStore(policy.Seed()).FindByID(id)
	if !ok {
		return nil, nil, fmt.Errorf("unknown policy %q", id)
	}

	gateway, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		return nil, nil, err
	}

	store := memory.NewStore(cfg.Memory.HistoryLimit)
	svc := dialogue.NewService(gateway, store, p, dialogue.Config{
		WindowSize:    cfg.Memory.WindowSize,
		TurnTimeout:   cfg.Memory.TurnTimeout,
		FormatRetries: cfg.Memory.FormatRetries,
	}, nil)
	return svc, store, nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
