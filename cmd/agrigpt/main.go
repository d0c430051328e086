package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alumnx-ai-labs/agrigpt-frontend/config"
	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway/rag"
	"github.com/alumnx-ai-labs/agrigpt-frontend/internal/logging"
	"github.com/alumnx-ai-labs/agrigpt-frontend/session"
	"github.com/alumnx-ai-labs/agrigpt-frontend/store"
	"github.com/alumnx-ai-labs/agrigpt-frontend/tui"
)

var (
	// Flags
	configPath string
	serverURL  string
	backend    string
	verbose    bool

	imagePath   string
	resultLimit int

	configManager *config.Manager

	// Root command
	rootCmd = &cobra.Command{
		Use:               "agrigpt",
		Short:             "Agricultural advisory chat for the terminal",
		Long:              "AgriGPT - ask questions about citrus crops and government schemes, with optional leaf images",
		PersistentPreRunE: loadConfigManager,
		RunE:              runTUI,
		SilenceUsage:      true,
	}

	// Query command for one-shot queries
	queryCmd = &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a single question without entering the TUI",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.agrigpt/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "", "Storage backend (file, sqlite, redis, memory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	queryCmd.Flags().StringVarP(&imagePath, "image", "i", "", "Image of the affected plant")
	queryCmd.Flags().IntVarP(&resultLimit, "top-k", "k", 0, "Results used for image queries (1-5)")

	rootCmd.AddCommand(queryCmd)
	addAccountCommands(rootCmd)
	addSessionCommands(rootCmd)
	addAdminCommands(rootCmd)
	addConsultCommands(rootCmd)
	addConfigCommands(rootCmd)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logging.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfigManager(cmd *cobra.Command, _ []string) error {
	m, err := config.NewManager(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	v := m.Viper()
	flags := cmd.Flags()
	if err := v.BindPFlag("server.url", flags.Lookup("server")); err != nil {
		return err
	}
	if err := v.BindPFlag("store.backend", flags.Lookup("store")); err != nil {
		return err
	}
	if verbose {
		v.Set("log.level", "debug")
	}

	configManager = m
	return nil
}

// app holds everything a command needs to talk to the backend
type app struct {
	cfg     *config.Config
	kv      store.KV
	client  *rag.Client
	manager *session.Manager
}

func bootstrap(ctx context.Context, interactive bool) (*app, error) {
	cfg, err := configManager.Load()
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if interactive {
		// the TUI owns the terminal
		if err := logging.SetupFile(cfg.Log.File, level); err != nil {
			return nil, err
		}
	} else {
		logging.Setup(os.Stderr, level)
	}

	kv, err := store.Open(ctx, store.Options{
		Backend:    cfg.Store.Backend,
		Dir:        cfg.Store.Dir,
		SQLitePath: cfg.Store.SQLitePath,
		Redis: store.RedisOptions{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	client, err := rag.NewClient(
		gateway.WithBaseURL(cfg.Server.URL),
		gateway.WithTimeout(cfg.Server.Timeout),
		gateway.WithPaths(cfg.Server.TextPath, cfg.Server.ImagePath),
		gateway.WithHeaders(cfg.Server.Headers),
	)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	manager := session.New(store.NewSessions(kv), client,
		session.WithResultLimit(cfg.Chat.ResultLimit),
		session.WithDefaultLanguage(cfg.Chat.Language),
	)
	manager.Open(ctx)

	logging.For("main").Debug("started",
		"server", client.BaseURL(),
		"store", cfg.Store.Backend,
		"interactive", interactive)

	return &app{cfg: cfg, kv: kv, client: client, manager: manager}, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		logging.For("main").Warn("failed to close store", "error", err)
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	tui.SetTheme(a.cfg.UI.Theme)
	return tui.Run(cmd.Context(), a.manager)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	m := a.manager
	if cmd.Flags().Changed("top-k") {
		m.SetResultLimit(resultLimit)
	}
	m.SetDraftQuery(strings.Join(args, " "))

	if imagePath != "" {
		att, loadErr := gateway.LoadImage(imagePath)
		if loadErr != nil {
			return loadErr
		}
		err = m.SendImage(ctx, att)
	} else {
		err = m.SendText(ctx)
	}
	if archiveErr := m.Archive(ctx); archiveErr != nil {
		logging.For("main").Warn("failed to save chat", "error", archiveErr)
	}
	if err != nil {
		return err
	}

	msgs := m.Active().Messages
	fmt.Println(msgs[len(msgs)-1].Content)
	return nil
}
