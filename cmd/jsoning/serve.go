package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go_jsoning_server/app/http_jsoning_app"
	"go_jsoning_server/internal/domain/services"
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/internal/infra/rulesource"
	"go_jsoning_server/utils"

	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr  string
	db    string
	rules string
	watch bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSONing server",
	Long: `Start the JSONing server.

Examples:
  # In-memory store, no rules
  jsoning serve

  # Persist to a JSON file and hot reload rules
  jsoning serve --db db.json --rules rules.yaml --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.addr, "addr", "a", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.db, "db", "", "JSON db file (selects the file store)")
	serveCmd.Flags().StringVarP(&serveFlags.rules, "rules", "r", "", "interception rule file (.json, .yaml, .yml)")
	serveCmd.Flags().BoolVarP(&serveFlags.watch, "watch", "w", false, "reload the rule file when it changes")
}

// App 由 wire 组装的运行时对象
type App struct {
	Server *http_jsoning_app.Server
	Rules  *services.RuleMatchService
}

func NewApp(server *http_jsoning_app.Server, rules *services.RuleMatchService) *App {
	return &App{Server: server, Rules: rules}
}

func loadServeConfig() (*configs.Config, error) {
	cfg, err := configs.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if serveFlags.addr != "" {
		cfg.Server.Addr = serveFlags.addr
	}
	if serveFlags.db != "" {
		cfg.Store.Driver = configs.StoreDriverFile
		cfg.Store.File = serveFlags.db
	}
	if serveFlags.rules != "" {
		cfg.Rules.File = serveFlags.rules
	}
	if serveFlags.watch {
		cfg.Rules.Watch = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	if err := utils.InitLogger(utils.LogOptions{
		Level:      cfg.Log.Level,
		FilePath:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	log := utils.GetLogger()

	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Rules.Watch {
		watcher, err := rulesource.NewWatcher(cfg.Rules.File, cfg.Rules.Debounce)
		if err != nil {
			return err
		}
		defer watcher.Close()

		go func() {
			err := watcher.Run(ctx, func() {
				if err := app.Rules.Reload(cfg.Rules.File); err == nil {
					log.Infof("reloaded %d rules from %s", app.Rules.RuleCount(), cfg.Rules.File)
				}
			})
			if err != nil {
				log.Errorf("rule watcher stopped: %v", err)
			}
		}()
	}

	log.Infof("JSONing server starting with %d rules, store=%s", app.Rules.RuleCount(), cfg.Store.Driver)
	return app.Server.Run(ctx)
}
