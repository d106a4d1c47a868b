package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/simjow/shomar/internal/bot"
	"github.com/simjow/shomar/internal/config"
	"github.com/simjow/shomar/internal/farsi"
	"github.com/simjow/shomar/internal/history"
	"github.com/simjow/shomar/internal/notify"
	"github.com/simjow/shomar/internal/schedule"
	"github.com/simjow/shomar/internal/scheduler"
	"github.com/simjow/shomar/internal/state"
	"github.com/simjow/shomar/internal/twitter"
)

var rootCmd = &cobra.Command{
	Use:   "shomar",
	Short: "shomar - daily Persian counter bot for X",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one posting run (cron/CI entry point)",
	RunE:  runRun,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a daemon, posting on a cron schedule",
	RunE:  runServe,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and state directory",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show counter, schedule and cooldown status",
	RunE:  runStatus,
}

var convertCmd = &cobra.Command{
	Use:   "convert <number>",
	Short: "Print the Persian word form of a number",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	rootCmd.AddCommand(runCmd, serveCmd, onboardCmd, statusCmd, convertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newBot assembles the orchestrator and its collaborators from config.
// The returned cleanup closes the history ledger, when one is open.
func newBot(cfg *config.Config) (*bot.Bot, func(), error) {
	if cfg.Twitter.APIKey == "" || cfg.Twitter.AccessToken == "" {
		return nil, nil, fmt.Errorf("twitter credentials not set; run 'shomar onboard' or set API_KEY / ACCESS_TOKEN and their secrets")
	}

	client := twitter.NewClient(twitter.Credentials{
		APIKey:            cfg.Twitter.APIKey,
		APIKeySecret:      cfg.Twitter.APIKeySecret,
		AccessToken:       cfg.Twitter.AccessToken,
		AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
	})
	store := state.NewStore(cfg.Bot.StateDir, cfg.Bot.MinCounter)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			return nil, nil, fmt.Errorf("init telegram notifier: %w", err)
		}
		notifier = tg
	}

	cleanup := func() {}
	var ledger bot.Ledger
	if cfg.History.Enabled {
		l, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open history ledger: %w", err)
		}
		ledger = l
		cleanup = func() { l.Close() }
	}

	b, err := bot.New(cfg.Bot, client, store, notifier, ledger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return b, cleanup, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	b, cleanup, err := newBot(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := b.Run(ctx)
	if err != nil {
		return err
	}

	if res.StateChanged {
		log.Printf("[main] state files changed during this run, commit them")
	} else {
		log.Printf("[main] no state changes during this run")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	b, cleanup, err := newBot(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := newScheduler(cfg.Serve.CronSpec, b)
	if err := svc.Start(ctx); err != nil {
		return err
	}

	log.Printf("[main] serving, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func newScheduler(spec string, b *bot.Bot) *scheduler.Service {
	svc := scheduler.New(spec)
	svc.OnRun = func(ctx context.Context) error {
		res, err := b.Run(ctx)
		if err != nil {
			return err
		}
		if res.Posted > 0 {
			log.Printf("[main] posted %d counter value(s)", res.Posted)
		}
		return nil
	}
	return svc
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.Bot.StateDir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set your API keys\n", cfgPath)
	fmt.Println("  2. Or set API_KEY, API_KEY_SECRET, ACCESS_TOKEN, ACCESS_TOKEN_SECRET")
	fmt.Println("  3. Run 'shomar status' to check the schedule")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("State dir: %s\n", cfg.Bot.StateDir)
	fmt.Printf("Campaign: %s, counter %d..%d\n", cfg.Bot.StartDate, cfg.Bot.MinCounter, cfg.Bot.MaxCounter)
	fmt.Printf("API key: %s\n", maskKey(cfg.Twitter.APIKey))
	fmt.Printf("Access token: %s\n", maskKey(cfg.Twitter.AccessToken))

	store := state.NewStore(cfg.Bot.StateDir, cfg.Bot.MinCounter)
	st := store.ReadState()
	fmt.Printf("Stored counter: %d\n", st.Counter)
	if st.LastPostID != "" {
		fmt.Printf("Last post: %s\n", st.LastPostID)
	}

	start, err := cfg.Bot.Start()
	if err != nil {
		return err
	}
	expected := schedule.ExpectedCounter(time.Now(), start, cfg.Bot.MinCounter, cfg.Bot.MaxCounter)
	if expected == 0 {
		fmt.Println("Schedule: not active today")
	} else {
		fmt.Printf("Expected counter: %d (lag %d)\n", expected, expected-st.Counter)
	}

	if at, ok := store.ReadCooldown(); ok {
		remaining := cfg.Bot.Cooldown() - time.Since(at)
		if remaining > 0 {
			fmt.Printf("Cooldown: active, %s remaining\n", remaining.Round(time.Second))
		} else {
			fmt.Println("Cooldown: marker present but expired")
		}
	} else {
		fmt.Println("Cooldown: none")
	}

	if cfg.History.Enabled {
		l, err := history.Open(cfg.History.DBPath)
		if err != nil {
			fmt.Printf("History: error (%v)\n", err)
			return nil
		}
		defer l.Close()
		entries, err := l.Recent(5)
		if err != nil {
			return err
		}
		fmt.Printf("Recent publishes (%d):\n", len(entries))
		for _, e := range entries {
			fmt.Printf("  %s  #%d  %s  [%s]\n", e.PostedAt.Format("2006-01-02"), e.Counter, e.Text, e.Status)
		}
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	word, err := convertArg(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), word)
	return nil
}

func convertArg(s string) (string, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("not a number: %q", s)
	}
	return farsi.Convert(n), nil
}

// maskKey hides all but the edges of a credential.
func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 8 {
		return "set"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
