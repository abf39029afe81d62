package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	tiktok "github.com/RavensCloud/tiktok-pulse"
)

var (
	configFile string
	envFile    string
	account    string
	videoURL   string
	headless   string
	replayFile string
	debug      bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiktok",
		Short: "Sample engagement metrics from a TikTok profile or video",
		Long: `Open a headless browser, pick a video (a random one from --account, or
--video directly), read its view count, like count and top comments, and
append the result to a CSV report. A simulated comment is generated and
recorded but never posted.

Settings come from --config (YAML), a .env file and the environment
(TIKTOK_ACCOUNT, VIDEO_URL, HEADLESS, ...); flags win over both.`,
		SilenceUsage: true,
		RunE:         run,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "env file to load (default ./.env if present)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "profile handle to sample a video from")
	cmd.Flags().StringVarP(&videoURL, "video", "v", "", "video URL to scrape directly")
	cmd.Flags().StringVar(&headless, "headless", "", `run the browser headless ("true"/"false")`)
	cmd.Flags().StringVar(&replayFile, "replay", "", "serve the target URL from a saved HTML snapshot instead of a browser")
	cmd.Flags().BoolVar(&debug, "debug", false, "log every swallowed extraction error")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := tiktok.Load(configFile, envFile)
	if err != nil {
		return err
	}
	if account != "" {
		cfg.Account = account
	}
	if videoURL != "" {
		cfg.VideoURL = videoURL
	}
	if headless != "" {
		cfg.Headless = tiktok.ParseBool(headless)
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := tiktok.NewLogger(cfg.LogFile, os.Stdout, cfg.Debug)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, isProfile := cfg.Target()
	logger.Info("=== TikTok Scraper Started ===")
	logger.Infof("TARGET: %s | PROFILE: %v | HEADLESS: %v", target, isProfile, cfg.Headless)
	defer logger.Info("=== Finished ===")

	page, cleanup, err := openPage(cfg, target)
	if err != nil {
		logger.Errorf("Browser session failed: %v", err)
		return nil
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warnf("Cleanup incomplete: %v", err)
		}
	}()

	runner := tiktok.NewRunner(cfg, page, tiktok.NewCSVReport(cfg.CSVReport), logger, nil)
	_ = runner.Run(ctx)
	return nil
}

// openPage returns the live browser page, or a snapshot page in replay mode.
func openPage(cfg *tiktok.Config, target string) (tiktok.Page, func() error, error) {
	if replayFile != "" {
		page, err := tiktok.LoadSnapshot(replayFile, target)
		if err != nil {
			return nil, nil, err
		}
		cfg.Delays = tiktok.NoDelays()
		return page, func() error { return nil }, nil
	}

	session, err := tiktok.OpenSession(cfg.SessionConfig(tiktok.PickIdentity(nil)))
	if err != nil {
		return nil, nil, err
	}
	return session.Page(), session.Close, nil
}
