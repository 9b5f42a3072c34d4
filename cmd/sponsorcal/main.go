package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"sponsorcal/internal/config"
	"sponsorcal/internal/ics"
	"sponsorcal/internal/layout"
	appLog "sponsorcal/internal/log"
	"sponsorcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	cacheDir   string
	once       bool
	year       int
	month      int
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("sponsorcal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"visible_rows", conf.VisibleRows,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	loc := loadLocation(conf.Timezone)
	source := ics.NewService(flags.cacheDir, icsSources(conf), loc)

	if flags.once {
		if err := runOnce(ctx, conf, source, loc, flags.year, flags.month); err != nil {
			appLog.Error("layout run failed", err)
			os.Exit(1)
		}
		return
	}

	server := web.NewServer(conf, source)

	// Periodic refresh of the event cache.
	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		refreshCtx, refreshCancel := context.WithTimeout(ctx, 2*time.Minute)
		defer refreshCancel()
		server.Refresh(refreshCtx)
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	appLog.Info("sponsorcal exiting")
}

// runOnce computes one month's layout and prints it as JSON to stdout.
func runOnce(ctx context.Context, conf *config.Config, source *ics.Service, loc *time.Location, year, month int) error {
	now := time.Now().In(loc)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	events, err := source.Events(ctx, first.AddDate(0, 0, -7), first.AddDate(0, 1, 7))
	if err != nil {
		return err
	}

	result := layout.Compute(events, year, time.Month(month), layout.Options{
		VisibleRows: conf.VisibleRows,
		PaletteSize: len(conf.Palette),
		WeekStart:   conf.WeekStart,
		Location:    loc,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func icsSources(conf *config.Config) []ics.Source {
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, c := range conf.ICS {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			if c.Name != "" {
				id = c.Name
			} else {
				id = c.URL
			}
		}
		sources = append(sources, ics.Source{ID: id, URL: c.URL})
	}
	return sources
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/sponsorcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.cacheDir, "cache-dir", "/var/lib/sponsorcal/ics-cache", "Directory for the ICS feed cache")
	flag.BoolVar(&cfg.once, "once", false, "Compute one month layout, print JSON to stdout, and exit")
	flag.IntVar(&cfg.year, "year", 0, "Year for -once (default: current)")
	flag.IntVar(&cfg.month, "month", 0, "Month 1-12 for -once (default: current)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
