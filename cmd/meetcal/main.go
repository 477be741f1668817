package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"meetcal/internal/config"
	"meetcal/internal/importer"
	"meetcal/internal/layout"
	appLog "meetcal/internal/log"
	"meetcal/internal/schedule"
	"meetcal/internal/web"
	"meetcal/internal/workbook"
)

type flagConfig struct {
	configPath string
	listen     string
	importPath string
	once       bool
}

func main() {
	flags := parseFlags()
	if err := run(flags); err != nil {
		appLog.Error("meetcal failed", err)
		os.Exit(1)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath, "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.importPath, "import", "", "Workbook to import on startup (overrides workbook.path)")
	flag.BoolVar(&cfg.once, "once", false, "Import, print the week layout as JSON and exit")

	flag.Parse()

	return cfg
}

func run(flags flagConfig) error {
	conf, err := config.Load(flags.configPath)
	if err != nil {
		if conf == nil {
			return fmt.Errorf("load config %s: %w", flags.configPath, err)
		}
		appLog.Warn("could not write default config; continuing with defaults", "config_path", flags.configPath, "err", err)
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.importPath != "" {
		conf.Workbook.Path = flags.importPath
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"sheet_name", conf.SheetName,
		"workbook", conf.Workbook.Path,
		"reimport", conf.Workbook.Reimport,
		"once", flags.once,
	)

	store := schedule.NewStore(schedule.Options{Location: conf.Location()})

	if conf.Workbook.Path != "" {
		if err := importFile(store, conf); err != nil {
			if flags.once {
				return err
			}
			appLog.Error("startup import failed", err, "path", conf.Workbook.Path)
		}
	}

	if flags.once {
		return printWeek(os.Stdout, store, web.GridFromConfig(conf.Grid))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if conf.Workbook.Path != "" && conf.Workbook.Reimport != "" {
		c := cron.New(cron.WithLocation(conf.Location()))
		if _, err := c.AddFunc(conf.Workbook.Reimport, func() {
			if err := importFile(store, conf); err != nil {
				appLog.Error("scheduled import failed", err, "path", conf.Workbook.Path)
			}
		}); err != nil {
			return fmt.Errorf("invalid workbook.reimport %q: %w", conf.Workbook.Reimport, err)
		}
		c.Start()
		defer c.Stop()
		appLog.Info("scheduled re-import enabled", "spec", conf.Workbook.Reimport)
	}

	srv := web.NewServer(conf, store, nil)
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	appLog.Info("meetcal exiting")
	return nil
}

// importFile replaces the store's meetings with the configured workbook.
func importFile(store *schedule.Store, conf *config.Config) error {
	wb, err := workbook.Open(conf.Workbook.Path)
	if err != nil {
		return err
	}
	_, err = store.Import(wb, importer.Options{SheetName: conf.SheetName})
	return err
}

type weekOutput struct {
	DayLabels []string     `json:"day_labels"`
	Days      []layout.Day `json:"days"`
}

func printWeek(w io.Writer, store *schedule.Store, grid layout.Grid) error {
	window, ok := store.Window()
	if !ok {
		return errors.New("no meetings to lay out")
	}
	labels := store.DayLabels()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(weekOutput{
		DayLabels: labels,
		Days:      layout.Week(window, labels, store.List(), grid),
	})
}
