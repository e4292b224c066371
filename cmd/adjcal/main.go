package main

import (
	"flag"
	"fmt"
	"os"

	"adjcal/internal/config"
	"adjcal/internal/dates"
	"adjcal/internal/ics"
	"adjcal/internal/prompt"
	"adjcal/internal/publish"

	appLog "adjcal/internal/log"
)

// flagConfig holds CLI flag values; non-empty values override the loaded config.
type flagConfig struct {
	configPath   string
	datesPath    string
	calendarPath string
	logLevel     string
	yes          bool
	force        bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err := config.ApplyEnv(conf); err != nil {
		appLog.Error("failed to apply environment overrides", err)
		os.Exit(1)
	}

	// CLI flags override config file and environment.
	if flags.datesPath != "" {
		conf.DatesFile = flags.datesPath
	}
	if flags.calendarPath != "" {
		conf.CalendarFile = flags.calendarPath
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	if flags.yes {
		conf.AssumeYes = true
	}
	if flags.force {
		conf.Force = true
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	appLog.Info("adjcal starting",
		"dates_file", conf.DatesFile,
		"calendar_file", conf.CalendarFile,
		"event_summary", conf.EventSummary,
		"assume_yes", conf.AssumeYes,
		"force", conf.Force,
	)

	var prompter prompt.Prompter = prompt.NewConsole(os.Stdin, os.Stdout)
	if conf.AssumeYes {
		prompter = prompt.AssumeYes(prompter)
	}

	result := dates.Read(conf.DatesFile, dates.Options{
		CommentPrefix: conf.CommentPrefix,
		Prompter:      prompter,
		Out:           os.Stdout,
	})
	if len(result.Dates) == 0 {
		if result.Cancelled {
			fmt.Println("Operation cancelled; calendar left unchanged.")
		} else {
			fmt.Println("No valid dates obtained; calendar left unchanged.")
		}
		return
	}

	store := ics.LoadOrCreate(conf.CalendarFile, conf.EventSummary, conf.ProductID)

	added := store.Merge(result.Dates)
	if added == 0 {
		appLog.Info("nothing to add, all dates already covered", "covered", store.CoveredCount())
		fmt.Println("\nNo new adjusted-workday dates were added (all already in the calendar).")
		publish.Instructions(os.Stdout, conf.CalendarFile)
		return
	}

	// Saving over a file whose content could not be parsed loses that
	// content; require an explicit go-ahead unless -force is set.
	if store.DiscardedContent && !conf.Force {
		fmt.Printf("\n'%s' exists but its content is not a usable calendar.\n", conf.CalendarFile)
		if !prompter.Confirm("Overwrite it and lose the existing content?") {
			appLog.Info("save skipped, existing file preserved", "path", conf.CalendarFile)
			fmt.Println("Calendar not saved; existing file preserved.")
			return
		}
	}

	if err := store.Save(conf.CalendarFile); err != nil {
		appLog.Error("failed to write calendar file", err, "path", conf.CalendarFile)
		fmt.Printf("\nError: could not write '%s'; previous content is untouched.\n", conf.CalendarFile)
		return
	}

	appLog.Info("calendar updated", "path", conf.CalendarFile, "added", added, "events", store.EventCount())
	fmt.Printf("\nAdded %d new adjusted-workday date(s) to '%s'.\n", added, conf.CalendarFile)
	publish.Instructions(os.Stdout, conf.CalendarFile)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "adjcal.yaml", "Path to config file")
	flag.StringVar(&cfg.datesPath, "dates", "", "Dates file (overrides config if set)")
	flag.StringVar(&cfg.calendarPath, "calendar", "", "Calendar file (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.yes, "yes", false, "Answer yes to all confirmation prompts")
	flag.BoolVar(&cfg.force, "force", false, "Overwrite an unparseable calendar file without asking")

	flag.Parse()

	return cfg
}
