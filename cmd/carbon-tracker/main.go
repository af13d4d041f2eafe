package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MikeMitch88/carbon-tracker/internal/charts"
	"github.com/MikeMitch88/carbon-tracker/internal/dashboard"
	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
	"github.com/MikeMitch88/carbon-tracker/internal/pipeline"
	"github.com/MikeMitch88/carbon-tracker/internal/report"
	"github.com/MikeMitch88/carbon-tracker/internal/session"
	"github.com/MikeMitch88/carbon-tracker/internal/settings"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "dash",
		short: "Open the interactive emissions dashboard",
		usage: "carbon-tracker dash",
		long: `Open the terminal dashboard: pick a country, walk the analysis year,
and read metrics, comparisons, reduction targets and climate tips.

Loads the dataset and resolves the prediction model once at startup. If the
saved model is missing or incompatible it is rebuilt from the dataset and
saved back; if no model can be built the dashboard runs in a degraded,
browse-only mode.
`,
		run: runDash,
	},
	{
		name:  "train",
		short: "Fit the prediction model and save it",
		usage: "carbon-tracker train",
		long: `Fit the country/year regression pipeline against the full dataset and
write the artifact to the configured model path.

Training is deterministic: the same dataset always produces a model with
identical predictions.
`,
		run: runTrain,
	},
	{
		name:  "report",
		short: "Write charts and an Excel report for a country",
		usage: "carbon-tracker report <country> [year]",
		long: `Compute the metrics snapshot for a country (and optional analysis year,
default: the dataset's most recent year) and write:

  <country>_trend.png        historical series vs global average
  <country>_comparison.png   latest values vs the configured comparison set
  <country>_targets.png      reduction pathway
  <country>_report.xlsx      Profile/Series/Comparison/Targets workbook
`,
		run: runReport,
	},
	{
		name:  "export",
		short: "Write the dataset download copy",
		usage: "carbon-tracker export",
		long: `Copy the raw dataset byte-for-byte to the configured export path
(a distinct filename, suitable for offering as a download).
`,
		run: runExport,
	},
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "carbon-tracker — country CO2 emissions analyzer\n\n")
	fmt.Fprintf(w, "Usage:\n  carbon-tracker <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nConfiguration is read from %s when present.\n", settings.DefaultFile)
	fmt.Fprintf(w, "Run 'carbon-tracker help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "carbon-tracker: unknown command %q\n\nRun 'carbon-tracker help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(os.Stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(os.Stdout, args[1])
		} else {
			printUsage(os.Stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'carbon-tracker help' for usage.", args[0])
}

// loadConfig reads the optional settings file from the working directory.
func loadConfig() (settings.Settings, error) {
	return settings.Load(settings.DefaultFile)
}

// ---------------------------------------------------------------------------
// dash
// ---------------------------------------------------------------------------

func runDash(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess := session.Open(cfg)
	if sess.State == session.Failed {
		return fmt.Errorf("%v\n\nensure the dataset exists at %q (or set dataset_path in %s)",
			sess.Err, cfg.DatasetPath, settings.DefaultFile)
	}
	for _, w := range sess.Warnings {
		log.Printf("warning: %s", w)
	}

	if _, err := tea.NewProgram(dashboard.New(sess)).Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// train
// ---------------------------------------------------------------------------

func runTrain(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ds, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return err
	}
	fmt.Printf("loaded %d records, %d countries (%d–%d)\n",
		ds.Len(), len(ds.Countries()), ds.EarliestYear(), ds.LatestYear())

	model, err := pipeline.Build(ds)
	if err != nil {
		return err
	}
	if err := model.Save(cfg.ModelPath); err != nil {
		return err
	}
	fmt.Printf("model trained on %d rows and saved to %s\n", model.TrainRows, cfg.ModelPath)
	return nil
}

// ---------------------------------------------------------------------------
// report
// ---------------------------------------------------------------------------

func runReport(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: carbon-tracker report <country> [year]")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess := session.Open(cfg)
	if !sess.CanBrowse() {
		return fmt.Errorf("cannot generate report: %v", sess.Err)
	}
	for _, w := range sess.Warnings {
		log.Printf("warning: %s", w)
	}

	country := args[0]
	year := sess.Dataset().LatestYear()
	if len(args) >= 2 {
		year, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[1])
		}
	}

	snap, err := sess.Metrics(country, year)
	if err != nil {
		return err
	}
	series := sess.SeriesFor(country)
	rows := sess.Comparison(append([]string{country}, cfg.CompareWith...))

	base := fileBase(country)
	avgByYear := sess.Engine().GlobalAverageByYear()

	if err := charts.TrendChart(series, avgByYear, country, year, snap.Current, base+"_trend.png"); err != nil {
		return err
	}
	fmt.Printf("wrote %s_trend.png\n", base)

	if err := charts.ComparisonChart(rows, snap.GlobalAverage, base+"_comparison.png"); err != nil {
		return err
	}
	fmt.Printf("wrote %s_comparison.png\n", base)

	if err := charts.TargetChart(snap.Targets, snap.Current, base+"_targets.png"); err != nil {
		return err
	}
	fmt.Printf("wrote %s_targets.png\n", base)

	if err := report.WriteWorkbook(base+"_report.xlsx", snap, series, rows); err != nil {
		return err
	}
	fmt.Printf("wrote %s_report.xlsx\n", base)
	return nil
}

// fileBase turns a country name into a safe lowercase file prefix.
func fileBase(country string) string {
	s := strings.ToLower(country)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func runExport(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := report.ExportDataset(cfg.DatasetPath, cfg.ExportPath); err != nil {
		return err
	}
	fmt.Printf("dataset exported to %s\n", cfg.ExportPath)
	return nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
