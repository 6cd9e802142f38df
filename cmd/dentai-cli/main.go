package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dentai/analyzer"
	"dentai/report"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	modelPath  string
	ortLib     string
	topK       int
	reportPath string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "dentai-cli <image|dir> [...]",
	Short: "Dental radiograph analysis from the command line",
	Long:  `Classifies dental X-ray images against eight pathology categories and optionally exports a PDF report.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dentai-cli %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config.json (default: ./config.json)")
	rootCmd.Flags().StringVar(&modelPath, "model", "", "Path to the ONNX model (overrides config)")
	rootCmd.Flags().StringVar(&ortLib, "ort-lib", "", "Path to the ONNX Runtime shared library (overrides config)")
	rootCmd.Flags().IntVar(&topK, "topk", 0, "Ranked diagnoses per image (overrides config)")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "Write a PDF report to this path after analysis")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output cases as JSON")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log engine and batch events")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	cfg, err := analyzer.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = analyzer.FromEnv(cfg)
	if modelPath != "" {
		cfg.Engine.ModelPath = modelPath
	}
	if ortLib != "" {
		cfg.Engine.OrtLib = ortLib
	}
	if topK > 0 {
		cfg.TopK = topK
	}

	images, err := analyzer.CollectImages(args)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return errors.New("no supported images found (.png, .jpg, .jpeg)")
	}

	var logger *log.Logger
	if verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	interactive := isatty.IsTerminal(os.Stderr.Fd())
	spin := startSpinner(interactive, " loading model...")
	engine, err := analyzer.LoadEngine(cfg.Engine, logger)
	stopSpinner(spin)
	if err != nil {
		return err
	}
	defer engine.Close()

	cb := analyzer.BatchCallbacks{
		OnTaskError: func(path string, err error) {
			_, _ = color.New(color.FgYellow).Fprintf(os.Stderr, "warning: %v\n", err)
		},
	}
	if !jsonOutput {
		cb.OnCaseAdded = func(c analyzer.Case) { printCase(os.Stdout, c) }
	}
	controller, err := analyzer.NewBatchController(engine, cfg.TopK, cb, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	controller.Submit(images)
	controller.Wait()
	cases := controller.Cases()

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(cases); err != nil {
			return err
		}
	} else {
		printSummary(os.Stdout, cases, time.Since(start))
	}

	if reportPath != "" {
		gen := report.NewGenerator(cfg.ReportTitle)
		if err := gen.Write(reportPath, cases); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("report saved to %s\n", reportPath)
	}
	return nil
}

func printCase(w io.Writer, c analyzer.Case) {
	if c.Failed {
		_, _ = color.New(color.FgRed, color.Bold).Fprintf(w, "✗ %s\n", c.ImagePath)
		return
	}
	fmt.Fprintln(w, c.ImagePath)
	for i, p := range c.Result {
		line := fmt.Sprintf("  %d. %s  %.1f%%", i+1, analyzer.TitleLabel(p.Label), p.Confidence*100)
		if i == 0 {
			_, _ = color.New(color.FgGreen, color.Bold).Fprintln(w, line)
		} else {
			_, _ = color.New(color.FgHiBlack).Fprintln(w, line)
		}
	}
}

func printSummary(w io.Writer, cases []analyzer.Case, elapsed time.Duration) {
	failed := 0
	for _, c := range cases {
		if c.Failed {
			failed++
		}
	}
	fmt.Fprintln(w)
	_, _ = color.New(color.FgHiBlack).Fprintf(w, "analyzed %d images in %s", len(cases), elapsed.Round(time.Millisecond))
	if failed > 0 {
		_, _ = color.New(color.FgRed).Fprintf(w, " (%d failed)", failed)
	}
	fmt.Fprintln(w)
}

func startSpinner(interactive bool, suffix string) *spinner.Spinner {
	if !interactive {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s
}

func stopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}
