// Package main provides the plotpipe CLI application entry point.
// plotpipe drives gnuplot from YAML plot scripts or an interactive shell.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abiosoft/ishell/v2"
	"github.com/spf13/cobra"

	"plotpipe/internal/config"
	"plotpipe/internal/logger"
	"plotpipe/internal/output"
	"plotpipe/internal/script"
	"plotpipe/internal/shell"
	"plotpipe/internal/version"
	"plotpipe/pkg/gnuplot"
)

var (
	loader      = config.NewLoader()
	cfg         *config.Config
	updateGold  bool
	showEngine  bool
	testMode    bool
	errNotEqual = errors.New("recorded commands differ from golden file")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plotpipe",
	Short: "plotpipe - drive gnuplot from scripts and the shell",
	Long: `plotpipe translates plot descriptions into gnuplot commands and inline data
and drives a gnuplot process over a synchronous pipe protocol.`,
	SilenceUsage: true,
	RunE:         runShell, // Default behavior is to run the interactive shell
}

// shellCmd represents the shell command (explicit version of default behavior)
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive gnuplot shell",
	Long:  `Start an interactive shell that forwards every line to gnuplot and prints its answer.`,
	RunE:  runShell,
}

// batchCmd represents the batch command for non-interactive script execution
var batchCmd = &cobra.Command{
	Use:   "batch <script.yaml>",
	Short: "Execute a YAML plot script",
	Long: `Execute a YAML plot script against a gnuplot process.
Combine with --output to render plots to files in CI pipelines.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// checkCmd compares the commands a script produces with a golden file
var checkCmd = &cobra.Command{
	Use:   "check <script.yaml> <golden.gp>",
	Short: "Compare the commands a script sends with a golden file",
	Long: `Run a script against a recording engine (no gnuplot needed) and diff the
recorded command stream against a golden file. Use --update to rewrite it.`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of plotpipe and, with --engine, of gnuplot.`,
	RunE:  runVersion,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	flags.String("gnuplot", "", "gnuplot command line [default: gnuplot]")
	flags.Bool("persist", false, "Keep plot windows open after exit")
	flags.String("timeout", "", "Per-command timeout, e.g. 30s (0 waits forever)")
	flags.Bool("binary", false, "Send numeric data in binary form")
	flags.Bool("debug", false, "Log all gnuplot traffic")
	flags.String("output", "", "Write plots to this file; the terminal follows the extension")
	flags.String("output-options", "", "Extra terminal options for --output")
	flags.String("color", "", "Message style (auto|styled|plain|json) [default: auto]")
	flags.BoolVar(&testMode, "test-mode", false, "Keep log output at info level")

	// Bind flags to viper
	bindings := map[string]string{
		config.KeyLogLevel:      "log-level",
		config.KeyLogFile:       "log-file",
		config.KeyGnuplot:       "gnuplot",
		config.KeyPersist:       "persist",
		config.KeyTimeout:       "timeout",
		config.KeyBinary:        "binary",
		config.KeyDebug:         "debug",
		config.KeyOutput:        "output",
		config.KeyOutputOptions: "output-options",
		config.KeyColor:         "color",
	}
	for key, flag := range bindings {
		if err := loader.Viper().BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	checkCmd.Flags().BoolVar(&updateGold, "update", false, "Rewrite the golden file with the recorded commands")
	versionCmd.Flags().BoolVar(&showEngine, "engine", false, "Start gnuplot and report its version")

	// Add subcommands
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	var err error
	cfg, err = loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Configure logger with the resolved level
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
	if cfg.Debug && !testMode {
		logger.Logger.SetLevel(logger.ParseLevel("debug"))
	}
}

func runShell(_ *cobra.Command, _ []string) error {
	logger.Debug("Starting plotpipe shell", "version", version.Version)

	out := printer(os.Stdout)
	s, err := gnuplot.New(append(gnuplot.FromConfig(cfg), gnuplot.WithDiagnostics(out.Warning))...)
	if err != nil {
		return fmt.Errorf("failed to start gnuplot: %w", err)
	}
	defer s.Close()

	sh := ishell.New()
	sh.SetPrompt("gnuplot> ")

	// help is a gnuplot command here
	sh.DeleteCmd("help")

	engine := "unknown"
	if v, err := s.Version(); err == nil {
		engine = v.String()
	}
	sh.Println(fmt.Sprintf("%s - gnuplot %s", version.GetFormattedVersion(), engine))
	sh.Println("Lines are sent to gnuplot as typed. Type 'exit' to quit.")

	sh.NotFound(shell.NewHandler(s, out).ProcessInput)

	sh.Run()
	return nil
}

func runBatch(_ *cobra.Command, args []string) error {
	scriptPath := args[0]

	logger.Info("Running plot script", "script", scriptPath)

	if err := validateScriptFile(scriptPath); err != nil {
		return err
	}
	sc, err := script.Load(scriptPath)
	if err != nil {
		return err
	}

	s, err := gnuplot.New(gnuplot.FromConfig(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to start gnuplot: %w", err)
	}
	defer s.Close()

	if err := script.Run(s, sc); err != nil {
		return fmt.Errorf("script %s failed: %w", scriptPath, err)
	}

	logger.Info("Script executed successfully", "script", scriptPath, "commands", len(s.History()))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	scriptPath, goldenPath := args[0], args[1]

	if err := validateScriptFile(scriptPath); err != nil {
		return err
	}
	sc, err := script.Load(scriptPath)
	if err != nil {
		return err
	}

	opts := []gnuplot.Option{gnuplot.WithBinary(cfg.Binary)}
	if cfg.Output != "" {
		opts = append(opts, gnuplot.WithOutput(cfg.Output, cfg.OutputOptions))
	}
	transcript, err := script.Record(sc, opts...)
	if err != nil {
		return fmt.Errorf("script %s failed: %w", scriptPath, err)
	}

	if updateGold {
		if err := script.WriteGolden(goldenPath, transcript); err != nil {
			return err
		}
		logger.Info("Golden file updated", "file", goldenPath)
		return nil
	}

	cmp, err := script.CompareFile(goldenPath, transcript)
	if err != nil {
		return err
	}
	if !cmp.Equal() {
		cmp.WriteDiff(cmd.OutOrStdout(), scriptPath)
		return errNotEqual
	}
	printer(cmd.OutOrStdout()).Success("ok " + scriptPath)
	return nil
}

// printer renders user-facing messages in the configured color mode.
func printer(w io.Writer) *output.Printer {
	mode := output.ModeAuto
	if cfg != nil {
		mode = output.ParseMode(cfg.Color)
	}
	return output.NewPrinter(output.WithWriter(w), output.WithMode(mode))
}

func runVersion(cmd *cobra.Command, _ []string) error {
	if !showEngine {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
		return nil
	}

	s, err := gnuplot.New(gnuplot.FromConfig(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to start gnuplot: %w", err)
	}
	defer s.Close()

	engine, _ := s.Version()
	fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion(engine))
	return nil
}

func validateScriptFile(scriptPath string) error {
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return fmt.Errorf("script file does not exist: %s", scriptPath)
	}

	switch ext := filepath.Ext(scriptPath); ext {
	case ".yaml", ".yml":
		return nil
	default:
		return fmt.Errorf("script file must have .yaml or .yml extension, got: %s", ext)
	}
}
