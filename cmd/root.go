package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mabhi256/medi/internal/config"
	"github.com/mabhi256/medi/internal/logging"
	"github.com/mabhi256/medi/utils"
)

var (
	configPath string
	endpoint   string
	maxUpload  utils.MemorySize
	debug      bool
	logFile    string

	cfg       config.Config
	logger    = slog.New(slog.DiscardHandler)
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "medi",
	Short: "Multi-specialist analysis of medical reports",
	Long: `medi uploads a medical report (.txt or .pdf) to the analysis service and shows
the cardiologist, psychologist and pulmonologist reports plus a team summary.`,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadSettings(cmd); err != nil {
			return err
		}

		if cmd.Name() == "install" || cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd {
			return nil
		}

		if !isShellSupported() {
			return nil // Skip auto-setup for unsupported shells
		}

		if !completionsExist() {
			out := cmd.ErrOrStderr()
			fmt.Fprintln(out, "🔧 First run detected, setting up medi...")
			if installCompletions(cmd.Root(), out) == nil {
				fmt.Fprintln(out, "✅ Shell completions installed")
				fmt.Fprintln(out, "💡 Restart your shell to enable tab completion")
			} else {
				fmt.Fprintln(out, "⚠️  Auto-setup failed. Run 'medi install' to try again.")
			}
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// loadSettings resolves the configuration (defaults, file, env, then flags)
// and opens the logger.
func loadSettings(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = endpoint
	}
	if flags.Changed("max-upload") {
		cfg.MaxUploadBytes = maxUpload
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logCloser, err = logging.New(logging.Options{Debug: cfg.Debug, Path: cfg.LogFile})
	if err != nil {
		return err
	}
	logger.Debug("config.loaded",
		"endpoint", cfg.Endpoint,
		"max_upload", cfg.MaxUploadBytes.String(),
		"config_file", configPath,
	)
	return nil
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install shell completions",
	Run: func(cmd *cobra.Command, args []string) {
		if !isInPath() {
			printPathInstructions()
			return
		}

		if !isShellSupported() {
			fmt.Printf("❌ Shell completion not supported for: %s\n", detectShell())
			fmt.Println("Supported shells: bash, zsh, fish, powershell")
			return
		}

		if completionsExist() {
			fmt.Println("✅ Already configured!")
			return
		}

		fmt.Println("📦 Installing completions...")
		if err := installCompletions(cmd.Root(), cmd.OutOrStdout()); err != nil {
			fmt.Printf("❌ Failed: %v\n", err)
		} else {
			fmt.Println("✅ Done! Restart your shell to enable tab completion.")
		}
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

func completionsExist() bool {
	home, _ := os.UserHomeDir()

	paths := map[string]string{
		"bash":       filepath.Join(home, ".local/share/bash-completion/completions/medi"),
		"zsh":        filepath.Join(home, ".zsh/completions/_medi"),
		"fish":       filepath.Join(home, ".config/fish/completions/medi.fish"),
		"powershell": filepath.Join(home, "medi_completion.ps1"),
	}

	path := paths[detectShell()]
	_, err := os.Stat(path)
	return err == nil
}

func isShellSupported() bool {
	shell := detectShell()
	return shell == "bash" || shell == "zsh" || shell == "fish" || shell == "powershell"
}

func detectShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}

	shell := filepath.Base(os.Getenv("SHELL"))
	if shell == "" {
		return "bash"
	}
	return shell
}

type completionConfig struct {
	dir         string
	file        string
	genFunc     func(io.Writer) error
	activateCmd string
}

func installCompletions(rootCmd *cobra.Command, out io.Writer) error {
	home, _ := os.UserHomeDir()
	shell := detectShell()

	configs := map[string]completionConfig{
		"bash": {
			dir:     filepath.Join(home, ".local/share/bash-completion/completions"),
			file:    "medi",
			genFunc: rootCmd.GenBashCompletion,
			activateCmd: fmt.Sprintf("source %s",
				filepath.Join(home, ".local/share/bash-completion/completions/medi")),
		},
		"zsh": {
			dir:     filepath.Join(home, ".zsh/completions"),
			file:    "_medi",
			genFunc: rootCmd.GenZshCompletion,
			activateCmd: fmt.Sprintf("fpath=(%s $fpath) && autoload -U compinit && compinit",
				filepath.Join(home, ".zsh/completions")),
		},
		"fish": {
			dir:         filepath.Join(home, ".config/fish/completions"),
			file:        "medi.fish",
			genFunc:     func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
			activateCmd: "complete --do-complete=medi", // Trigger fish to reload completions
		},
		"powershell": {
			dir:     home,
			file:    "medi_completion.ps1",
			genFunc: rootCmd.GenPowerShellCompletionWithDesc,
			activateCmd: fmt.Sprintf(". %s",
				filepath.Join(home, "medi_completion.ps1")),
		},
	}

	cc, ok := configs[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	os.MkdirAll(cc.dir, 0755)

	file, err := os.Create(filepath.Join(cc.dir, cc.file))
	if err != nil {
		return err
	}
	defer file.Close()

	if err := cc.genFunc(file); err != nil {
		return err
	}

	// Print activation command for immediate use
	fmt.Fprintf(out, "🔄 Running this command to enable auto-completions:\n")
	fmt.Fprintf(out, "   %s\n", cc.activateCmd)

	return nil
}

func isInPath() bool {
	execPath, err := os.Executable()
	if err != nil {
		return false
	}

	pathEnv := os.Getenv("PATH")
	paths := strings.Split(pathEnv, string(os.PathListSeparator))
	execDir := filepath.Dir(execPath)

	return slices.Contains(paths, execDir)
}

func printPathInstructions() {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	fmt.Printf("❌ medi not in PATH. Binary location: %s\n\n", execPath)

	if runtime.GOOS == "windows" {
		fmt.Printf("Add to PATH: %s\n", execDir)
	} else {
		fmt.Printf("Add to shell profile: export PATH=\"%s:$PATH\"\n", execDir)
		fmt.Printf("Or copy to: /usr/local/bin\n")
	}
}

func init() {
	rootCmd.AddCommand(installCmd)

	maxUpload = config.Default().MaxUploadBytes

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/medi/config.yaml)")
	pf.StringVar(&endpoint, "endpoint", config.DefaultEndpoint, "analysis service base URL (env "+config.EnvEndpoint+")")
	pf.Var(&maxUpload, "max-upload", "largest report accepted for upload, e.g. 10M (env "+config.EnvMaxUpload+")")
	pf.BoolVar(&debug, "debug", false, "write a JSON debug log (env "+config.EnvDebug+")")
	pf.StringVar(&logFile, "log-file", "", "debug log path (default medi_debug_<timestamp>.log)")

	rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	rootCmd.MarkPersistentFlagFilename("log-file", "log")
}
