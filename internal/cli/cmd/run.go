package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cinderforge/forge/internal/forgefile"
	"github.com/cinderforge/forge/internal/logger"
	"github.com/cinderforge/forge/internal/runner"
	"github.com/cinderforge/forge/internal/settings"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/juju/ansiterm"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func buildRunCmd() *cobra.Command {
	var (
		workers       int
		force         bool
		verbose       bool
		forgefilePath string
		blake2b       bool
	)

	cmd := &cobra.Command{
		Use:   "run [tasks]...",
		Short: "Run one or more tasks from a forgefile",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), args, workers, force, verbose, blake2b, forgefilePath)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&workers, "workers", 0, "Number of executor workers (0 means runtime.NumCPU()).")
	flags.BoolVar(&force, "force", false, "Ignore the cache and always re-run every requested task.")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug-level logging.")
	flags.BoolVar(&blake2b, "blake2b", false, "Use the blake2b+sha3 digest variant instead of the default.")
	flags.StringVar(&forgefilePath, "forgefile", "", "Path to the forgefile (defaults to searching upward from $CWD).")

	return cmd
}

func runRun(ctx context.Context, tasks []string, workers int, force, verbose, blake2b bool, forgefilePath string) error {
	log, err := logger.NewZap(verbose)
	if err != nil {
		return fmt.Errorf("forge run: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	path, err := resolveForgefilePath(log, forgefilePath)
	if err != nil {
		return fmt.Errorf("forge run: %w", err)
	}

	if dotenv := filepath.Join(filepath.Dir(path), ".env"); fileExists(dotenv) {
		if err := godotenv.Load(dotenv); err != nil {
			return fmt.Errorf("forge run: loading %s: %w", dotenv, err)
		}
	}

	f, err := forgefile.Load(path)
	if err != nil {
		return fmt.Errorf("forge run: %w", err)
	}

	if len(tasks) == 0 {
		return printTasks(f)
	}

	s := settings.Default()
	s.Workers = workers

	r := runner.New(s, log).WithForce(force).WithBlake2b(blake2b)
	defer r.Stop()

	results, err := r.Run(ctx, f, tasks...)
	if err != nil {
		return fmt.Errorf("forge run: %w", err)
	}

	skipStyle := color.New(color.FgYellow, color.Bold)
	okStyle := color.New(color.FgGreen, color.Bold)
	failStyle := color.New(color.FgRed, color.Bold)

	var failed error
	for _, res := range results {
		switch {
		case res.Skipped:
			skipStyle.Printf("- %s skipped, no changed dependencies\n", res.Task)
		case res.Results.Ok():
			okStyle.Printf("- %s completed\n", res.Task)
		default:
			failStyle.Printf("- %s failed\n", res.Task)
			for _, shellResult := range res.Results {
				if !shellResult.Ok() {
					failed = fmt.Errorf("command %q in task %q exited with status %d\nstdout:\n%s\nstderr:\n%s", shellResult.Cmd, res.Task, shellResult.Status, shellResult.Stdout, shellResult.Stderr)
				}
			}
		}
	}
	return failed
}

func printTasks(f *forgefile.File) error {
	names := make([]string, 0, len(f.Tasks))
	for name := range f.Tasks {
		names = append(names, name)
	}
	slices.Sort(names)

	titleStyle := color.New(color.FgHiWhite, color.Bold)
	nameStyle := color.New(color.FgHiCyan, color.Bold)
	descStyle := color.New(color.FgHiBlack, color.Italic)

	fmt.Printf("Tasks defined in %s:\n", f.Path)

	// ansiterm's tabwriter strips ANSI escapes before measuring column
	// widths, so the coloured Name/Description columns still line up;
	// text/tabwriter alone would count each escape sequence as visible
	// characters and misalign every row.
	tw := ansiterm.NewTabWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, titleStyle.Sprint("Name")+"\t"+titleStyle.Sprint("Description"))
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", nameStyle.Sprint(name), descStyle.Sprint(f.Tasks[name].Doc))
	}
	return tw.Flush()
}

func resolveForgefilePath(log logger.Logger, explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return forgefile.Find(log, cwd, home)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
