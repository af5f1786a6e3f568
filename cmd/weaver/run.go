package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/weaver/internal/cli"
	"github.com/aretw0/weaver/internal/presentation/tui"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Execute the project blueprint",
	Long: `Executes pending tasks in order, saving after each one. By default the run stops
for human review before the first task of a fresh blueprint: in a terminal it waits
for Enter after you edit blueprint.csv, otherwise it prints the resume command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noFeedback, _ := cmd.Flags().GetBool("no-human-feedback")
		steps, _ := cmd.Flags().GetInt("steps")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		name := args[0]
		out := cmd.OutOrStdout()
		interactive := isInteractive()
		if interactive {
			tui.PrintBanner(out)
		}

		report, err := app.Engine.Run(ctx, name, ports.RunOptions{HumanFeedback: !noFeedback, Steps: steps})
		if err != nil {
			return runError(out, report, err)
		}
		if !report.AwaitingReview {
			printReport(out, report)
			return nil
		}

		if !interactive {
			cli.PrintSystemMessage(out, "Blueprint awaiting review in %s", app.Reviewer.Path(name))
			cli.PrintSystemMessage(out, "Resume with: weaver resume %s %s", name, report.ResumeToken)
			return nil
		}

		if err := reviewInteractively(ctx, app, name, out); err != nil {
			if cli.IsInterrupted(err) {
				cli.PrintSystemMessage(out, "Review postponed. Resume with: weaver resume %s %s", name, report.ResumeToken)
				return nil
			}
			return err
		}

		report, err = app.Engine.Resume(ctx, name, report.ResumeToken, ports.RunOptions{Steps: steps})
		if err != nil {
			return runError(out, report, err)
		}
		printReport(out, report)
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <name> <token>",
	Short: "Continue a run suspended for review",
	Long:  `Reads the reviewed blueprint.csv, applies the edits and continues execution.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		report, err := app.Engine.Resume(ctx, args[0], args[1], ports.RunOptions{Steps: steps})
		if err != nil {
			return runError(cmd.OutOrStdout(), report, err)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)

	runCmd.Flags().Bool("no-human-feedback", false, "Skip the review checkpoint")
	runCmd.Flags().Int("steps", 0, "Maximum number of tasks to attempt (0 = all)")
	resumeCmd.Flags().Int("steps", 0, "Maximum number of tasks to attempt (0 = all)")
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// reviewInteractively renders the blueprint and waits for the user to finish editing.
func reviewInteractively(ctx context.Context, app *cli.App, name string, out io.Writer) error {
	state, err := app.Engine.Status(ctx, name)
	if err != nil {
		return err
	}
	rendered, err := tui.NewRenderer()(tui.BlueprintMarkdown(state))
	if err != nil {
		rendered = tui.BlueprintMarkdown(state)
	}
	fmt.Fprint(out, rendered)
	cli.PrintSystemMessage(out, "Edit %s, then press Enter to continue (Ctrl+C to stop).", app.Reviewer.Path(name))
	return cli.WaitForEnter(ctx, os.Stdin)
}

// runError reports persisted progress before handing the error back to cobra.
func runError(out io.Writer, report *domain.ExecutionReport, err error) error {
	if report != nil {
		printReport(out, report)
	}
	if cli.IsInterrupted(err) {
		return fmt.Errorf("run interrupted, progress saved; run again to continue: %w", err)
	}
	return err
}

func printReport(out io.Writer, r *domain.ExecutionReport) {
	cli.PrintSystemMessage(out, "Project '%s' is %s at task %d/%d.", r.Project, tui.StageLabel(r.Stage), r.Cursor, r.Total)
	fmt.Fprintf(out, "  done: %d  failed: %d  skipped: %d\n", r.Done, r.Failed, r.Skipped)
	for _, f := range r.Failures {
		marker := ""
		if f.Fatal {
			marker = " (fatal)"
		}
		fmt.Fprintf(out, "  task %d failed%s: %s\n", f.Index, marker, f.Error)
	}
}
