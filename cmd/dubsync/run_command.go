package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dubsync/internal/store"
	"dubsync/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline, resuming from the last checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(ctx, func(runCtx context.Context, manager *workflow.Manager) error {
				if force {
					if err := manager.Reset(runCtx); err != nil {
						return err
					}
				}
				return manager.Run(runCtx)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Drop checkpoints and run every stage")
	return cmd
}

func newStageCommands(ctx *commandContext) []*cobra.Command {
	shorts := map[string]string{
		workflow.StageAlign:  "Rebuild the line table and align it to the word stream",
		workflow.StagePlan:   "Analyze timing and plan dubbing chunks",
		workflow.StageSynth:  "Synthesize speech clips for every planned line",
		workflow.StageRender: "Speed-adjust clips and lay them onto the timeline",
	}
	var cmds []*cobra.Command
	for _, name := range workflow.StageNames() {
		stageName := name
		cmds = append(cmds, &cobra.Command{
			Use:   stageName,
			Short: shorts[stageName],
			RunE: func(cmd *cobra.Command, args []string) error {
				return withManager(ctx, func(runCtx context.Context, manager *workflow.Manager) error {
					return manager.RunStage(runCtx, stageName)
				})
			},
		})
	}
	return cmds
}

func withManager(ctx *commandContext, fn func(context.Context, *workflow.Manager) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := workflow.NewManager(cfg, st, logger)
	if isTerminal() {
		pw := progress.NewWriter()
		pw.SetOutputWriter(os.Stdout)
		pw.SetUpdateFrequency(100 * time.Millisecond)
		manager.SetProgress(pw)
		go pw.Render()
		defer pw.Stop()
	}
	return fn(runCtx, manager)
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
