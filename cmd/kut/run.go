package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/program"
	"github.com/deepnoodle-ai/kut/vm"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a program manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runHandler,
	}
	flags := cmd.Flags()
	flags.StringP("output", "o", "", "output format (json, text)")
	flags.Bool("timing", false, "show execution time")
	flags.Bool("trace", false, "log every instruction at trace level")
	flags.Bool("step", false, "step through instructions interactively")
	flags.Bool("validate", false, "reject programs with out-of-range operands before running")
	cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp
	})
	for _, name := range []string{"output", "timing", "trace", "step", "validate"} {
		cfg.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func runHandler(cmd *cobra.Command, args []string) error {
	logLevel := cfg.GetString("log-level")
	if cfg.GetBool("trace") {
		logLevel = "trace"
	}
	logger, err := newLogger(cmd.ErrOrStderr(), logLevel)
	if err != nil {
		return err
	}

	prog, err := program.Load(args[0])
	if err != nil {
		return err
	}
	logger.Debug().
		Str("file", args[0]).
		Int("literals", len(prog.Literals)).
		Int("templates", len(prog.Templates)).
		Int("entry", prog.Entry).
		Msg("loaded program")

	opts := []vm.Option{
		vm.WithLogger(logger),
		vm.WithMaxCallDepth(cfg.GetInt("max-call-depth")),
	}
	if cfg.GetBool("validate") {
		opts = append(opts, vm.WithValidation())
	}
	switch {
	case cfg.GetBool("step"):
		if !isTerminalIO() {
			return errors.New("--step requires an interactive terminal")
		}
		opts = append(opts, vm.WithObserver(newStepObserver(cmd.OutOrStdout(), waitForKey)))
	case cfg.GetBool("trace"):
		opts = append(opts, vm.WithObserver(vm.NewTraceObserver(logger)))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := prog.Run(ctx, opts...)
	dt := time.Since(start)
	if err != nil {
		return formatRunError(err)
	}

	output, err := getOutput(result, cfg.GetString("output"))
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	if cfg.GetBool("timing") {
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", dt)
	}
	return nil
}

func formatRunError(err error) error {
	var e *errz.Error
	if errors.As(err, &e) {
		return errors.New(e.FriendlyErrorMessage())
	}
	return err
}
