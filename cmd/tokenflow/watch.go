package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tokenflow/internal/infrastructure/watcher"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/preview"
	"github.com/alexisbeaulieu97/tokenflow/internal/tui"
)

type watchOptions struct {
	debounce       time.Duration
	nonInteractive bool
}

func newWatchCmd(root *rootFlags) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the palette whenever the project file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.nonInteractive {
				opts.nonInteractive = !isTerminal(os.Stdout)
			}
			return runWatch(cmd, root, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.debounce, "debounce", watcher.DefaultDebounce, "Quiet period before a change is applied")
	cmd.Flags().BoolVar(&opts.nonInteractive, "plain", false, "Print plain log lines instead of the dashboard")

	return cmd
}

// dispatcher forwards dashboard messages to the running program, or prints
// them when there is no terminal.
type dispatcher struct {
	program *tea.Program
	plain   func(msg tea.Msg)
}

func (d dispatcher) send(msg tea.Msg) {
	if d.program != nil {
		d.program.Send(msg)
		return
	}
	d.plain(msg)
}

func runWatch(cmd *cobra.Command, root *rootFlags, opts *watchOptions) error {
	app, err := buildApp(cmd, root)
	if err != nil {
		return err
	}
	if app.ConfigPath == "" {
		return newCommandError("watch", "locating the project file", fmt.Errorf("no tokenflow.yaml found"), "Create a project file or pass --config.")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	d := dispatcher{plain: func(msg tea.Msg) { printWatchMsg(out, msg) }}

	var program *tea.Program
	if !opts.nonInteractive {
		model := tui.NewModel(app.Config.Name, app.ConfigPath, app.Engine.Budget())
		program = tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(out))
		d.program = program
	}

	sub, err := app.Events.Subscribe(ports.EventBatchApplied, func(_ context.Context, event ports.DomainEvent) error {
		d.send(tui.BatchMsg{Result: batchFromEvent(event), Stats: app.Engine.Stats()})
		return nil
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	reload := func(path string) {
		reloadCtx := ports.WithCorrelationID(ctx, ports.GenerateCorrelationID())
		tokens, err := app.Reload(reloadCtx)
		d.send(tui.ReloadMsg{Path: path, Tokens: tokens, Err: err, Time: time.Now()})
		if err == nil {
			d.send(tui.ReportMsg{Report: app.Service.Validate(reloadCtx)})
		}
	}

	w := watcher.New(app.ConfigPath, reload, app.Logger).WithDebounce(opts.debounce)
	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Watch(ctx) }()

	initial := []tea.Msg{
		tui.ReloadMsg{Path: app.ConfigPath, Tokens: app.Registry.Len(), Time: time.Now()},
		tui.ReportMsg{Report: app.Service.Validate(ctx)},
	}

	if program != nil {
		// Send blocks until the program loop is running.
		go func() {
			for _, msg := range initial {
				program.Send(msg)
			}
		}()
		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			return err
		}
		stop()
	} else {
		for _, msg := range initial {
			d.send(msg)
		}
		<-ctx.Done()
	}

	if err := <-watchErr; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func batchFromEvent(event ports.DomainEvent) preview.BatchResult {
	fields, _ := event.Payload().(map[string]interface{})
	var result preview.BatchResult
	if applied, ok := fields["applied"].(int); ok {
		result.AppliedCount = applied
	}
	if ms, ok := fields["duration_ms"].(float64); ok {
		result.Duration = time.Duration(ms * float64(time.Millisecond))
	}
	if domains, ok := fields["domains"].(string); ok && domains != "" {
		result.Domains = strings.Split(domains, ",")
	}
	return result
}

func printWatchMsg(out io.Writer, msg tea.Msg) {
	switch m := msg.(type) {
	case tui.ReloadMsg:
		if m.Err != nil {
			fmt.Fprintf(out, "%s reload failed: %v\n", m.Time.Format(time.TimeOnly), m.Err)
			return
		}
		fmt.Fprintf(out, "%s loaded %d tokens from %s\n", m.Time.Format(time.TimeOnly), m.Tokens, m.Path)
	case tui.BatchMsg:
		fmt.Fprintf(out, "applied %d changes in %s\n", m.Result.AppliedCount, m.Result.Duration)
	case tui.ReportMsg:
		fmt.Fprintf(out, "contrast: %d pairs, %d failing\n", len(m.Report.Pairs), len(m.Report.Violations))
	}
}
