package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/config"
	"github.com/charlie0129/battmon/pkg/monitor"
	"github.com/charlie0129/battmon/pkg/platform"
	"github.com/charlie0129/battmon/pkg/render"
)

// clearSequence moves the cursor home and erases the display.
const clearSequence = "\033[H\033[2J"

func NewWatchCommand() *cobra.Command {
	var (
		interval time.Duration
		plotPath string
		noClear  bool
	)

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: gBasic,
		Short:   "Continuously print the battery status",
		Long: `Continuously print the battery status until interrupted with Ctrl+C.

Polls every pollInterval from the config file unless --interval is given. With --plot, a PNG of the charge percentage over time is written on exit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = conf.PollInterval()
			}
			if plotPath == "" {
				plotPath = conf.PlotPath()
			}
			clearScreen := conf.ClearScreen() && !noClear && term.IsTerminal(int(os.Stdout.Fd()))

			h, id, err := battery.Acquire(platform.New())
			if err != nil {
				return err
			}
			defer func() {
				if err := h.Close(); err != nil {
					logrus.Warnf("failed to close battery handle: %v", err)
				}
			}()

			mon := monitor.New(h, id, monitor.Options{
				Interval:    interval,
				HistorySize: conf.HistorySize(),
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			err = mon.Run(ctx, func(st *battery.Status) {
				if clearScreen {
					fmt.Fprint(w, clearSequence)
				}
				render.Identity(w, id)
				fmt.Fprintln(w)
				render.Status(w, st)
				if !clearScreen {
					fmt.Fprintln(w)
				}
			})
			if err != nil {
				return err
			}

			if plotPath != "" {
				records := mon.Recorder().Records()
				if err := monitor.Plot(records, plotPath); err != nil {
					return err
				}
				logrus.Infof("wrote %d samples to %s", len(records), plotPath)
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.DurationVar(&interval, "interval", 0, "poll interval (defaults to pollInterval from the config file)")
	f.StringVar(&plotPath, "plot", "", "write a PNG of the charge percentage to this file on exit")
	f.BoolVar(&noClear, "no-clear", false, "do not clear the screen between samples")

	return cmd
}
