package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/client"
	"github.com/charlie0129/battmon/pkg/config"
)

var (
	logLevel       = "info"
	unixSocketPath = filepath.Join(os.TempDir(), "battmon.sock")
	configPath     = config.DefaultPath()
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	switch {
	case errors.Is(err, battery.ErrNoBatteryPresent):
		fmt.Fprintln(os.Stderr, "\nError: no battery on this host")
	case errors.Is(err, battery.ErrNoDeviceClass):
		fmt.Fprintln(os.Stderr, "\nError: the battery device class is not available")
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: battmon daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'battmon daemon' or drop the '--daemon' flag.")
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again as the user that started the daemon")
		fmt.Fprintln(os.Stderr, "  - Or restart the daemon with the '--always-allow-non-root-access' flag")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battmon",
		Short: "battmon reports battery telemetry",
		Long: `battmon reports battery telemetry: chemistry, AC line, battery saver,
charge level, voltage and time estimates.

Website: https://github.com/charlie0129/battmon`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "battmon daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewWatchCommand(),
		NewStatusCommand(),
		NewDaemonCommand(),
		NewConfigCommand(),
		NewVersionCommand(),
	)

	return cmd
}
