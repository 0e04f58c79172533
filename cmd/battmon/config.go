package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battmon/pkg/config"
	"github.com/charlie0129/battmon/pkg/render"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Show or edit the config file",
		GroupID: gAdvanced,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				conf, err := config.NewFile(configPath)
				if err != nil {
					return err
				}
				raw, err := config.NewRawFileConfigFromConfig(conf)
				if err != nil {
					return err
				}
				return render.JSON(cmd.OutOrStdout(), raw)
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a config value",
			Long: `Set a config value and save the config file.

Keys:
  pollInterval  seconds between polls, 1 to 3600 (a duration such as 5s is also accepted)
  historySize   number of samples kept by the daemon
  clearScreen   true or false
  plotPath      PNG written by watch on exit, empty to disable

A running daemon picks up the change on SIGHUP.`,
			Args: cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				conf, err := config.NewFile(configPath)
				if err != nil {
					return err
				}
				if err := setConfigValue(conf, args[0], args[1]); err != nil {
					return err
				}
				if err := conf.Save(); err != nil {
					return err
				}
				logrus.WithFields(conf.LogrusFields()).Infof("saved config to %s", configPath)
				return nil
			},
		},
	)

	return cmd
}

func setConfigValue(conf config.Config, key, value string) error {
	switch key {
	case "pollInterval":
		d, err := time.ParseDuration(value)
		if err != nil {
			seconds, err2 := strconv.Atoi(value)
			if err2 != nil {
				return fmt.Errorf("invalid pollInterval: %v", err)
			}
			d = time.Duration(seconds) * time.Second
		}
		return conf.SetPollInterval(d)
	case "historySize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid historySize: %v", err)
		}
		return conf.SetHistorySize(n)
	case "clearScreen":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid clearScreen: %v", err)
		}
		conf.SetClearScreen(b)
		return nil
	case "plotPath":
		conf.SetPlotPath(value)
		return nil
	}
	return fmt.Errorf("unknown config key %q", key)
}
