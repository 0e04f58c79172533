package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/client"
	"github.com/charlie0129/battmon/pkg/platform"
	"github.com/charlie0129/battmon/pkg/render"
	"github.com/charlie0129/battmon/pkg/version"
)

type statusJSON struct {
	Identity *battery.Identity `json:"identity"`
	Status   *battery.Status   `json:"status"`
	// SampledAt is set when the sample comes from the daemon.
	SampledAt *time.Time `json:"sampledAt,omitempty"`
}

// sampleOnce acquires the battery, takes one sample and releases it.
func sampleOnce() (*battery.Identity, *battery.Status, error) {
	h, id, err := battery.Acquire(platform.New())
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := h.Close(); err != nil {
			logrus.Warnf("failed to close battery handle: %v", err)
		}
	}()

	st, err := battery.Sample(h)
	if err != nil {
		return nil, nil, err
	}
	return id, st, nil
}

// warnVersionMismatch logs when the daemon runs a different build.
func warnVersionMismatch(c *client.Client) {
	daemonVersion, err := c.GetVersion()
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			logrus.Error("battmon daemon is too old to report its version")
		}
		return
	}
	if daemonVersion != version.Version {
		logrus.WithFields(logrus.Fields{
			"clientVersion": version.Version,
			"daemonVersion": daemonVersion,
		}).Warn("Version mismatch between client and daemon.")
	}
}

func NewStatusCommand() *cobra.Command {
	var (
		jsonOutput bool
		fromDaemon bool
	)

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Print the battery status once",
		Long: `Print the battery type and one status sample.

By default the battery is opened directly. With --daemon the latest sample of a running daemon is shown instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out statusJSON
			failures := 0

			if fromDaemon {
				c := client.NewClient(unixSocketPath)
				warnVersionMismatch(c)

				id, err := c.GetIdentity()
				if err != nil {
					return err
				}
				resp, err := c.GetStatus()
				if err != nil {
					return err
				}
				sampled := time.Unix(resp.Ts, 0)
				out = statusJSON{Identity: id, Status: resp.Status, SampledAt: &sampled}
				failures = resp.Failures
			} else {
				id, st, err := sampleOnce()
				if err != nil {
					return err
				}
				out = statusJSON{Identity: id, Status: st}
			}

			if jsonOutput {
				return render.JSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			render.Identity(w, out.Identity)
			fmt.Fprintln(w)
			render.Status(w, out.Status)

			if out.SampledAt != nil {
				fmt.Fprintln(w)
				fmt.Fprintf(w, "Sampled by daemon: %s\n", bold("%s ago", time.Since(*out.SampledAt).Round(time.Second)))
				fmt.Fprintf(w, "Latest poll succeeded: %s\n", bool2Text(failures == 0))
				if failures > 0 {
					fmt.Fprintf(w, "  %d polls failed since this sample\n", failures)
				}
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&jsonOutput, "json", false, "print the status as JSON")
	f.BoolVar(&fromDaemon, "daemon", false, "read the latest sample from a running daemon")

	return cmd
}
