package commands

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
	"github.com/teranos/gmsctl/session"
)

// CheckCmd tests connectivity to the metadata service
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Test connectivity to the metadata service",
	Long: `Request the service's /config endpoint and report the server version.

With --wait the check is retried with exponential backoff until it succeeds
or the wait time runs out, which is useful while a local service is starting.

Examples:
  gmsctl check
  gmsctl check --wait 2m`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var checkWait time.Duration

func init() {
	CheckCmd.Flags().DurationVar(&checkWait, "wait", 0, "Keep retrying for up to this long")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	s, err := newFactory().MustOpen()
	if err != nil {
		return err
	}

	var info session.ServerInfo
	probe := func() error {
		var err error
		info, err = s.TestConnectivity(ctx)
		return err
	}

	if checkWait > 0 {
		policy := backoff.NewExponentialBackOff()
		policy.MaxElapsedTime = checkWait
		notify := func(err error, next time.Duration) {
			logger.LoggerFromContext(ctx).Infow("Metadata service not reachable yet",
				logger.FieldHost, s.Host(),
				logger.FieldError, err,
				"retry_in", next)
		}
		err = backoff.RetryNotify(probe, backoff.WithContext(policy, ctx), notify)
	} else {
		err = probe()
	}
	if err != nil {
		return errors.Wrapf(err, "failed to reach %s", s.Host())
	}

	result := map[string]string{"host": s.Host(), "version": info.Version}
	return display.Output(cmd, result, func() error {
		if info.Version == "" {
			display.Success("Connected to %s", s.Host())
			return nil
		}
		display.Success("Connected to %s (server %s)", s.Host(), info.Version)
		if info.Semver != nil && !session.SupportsVersion(info.Semver) {
			display.Warning("server version is outside %s", session.SupportedServerVersions)
		}
		return nil
	})
}
