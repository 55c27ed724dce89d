package run

import (
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/app-sre/ocm-label-reconciler/cmd/ocm-label-reconciler/config"
	"github.com/app-sre/ocm-label-reconciler/internal/rhidp"
	"github.com/app-sre/ocm-label-reconciler/internal/sublabels"
	"github.com/app-sre/ocm-label-reconciler/pkg/flags"
)

// FlagDryRun logs the label operations without issuing any writes
const FlagDryRun = "dry-run"

// NewRunCommand builds the one-shot reconciliation command. Every configured
// integration is run once; any failure exits non-zero.
func NewRunCommand() *cobra.Command {
	appConfig := config.NewApplicationConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all configured label integrations once",
		Long:  "Run all configured label integrations once and exit. With --dry-run the would-be label writes are logged but not issued.",
		Run: func(cmd *cobra.Command, args []string) {
			runOnce(appConfig, flags.MustGetBool(FlagDryRun, cmd.Flags()))
		},
	}
	appConfig.AddFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().Bool(FlagDryRun, false, "Log the label operations without issuing any writes")
	return cmd
}

func runOnce(appConfig *config.ApplicationConfig, dryRun bool) {
	if err := appConfig.ReadFiles(); err != nil {
		glog.Fatalf("Unable to read configuration files: %s", err.Error())
	}

	if appConfig.SubscriptionLabels.Enabled() {
		clients, closeClients, err := appConfig.BuildEnvironmentClients(
			config.SubscriptionLabelsConnections(appConfig.SubscriptionLabels))
		if err != nil {
			glog.Fatalf("Unable to build OCM clients for %s: %s", sublabels.IntegrationName, err.Error())
		}
		integration := sublabels.NewIntegration(appConfig.SubscriptionLabels, clients)
		err = integration.Run(dryRun)
		closeClients()
		if err != nil {
			glog.Fatalf("Integration %s failed: %s", sublabels.IntegrationName, err.Error())
		}
	} else {
		glog.Infof("Integration %s is not configured, skipping", sublabels.IntegrationName)
	}

	if appConfig.ClusterAuthRHIDP.Enabled() {
		clients, closeClients, err := appConfig.BuildEnvironmentClients(
			config.ClusterAuthRHIDPConnections(appConfig.ClusterAuthRHIDP))
		if err != nil {
			glog.Fatalf("Unable to build OCM clients for %s: %s", rhidp.IntegrationName, err.Error())
		}
		integration := rhidp.NewIntegration(appConfig.ClusterAuthRHIDP, clients)
		err = integration.Run(dryRun)
		closeClients()
		if err != nil {
			glog.Fatalf("Integration %s failed: %s", rhidp.IntegrationName, err.Error())
		}
	} else {
		glog.Infof("Integration %s is not configured, skipping", rhidp.IntegrationName)
	}
}
