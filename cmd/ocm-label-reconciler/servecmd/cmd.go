package servecmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/app-sre/ocm-label-reconciler/cmd/ocm-label-reconciler/config"
	"github.com/app-sre/ocm-label-reconciler/cmd/ocm-label-reconciler/server"
	"github.com/app-sre/ocm-label-reconciler/internal/rhidp"
	"github.com/app-sre/ocm-label-reconciler/internal/sublabels"
	"github.com/app-sre/ocm-label-reconciler/pkg/services/sentry"
	"github.com/app-sre/ocm-label-reconciler/pkg/workers"
)

// NewServeCommand builds the long-running mode: periodic reconciler workers
// plus a metrics listener
func NewServeCommand() *cobra.Command {
	appConfig := config.NewApplicationConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the label reconciler",
		Long:  "Run the configured label integrations periodically and expose prometheus metrics.",
		Run: func(cmd *cobra.Command, args []string) {
			runServe(appConfig)
		},
	}
	appConfig.AddFlags(cmd.PersistentFlags())
	return cmd
}

func runServe(appConfig *config.ApplicationConfig) {
	if err := appConfig.ReadFiles(); err != nil {
		glog.Fatalf("Unable to read configuration files: %s", err.Error())
	}
	if err := sentry.Initialize(appConfig.EnvironmentName, appConfig.Sentry); err != nil {
		glog.Fatalf("Unable to initialize sentry: %s", err.Error())
	}

	metricsServer := server.NewMetricsServer(appConfig.Metrics.BindAddress)
	go metricsServer.Start()

	var workerList []workers.Worker

	if appConfig.SubscriptionLabels.Enabled() {
		clients, closeClients, err := appConfig.BuildEnvironmentClients(
			config.SubscriptionLabelsConnections(appConfig.SubscriptionLabels))
		if err != nil {
			glog.Fatalf("Unable to build OCM clients for %s: %s", sublabels.IntegrationName, err.Error())
		}
		defer closeClients()
		workerList = append(workerList, sublabels.NewWorker(
			sublabels.NewIntegration(appConfig.SubscriptionLabels, clients),
			&workers.Reconciler{RepeatInterval: appConfig.Reconciler.ReconcilerRepeatInterval}))
	}

	if appConfig.ClusterAuthRHIDP.Enabled() {
		clients, closeClients, err := appConfig.BuildEnvironmentClients(
			config.ClusterAuthRHIDPConnections(appConfig.ClusterAuthRHIDP))
		if err != nil {
			glog.Fatalf("Unable to build OCM clients for %s: %s", rhidp.IntegrationName, err.Error())
		}
		defer closeClients()
		workerList = append(workerList, rhidp.NewWorker(
			rhidp.NewIntegration(appConfig.ClusterAuthRHIDP, clients),
			&workers.Reconciler{RepeatInterval: appConfig.Reconciler.ReconcilerRepeatInterval}))
	}

	if len(workerList) == 0 {
		glog.Fatalf("No integration is configured, nothing to serve")
	}
	for _, worker := range workerList {
		worker.Start()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	glog.Infof("Caught %s signal, stopping workers", sig.String())

	for _, worker := range workerList {
		worker.Stop()
	}
	if err := metricsServer.Stop(); err != nil {
		glog.Errorf("Unable to stop metrics server: %s", err.Error())
	}
}
