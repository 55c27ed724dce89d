package config

import (
	"flag"

	"github.com/spf13/pflag"

	"github.com/app-sre/ocm-label-reconciler/internal/rhidp"
	"github.com/app-sre/ocm-label-reconciler/internal/sublabels"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm"
	"github.com/app-sre/ocm-label-reconciler/pkg/services/sentry"
	"github.com/app-sre/ocm-label-reconciler/pkg/workers"
)

// ApplicationConfig aggregates the configuration of every component
type ApplicationConfig struct {
	EnvironmentName    string         `json:"environment_name"`
	OCM                *ocm.OCMConfig `json:"ocm"`
	Sentry             *sentry.Config `json:"sentry"`
	Metrics            *MetricsConfig `json:"metrics"`
	Reconciler         *workers.ReconcilerConfig
	SubscriptionLabels *sublabels.Config
	ClusterAuthRHIDP   *rhidp.Config
}

func NewApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		EnvironmentName:    "production",
		OCM:                ocm.NewOCMConfig(),
		Sentry:             sentry.NewConfig(),
		Metrics:            NewMetricsConfig(),
		Reconciler:         workers.NewReconcilerConfig(),
		SubscriptionLabels: sublabels.NewConfig(),
		ClusterAuthRHIDP:   rhidp.NewConfig(),
	}
}

func (c *ApplicationConfig) AddFlags(flagset *pflag.FlagSet) {
	flagset.AddGoFlagSet(flag.CommandLine)
	flagset.StringVar(&c.EnvironmentName, "environment-name", c.EnvironmentName, "Deployment environment name reported to Sentry")
	c.OCM.AddFlags(flagset)
	c.Sentry.AddFlags(flagset)
	c.Metrics.AddFlags(flagset)
	c.Reconciler.AddFlags(flagset)
	c.SubscriptionLabels.AddFlags(flagset)
	c.ClusterAuthRHIDP.AddFlags(flagset)
}

func (c *ApplicationConfig) ReadFiles() error {
	if err := c.OCM.ReadFiles(); err != nil {
		return err
	}
	if err := c.Sentry.ReadFiles(); err != nil {
		return err
	}
	if err := c.Reconciler.ReadFiles(); err != nil {
		return err
	}
	if err := c.SubscriptionLabels.ReadFiles(); err != nil {
		return err
	}
	return c.ClusterAuthRHIDP.ReadFiles()
}
