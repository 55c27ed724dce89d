package config

import (
	"github.com/pkg/errors"

	"github.com/app-sre/ocm-label-reconciler/internal/rhidp"
	"github.com/app-sre/ocm-label-reconciler/internal/sublabels"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm"
	"github.com/app-sre/ocm-label-reconciler/pkg/shared"
)

// EnvironmentConnection names one OCM environment and its connection
// overrides. Empty fields fall back to the global OCM config.
type EnvironmentConnection struct {
	Name             string
	URL              string
	TokenURL         string
	ClientIDFile     string
	ClientSecretFile string
}

// BuildEnvironmentClients opens one OCM connection per environment and
// returns the clients keyed by environment name, plus a func closing all
// connections
func (c *ApplicationConfig) BuildEnvironmentClients(envs []EnvironmentConnection) (map[string]ocm.Client, func(), error) {
	clients := map[string]ocm.Client{}
	var closers []func()
	closeAll := func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}

	for _, env := range envs {
		envConfig := *c.OCM
		if env.URL != "" {
			envConfig.BaseURL = env.URL
		}
		if env.TokenURL != "" {
			envConfig.TokenURL = env.TokenURL
		}
		if env.ClientIDFile != "" {
			if err := shared.ReadFileValueString(env.ClientIDFile, &envConfig.ClientID); err != nil {
				closeAll()
				return nil, nil, errors.Wrapf(err, "reading client id for environment '%s'", env.Name)
			}
			if err := shared.ReadFileValueString(env.ClientSecretFile, &envConfig.ClientSecret); err != nil {
				closeAll()
				return nil, nil, errors.Wrapf(err, "reading client secret for environment '%s'", env.Name)
			}
			envConfig.SelfToken = ""
		}
		if !envConfig.HasCredentials() {
			closeAll()
			return nil, nil, errors.Errorf("no OCM credentials available for environment '%s'", env.Name)
		}

		connection, closeFn, err := ocm.NewOCMConnection(&envConfig)
		if err != nil {
			closeAll()
			return nil, nil, errors.Wrapf(err, "connecting to OCM environment '%s'", env.Name)
		}
		closers = append(closers, closeFn)
		clients[env.Name] = ocm.NewClient(connection, envConfig.MaxPageSize)
	}
	return clients, closeAll, nil
}

// SubscriptionLabelsConnections maps the subscription labels config onto
// connection descriptors
func SubscriptionLabelsConnections(c *sublabels.Config) []EnvironmentConnection {
	connections := make([]EnvironmentConnection, 0, len(c.Spec.Environments))
	for _, env := range c.Spec.Environments {
		connections = append(connections, EnvironmentConnection{
			Name:             env.Name,
			URL:              env.URL,
			TokenURL:         env.TokenURL,
			ClientIDFile:     env.ClientIDFile,
			ClientSecretFile: env.ClientSecretFile,
		})
	}
	return connections
}

// ClusterAuthRHIDPConnections maps the RHIDP config onto connection
// descriptors
func ClusterAuthRHIDPConnections(c *rhidp.Config) []EnvironmentConnection {
	connections := make([]EnvironmentConnection, 0, len(c.Spec.Environments))
	for _, env := range c.Spec.Environments {
		connections = append(connections, EnvironmentConnection{
			Name:             env.Name,
			URL:              env.URL,
			TokenURL:         env.TokenURL,
			ClientIDFile:     env.ClientIDFile,
			ClientSecretFile: env.ClientSecretFile,
		})
	}
	return connections
}
