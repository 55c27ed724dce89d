package rhidp

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/app-sre/ocm-label-reconciler/pkg/services"
	"github.com/app-sre/ocm-label-reconciler/pkg/shared"
)

// Config carries the cluster auth configuration the RHIDP labels are derived
// from, loaded from a YAML document
type Config struct {
	ConfigFile    string `json:"config_file"`
	FetchPoolSize int    `json:"fetch_pool_size"`

	Spec Spec `json:"-"`
}

type Spec struct {
	// DefaultIssuerURL is used for clusters that enable RHIDP without
	// naming an issuer
	DefaultIssuerURL string            `yaml:"default_issuer_url"`
	Environments     []EnvironmentSpec `yaml:"environments"`
}

type EnvironmentSpec struct {
	Name             string             `yaml:"name"`
	URL              string             `yaml:"url"`
	TokenURL         string             `yaml:"token_url"`
	ClientIDFile     string             `yaml:"client_id_file"`
	ClientSecretFile string             `yaml:"client_secret_file"`
	Organizations    []OrganizationSpec `yaml:"organizations"`
}

// OrganizationSpec names one organization, either by its OCM id or by its
// external id. External ids are resolved against OCM before reconciling.
type OrganizationSpec struct {
	ID         string        `yaml:"id"`
	ExternalID string        `yaml:"external_id"`
	Name       string        `yaml:"name"`
	Clusters   []ClusterSpec `yaml:"clusters"`
}

// refID is the organization identity used in owner refs. An organization
// declared by external id keeps that external id until resolved against OCM.
func (o OrganizationSpec) refID() string {
	if o.ID != "" {
		return o.ID
	}
	return "external/" + o.ExternalID
}

type ClusterSpec struct {
	ClusterID string    `yaml:"cluster_id"`
	Name      string    `yaml:"name"`
	Auth      *AuthSpec `yaml:"auth"`
}

// AuthSpec is the RHIDP auth configuration of one cluster. A cluster
// without an auth block has all its managed auth labels removed.
type AuthSpec struct {
	Status   AuthStatus `yaml:"status"`
	Issuer   string     `yaml:"issuer"`
	ClientID string     `yaml:"client_id"`
}

func NewConfig() *Config {
	return &Config{
		ConfigFile:    "config/cluster-auth-rhidp.yaml",
		FetchPoolSize: services.DefaultFetchPoolSize,
	}
}

func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "cluster-auth-rhidp-config-file", c.ConfigFile, "File containing the RHIDP cluster auth integration configuration")
	fs.IntVar(&c.FetchPoolSize, "cluster-auth-rhidp-fetch-pool-size", c.FetchPoolSize, "Number of OCM environments queried in parallel when building current state")
}

func (c *Config) ReadFiles() error {
	if err := shared.ReadYamlFile(c.ConfigFile, &c.Spec); err != nil {
		if os.IsNotExist(err) {
			// no config file means the integration is not configured
			return nil
		}
		return err
	}
	return c.Spec.Validate()
}

// Enabled reports whether the integration has anything to reconcile
func (c *Config) Enabled() bool {
	return len(c.Spec.Environments) > 0
}

func (s *Spec) Validate() error {
	seenEnvs := map[string]bool{}
	for _, env := range s.Environments {
		if env.Name == "" {
			return fmt.Errorf("environment with empty name in RHIDP config")
		}
		if seenEnvs[env.Name] {
			return fmt.Errorf("duplicate environment '%s' in RHIDP config", env.Name)
		}
		seenEnvs[env.Name] = true
		for _, org := range env.Organizations {
			if org.ID == "" && org.ExternalID == "" {
				return fmt.Errorf("organization without id or external_id in environment '%s'", env.Name)
			}
			if org.ID != "" && org.ExternalID != "" {
				return fmt.Errorf("organization '%s' in environment '%s' declares both id and external_id", org.Name, env.Name)
			}
			for _, cluster := range org.Clusters {
				if cluster.ClusterID == "" {
					return fmt.Errorf("cluster '%s' without cluster id in organization '%s'", cluster.Name, org.refID())
				}
				if err := cluster.Auth.validate(cluster.Name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (a *AuthSpec) validate(clusterName string) error {
	if a == nil {
		return nil
	}
	switch a.Status {
	case AuthStatusEnabled:
		if a.ClientID == "" {
			return fmt.Errorf("cluster '%s' enables RHIDP without a client id", clusterName)
		}
		return nil
	case AuthStatusDisabled:
		return nil
	default:
		return fmt.Errorf("cluster '%s' has unknown RHIDP auth status '%s'", clusterName, a.Status)
	}
}
