package sublabels

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/app-sre/ocm-label-reconciler/pkg/services"
	"github.com/app-sre/ocm-label-reconciler/pkg/shared"
)

// Config carries the declarative desired state of the subscription labels
// integration, loaded from a YAML document
type Config struct {
	ConfigFile    string `json:"config_file"`
	FetchPoolSize int    `json:"fetch_pool_size"`

	Spec Spec `json:"-"`
}

// Spec is the YAML document schema
type Spec struct {
	Environments []EnvironmentSpec `yaml:"environments"`
}

// EnvironmentSpec names one OCM environment and the organizations whose
// labels are managed there
type EnvironmentSpec struct {
	Name                 string             `yaml:"name"`
	URL                  string             `yaml:"url"`
	TokenURL             string             `yaml:"token_url"`
	ClientIDFile         string             `yaml:"client_id_file"`
	ClientSecretFile     string             `yaml:"client_secret_file"`
	ManagedLabelPrefixes []string           `yaml:"managed_label_prefixes"`
	Organizations        []OrganizationSpec `yaml:"organizations"`
}

// OrganizationSpec names one organization, either by its OCM id or by its
// external id. External ids are resolved against OCM before reconciling.
type OrganizationSpec struct {
	ID         string            `yaml:"id"`
	ExternalID string            `yaml:"external_id"`
	Name       string            `yaml:"name"`
	Labels     map[string]string `yaml:"labels"`
	Clusters   []ClusterSpec     `yaml:"clusters"`
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
	ClusterID string            `yaml:"cluster_id"`
	Name      string            `yaml:"name"`
	Labels    map[string]string `yaml:"labels"`
}

func NewConfig() *Config {
	return &Config{
		ConfigFile:    "config/subscription-labels.yaml",
		FetchPoolSize: services.DefaultFetchPoolSize,
	}
}

func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "subscription-labels-config-file", c.ConfigFile, "File containing the subscription labels integration configuration")
	fs.IntVar(&c.FetchPoolSize, "subscription-labels-fetch-pool-size", c.FetchPoolSize, "Number of OCM environments queried in parallel when building current state")
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

// Validate rejects configurations the reconciler cannot act on safely:
// duplicate environments, organizations with neither id nor external id (or
// ambiguously both), clusters without a cluster id, and declared labels
// outside every managed prefix.
func (s *Spec) Validate() error {
	seenEnvs := map[string]bool{}
	for _, env := range s.Environments {
		if env.Name == "" {
			return fmt.Errorf("environment with empty name in subscription labels config")
		}
		if seenEnvs[env.Name] {
			return fmt.Errorf("duplicate environment '%s' in subscription labels config", env.Name)
		}
		seenEnvs[env.Name] = true
		for _, org := range env.Organizations {
			if org.ID == "" && org.ExternalID == "" {
				return fmt.Errorf("organization without id or external_id in environment '%s'", env.Name)
			}
			if org.ID != "" && org.ExternalID != "" {
				return fmt.Errorf("organization '%s' in environment '%s' declares both id and external_id", org.Name, env.Name)
			}
			if err := validateManagedKeys(org.Labels, env.ManagedLabelPrefixes, env.Name, org.refID()); err != nil {
				return err
			}
			for _, cluster := range org.Clusters {
				if cluster.ClusterID == "" {
					return fmt.Errorf("cluster '%s' without cluster id in organization '%s'", cluster.Name, org.refID())
				}
				if err := validateManagedKeys(cluster.Labels, env.ManagedLabelPrefixes, env.Name, org.refID()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateManagedKeys(labels map[string]string, prefixes []string, env string, orgID string) error {
	if len(prefixes) == 0 {
		return nil
	}
	for key := range labels {
		if !shared.HasPrefixIn(key, prefixes) {
			return fmt.Errorf("label key '%s' in environment '%s' organization '%s' is outside the managed prefixes %v",
				key, env, orgID, prefixes)
		}
	}
	return nil
}
