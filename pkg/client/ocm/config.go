package ocm

import (
	"github.com/spf13/pflag"

	"github.com/app-sre/ocm-label-reconciler/pkg/shared"
)

type OCMConfig struct {
	BaseURL          string `json:"base_url"`
	TokenURL         string `json:"token_url"`
	ClientID         string `json:"client-id"`
	ClientIDFile     string `json:"client-id_file"`
	ClientSecret     string `json:"client-secret"`
	ClientSecretFile string `json:"client-secret_file"`
	SelfToken        string `json:"self_token"`
	SelfTokenFile    string `json:"self_token_file"`
	Debug            bool   `json:"debug"`

	// MaxPageSize bounds the size of a single page fetched from paginated
	// collection endpoints
	MaxPageSize int `json:"max_page_size"`
	// RetryLimit bounds the retries the underlying connection performs for
	// access token acquisition
	RetryLimit int `json:"retry_limit"`
}

func NewOCMConfig() *OCMConfig {
	return &OCMConfig{
		BaseURL:          "https://api.openshift.com",
		TokenURL:         "https://sso.redhat.com/auth/realms/redhat-external/protocol/openid-connect/token",
		ClientIDFile:     "secrets/ocm-service.clientId",
		ClientSecretFile: "secrets/ocm-service.clientSecret",
		SelfTokenFile:    "secrets/ocm-service.token",
		Debug:            false,
		MaxPageSize:      100,
		RetryLimit:       10,
	}
}

func (c *OCMConfig) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ClientIDFile, "ocm-client-id-file", c.ClientIDFile, "File containing OCM API privileged account client-id")
	fs.StringVar(&c.ClientSecretFile, "ocm-client-secret-file", c.ClientSecretFile, "File containing OCM API privileged account client-secret")
	fs.StringVar(&c.SelfTokenFile, "self-token-file", c.SelfTokenFile, "File containing OCM API privileged offline SSO token")
	fs.StringVar(&c.BaseURL, "ocm-base-url", c.BaseURL, "The base URL of the OCM API, production by default")
	fs.StringVar(&c.TokenURL, "ocm-token-url", c.TokenURL, "The base URL that OCM uses to request tokens")
	fs.BoolVar(&c.Debug, "ocm-debug", c.Debug, "Debug flag for OCM API")
	fs.IntVar(&c.MaxPageSize, "ocm-max-page-size", c.MaxPageSize, "Maximum page size for paginated OCM collection requests")
	fs.IntVar(&c.RetryLimit, "ocm-retry-limit", c.RetryLimit, "Retry limit for OCM access token acquisition")
}

func (c *OCMConfig) ReadFiles() error {
	err := shared.ReadFileValueString(c.ClientIDFile, &c.ClientID)
	if err != nil {
		return err
	}
	err = shared.ReadFileValueString(c.ClientSecretFile, &c.ClientSecret)
	if err != nil {
		return err
	}
	err = shared.ReadFileValueString(c.SelfTokenFile, &c.SelfToken)
	if err != nil && (c.ClientSecret == "" || c.ClientID == "") {
		return err
	}
	return nil
}

// HasCredentials returns true if the config carries either a client
// credential pair or a self token
func (c *OCMConfig) HasCredentials() bool {
	return (c.ClientID != "" && c.ClientSecret != "") || c.SelfToken != ""
}
