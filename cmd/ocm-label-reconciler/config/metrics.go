package config

import "github.com/spf13/pflag"

type MetricsConfig struct {
	BindAddress string `json:"bind_address"`
}

func NewMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		BindAddress: "localhost:8080",
	}
}

func (c *MetricsConfig) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.BindAddress, "metrics-server-bindaddress", c.BindAddress, "Metrics server bind address")
}

func (c *MetricsConfig) ReadFiles() error {
	return nil
}
