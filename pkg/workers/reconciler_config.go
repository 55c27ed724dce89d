package workers

import (
	"time"

	"github.com/spf13/pflag"
)

type ReconcilerConfig struct {
	ReconcilerRepeatInterval time.Duration `json:"reconciler_repeat_interval"`
}

func NewReconcilerConfig() *ReconcilerConfig {
	return &ReconcilerConfig{
		ReconcilerRepeatInterval: 10 * time.Minute,
	}
}

func (c *ReconcilerConfig) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&c.ReconcilerRepeatInterval, "reconciler-repeat-interval", c.ReconcilerRepeatInterval, "The frequency at which each scheduled reconciler worker is running.")
}

func (c *ReconcilerConfig) ReadFiles() error {
	return nil
}
