package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/app-sre/ocm-label-reconciler/cmd/ocm-label-reconciler/run"
	"github.com/app-sre/ocm-label-reconciler/cmd/ocm-label-reconciler/servecmd"
	"github.com/app-sre/ocm-label-reconciler/cmd/ocm-label-reconciler/versioncmd"
)

func main() {
	// This is needed to make `glog` believe that the flags have already been parsed, otherwise
	// every log message is prefixed by an error message stating that the flags haven't been
	// parsed.
	_ = flag.CommandLine.Parse([]string{})

	// Always log to stderr by default
	if err := flag.Set("logtostderr", "true"); err != nil {
		glog.Infof("Unable to set logtostderr to true")
	}

	rootCmd := &cobra.Command{
		Use:  "ocm-label-reconciler",
		Long: "ocm-label-reconciler keeps OCM subscription and organization labels in line with declarative configuration",
	}

	rootCmd.AddCommand(run.NewRunCommand(), servecmd.NewServeCommand(), versioncmd.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		glog.Fatalf("error running command: %v", err)
	}
}
