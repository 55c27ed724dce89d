package versioncmd

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/app-sre/ocm-label-reconciler/pkg/buildinformation"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information of the binary",
		Run: func(cmd *cobra.Command, args []string) {
			info, err := buildinformation.GetBuildInfo()
			if err != nil {
				glog.Fatalf("Unable to read build information: %s", err.Error())
			}
			fmt.Printf("commit: %s\n", info.GetCommitSHA())
			fmt.Printf("commit time: %s\n", info.GetVCSTime())
			fmt.Printf("go version: %s\n", info.GetGoVersion())
			fmt.Printf("platform: %s/%s\n", info.GetOperatingSystem(), info.GetArchitecture())
		},
	}
}
