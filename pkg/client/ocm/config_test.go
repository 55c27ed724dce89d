package ocm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/onsi/gomega"
	"github.com/spf13/pflag"
)

func TestNewOCMConfig_Defaults(t *testing.T) {
	g := gomega.NewWithT(t)

	config := NewOCMConfig()
	g.Expect(config.BaseURL).To(gomega.Equal("https://api.openshift.com"))
	g.Expect(config.MaxPageSize).To(gomega.Equal(100))
	g.Expect(config.RetryLimit).To(gomega.Equal(10))
	g.Expect(config.Debug).To(gomega.BeFalse())
}

func TestOCMConfig_AddFlags(t *testing.T) {
	g := gomega.NewWithT(t)

	config := NewOCMConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.AddFlags(fs)

	err := fs.Parse([]string{
		"--ocm-base-url=https://api.stage.openshift.com",
		"--ocm-max-page-size=50",
	})
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(config.BaseURL).To(gomega.Equal("https://api.stage.openshift.com"))
	g.Expect(config.MaxPageSize).To(gomega.Equal(50))
}

func TestOCMConfig_ReadFiles(t *testing.T) {
	g := gomega.NewWithT(t)

	dir := t.TempDir()
	clientIDFile := filepath.Join(dir, "clientId")
	clientSecretFile := filepath.Join(dir, "clientSecret")
	g.Expect(os.WriteFile(clientIDFile, []byte("the-client-id\n"), 0600)).To(gomega.Succeed())
	g.Expect(os.WriteFile(clientSecretFile, []byte("the-client-secret"), 0600)).To(gomega.Succeed())

	config := NewOCMConfig()
	config.ClientIDFile = clientIDFile
	config.ClientSecretFile = clientSecretFile
	// token file is optional when client credentials are present
	config.SelfTokenFile = filepath.Join(dir, "does-not-exist")

	g.Expect(config.ReadFiles()).To(gomega.Succeed())
	g.Expect(config.ClientID).To(gomega.Equal("the-client-id"))
	g.Expect(config.ClientSecret).To(gomega.Equal("the-client-secret"))
	g.Expect(config.HasCredentials()).To(gomega.BeTrue())
}

func TestOCMConfig_HasCredentials(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect((&OCMConfig{}).HasCredentials()).To(gomega.BeFalse())
	g.Expect((&OCMConfig{ClientID: "id"}).HasCredentials()).To(gomega.BeFalse())
	g.Expect((&OCMConfig{ClientID: "id", ClientSecret: "secret"}).HasCredentials()).To(gomega.BeTrue())
	g.Expect((&OCMConfig{SelfToken: "token"}).HasCredentials()).To(gomega.BeTrue())
}
