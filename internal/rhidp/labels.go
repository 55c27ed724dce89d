package rhidp

import "github.com/app-sre/ocm-label-reconciler/pkg/api"

// LabelPrefix namespaces every label this integration manages. Labels
// outside it are never touched.
const LabelPrefix = "sso."

const (
	statusLabel   = LabelPrefix + "status"
	issuerLabel   = LabelPrefix + "issuer"
	clientIDLabel = LabelPrefix + "client-id"
)

// AuthStatus is the declared RHIDP state of a cluster
type AuthStatus string

const (
	AuthStatusEnabled  AuthStatus = "enabled"
	AuthStatusDisabled AuthStatus = "disabled"
)

// AuthLabels derives the managed auth labels from a cluster's auth
// configuration. An enabled cluster carries status, issuer and client id; a
// disabled cluster carries only the status marker so operators can tell a
// deliberate opt-out from a cluster that was never configured; no auth
// configuration at all means no labels.
func AuthLabels(auth *AuthSpec, defaultIssuerURL string) api.LabelValues {
	if auth == nil {
		return api.LabelValues{}
	}
	if auth.Status == AuthStatusDisabled {
		return api.LabelValues{statusLabel: string(AuthStatusDisabled)}
	}
	issuer := auth.Issuer
	if issuer == "" {
		issuer = defaultIssuerURL
	}
	return api.LabelValues{
		statusLabel:   string(AuthStatusEnabled),
		issuerLabel:   issuer,
		clientIDLabel: auth.ClientID,
	}
}
