package mx

import "strings"

// Provider tags assigned by DetectProvider. The scorer keys its
// ESP-specific behavior off these values.
const (
	ProviderMicrosoft365 = "microsoft365"
	ProviderGoogle       = "google"
	ProviderProofpoint   = "proofpoint"
	ProviderMimecast     = "mimecast"
	ProviderBarracuda    = "barracuda"
	ProviderUnknown      = "unknown"
)

// DetectProvider maps an MX hostname to a coarse provider tag by
// case-insensitive substring match. First match wins.
func DetectProvider(mxHost string) string {
	h := strings.ToLower(mxHost)
	switch {
	case strings.Contains(h, "outlook") || strings.Contains(h, "protection"):
		return ProviderMicrosoft365
	case strings.Contains(h, "google.com") || strings.Contains(h, "aspmx"):
		return ProviderGoogle
	case strings.Contains(h, "pphosted") || strings.Contains(h, "proofpoint"):
		return ProviderProofpoint
	case strings.Contains(h, "mimecast"):
		return ProviderMimecast
	case strings.Contains(h, "barracuda"):
		return ProviderBarracuda
	default:
		return ProviderUnknown
	}
}
