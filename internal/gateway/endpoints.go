package gateway

import "strings"

// Endpoints resolves the two upstream operations to concrete URLs. The
// gateway either talks to the SwitchTransact API directly or routes through
// the local relay; both paths end at the same upstream endpoint.
type Endpoints struct {
	// Details receives the person-detail POST.
	Details string
	// Probe receives the lightweight status GET.
	Probe string
}

// DirectEndpoints targets the upstream API itself.
func DirectEndpoints(baseURL string) Endpoints {
	base := strings.TrimRight(baseURL, "/")
	return Endpoints{
		Details: base + "/workflow/people/details",
		Probe:   base + "/lookups?type=Bank",
	}
}

// ProxyEndpoints targets the local relay, which forwards the Authorization
// header and body verbatim to the upstream API.
func ProxyEndpoints(proxyBaseURL string) Endpoints {
	base := strings.TrimRight(proxyBaseURL, "/")
	return Endpoints{
		Details: base + "/client-details",
		Probe:   base + "/status",
	}
}
