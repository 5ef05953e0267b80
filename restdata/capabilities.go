// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"strings"

	"github.com/diffeo/go-openeo/openeo"
)

// ServiceID derives a capabilities service id from the service title
// and the canonical version, e.g. "OpenEO Test API" at 0.4.0 becomes
// "openeotestapi-0.4.0".
func ServiceID(title string, v openeo.Version) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "") + "-" + v.String()
}

// BuildDiscovery assembles the well-known discovery document from the
// advertised version rows.  baseURL maps a version alias to the
// absolute URL of the tree serving it; aliases get their own rows, so
// a canonical version may appear more than once.
func BuildDiscovery(infos []openeo.VersionInfo, baseURL func(alias string) string) Discovery {
	discovery := Discovery{Versions: []DiscoveryVersion{}}
	for _, info := range infos {
		discovery.Versions = append(discovery.Versions, DiscoveryVersion{
			URL:        baseURL(info.Alias),
			APIVersion: info.Canonical.String(),
			Production: info.Production,
		})
	}
	return discovery
}

// DefaultBilling is the billing section served when a deployment does
// not configure its own: a single free plan.
func DefaultBilling() *Billing {
	return &Billing{
		Currency: "EUR",
		Plans: []BillingPlan{
			{
				Name:        "free",
				Description: "Free plan. No limits!",
				URL:         "http://openeo.org/plans/free-plan",
				Paid:        false,
			},
		},
	}
}

// DefaultUDFRuntimes is the UDF runtime listing served when a
// deployment does not configure its own.
func DefaultUDFRuntimes() map[string]interface{} {
	return map[string]interface{}{
		"Python": map[string]interface{}{
			"description": "Predefined Python runtime environment.",
			"default":     "latest",
			"versions": map[string]interface{}{
				"3.5.1": map[string]interface{}{
					"libraries": map[string]interface{}{
						"numpy":      map[string]interface{}{"version": "1.14.3"},
						"pandas":     map[string]interface{}{"version": "0.22.0"},
						"tensorflow": map[string]interface{}{"version": "1.11.0"},
					},
				},
			},
		},
	}
}
