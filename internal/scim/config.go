package scim

import (
	"github.com/spf13/viper"

	"github.com/openidx/scimcore/internal/scim/query"
)

// ServiceProviderConfig is the RFC 7644 §4 discovery document listing which
// optional SCIM features this server supports.
type ServiceProviderConfig struct {
	Patch            FeatureFlag `json:"patch"`
	Bulk             BulkFlag    `json:"bulk"`
	Filter           FilterFlag  `json:"filter"`
	ChangePassword   FeatureFlag `json:"changePassword"`
	Sort             FeatureFlag `json:"sort"`
	ETag             FeatureFlag `json:"etag"`
	AuthSchemes      []AuthScheme `json:"authenticationSchemes"`
}

type FeatureFlag struct {
	Supported bool `json:"supported"`
}

type BulkFlag struct {
	Supported      bool `json:"supported"`
	MaxOperations  int  `json:"maxOperations"`
	MaxPayloadSize int  `json:"maxPayloadSize"`
}

type FilterFlag struct {
	Supported  bool `json:"supported"`
	MaxResults int  `json:"maxResults"`
}

type AuthScheme struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadConfig reads Limits and ServiceProviderConfig from v (a Viper
// instance), applying the same zero-config defaults the teacher's
// internal/common/config package sets for every other service via
// viper.SetDefault.
func LoadConfig(v *viper.Viper) (query.Limits, *ServiceProviderConfig) {
	v.SetDefault("scim.limits.maxResults", 200)
	v.SetDefault("scim.limits.defaultPageSize", 20)
	v.SetDefault("scim.features.patch", true)
	v.SetDefault("scim.features.filter", true)
	v.SetDefault("scim.features.sort", false)
	v.SetDefault("scim.features.etag", true)
	v.SetDefault("scim.features.changePassword", false)
	v.SetDefault("scim.features.bulk", false)

	limits := query.Limits{
		MaxResults:      v.GetInt("scim.limits.maxResults"),
		DefaultPageSize: v.GetInt("scim.limits.defaultPageSize"),
	}

	spc := &ServiceProviderConfig{
		Patch:          FeatureFlag{Supported: v.GetBool("scim.features.patch")},
		ChangePassword: FeatureFlag{Supported: v.GetBool("scim.features.changePassword")},
		Sort:           FeatureFlag{Supported: v.GetBool("scim.features.sort")},
		ETag:           FeatureFlag{Supported: v.GetBool("scim.features.etag")},
		Bulk:           BulkFlag{Supported: v.GetBool("scim.features.bulk")},
		Filter: FilterFlag{
			Supported:  v.GetBool("scim.features.filter"),
			MaxResults: limits.MaxResults,
		},
	}
	return limits, spc
}
