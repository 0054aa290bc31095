package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TenantConfig overrides global settings for one tenant.
type TenantConfig struct {
	DatabaseURL     string   `yaml:"database_url"`
	AdminRecipients []string `yaml:"admin_recipients"`
}

type tenantsFile struct {
	Tenants map[string]TenantConfig `yaml:"tenants"`
}

// LoadTenants reads per-tenant overrides from a YAML file of the form
//
//	tenants:
//	  acme:
//	    database_url: postgres://...
//	    admin_recipients: [ops@acme.test]
func LoadTenants(path string) (map[string]TenantConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenants config: %w", err)
	}
	return ParseTenants(data)
}

// ParseTenants decodes the tenants YAML document.
func ParseTenants(data []byte) (map[string]TenantConfig, error) {
	var f tenantsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse tenants config: %w", err)
	}
	if f.Tenants == nil {
		f.Tenants = map[string]TenantConfig{}
	}
	return f.Tenants, nil
}
