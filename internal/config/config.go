// Package config loads the server-wide MCPP configuration: a YAML file
// on disk, overlaid with environment variables for the values operators
// commonly need to change per deployment without editing the file.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// File is the on-disk shape of the configuration file. It mirrors
// mcpptype.ServerConfig but uses YAML-friendly field names and simpler
// wire types (wire-format usage levels and decisions as strings) so the
// file reads naturally by hand.
type File struct {
	Server struct {
		ListenAddr                  string `yaml:"listen_addr" env:"MCPP_LISTEN_ADDR"`
		ConsentTimeoutSeconds       int    `yaml:"consent_timeout_seconds" env:"MCPP_CONSENT_TIMEOUT_SECONDS"`
		CacheConsentDurationMinutes int    `yaml:"cache_consent_duration_minutes" env:"MCPP_CACHE_CONSENT_MINUTES"`
		DefaultOnTimeout            string `yaml:"default_on_timeout" env:"MCPP_DEFAULT_ON_TIMEOUT"`
	} `yaml:"server"`

	DefaultDataUsagePolicy map[string]string `yaml:"default_data_usage_policy"`

	DefaultTargetPolicy struct {
		Server *TargetListFile `yaml:"server"`
		LLM    string          `yaml:"llm"`
	} `yaml:"default_target_policy"`

	TrustedTargets []string `yaml:"trusted_targets" envSeparator:","`
	TrustedDomains []string `yaml:"trusted_domains" envSeparator:","`

	TargetCategories map[string]TargetCategoryFile `yaml:"target_categories"`

	RequireConsentFor struct {
		AnyTransfer            bool `yaml:"any_transfer"`
		SensitiveDataTransfer  bool `yaml:"sensitive_data_transfer"`
		LLMDataAccess          bool `yaml:"llm_data_access"`
		ExternalServerTransfer bool `yaml:"external_server_transfer"`
	} `yaml:"require_consent_for"`

	Auth struct {
		Mode    string       `yaml:"mode" env:"MCPP_AUTH_MODE"` // "none", "jwt", "api_key", "multi"
		JWKSURL string       `yaml:"jwks_url" env:"MCPP_AUTH_JWKS_URL"`
		APIKeys []APIKeyFile `yaml:"api_keys"`
	} `yaml:"auth"`

	Upstream struct {
		BaseURL       string `yaml:"base_url" env:"MCPP_UPSTREAM_BASE_URL"`
		AuthHeaderRef string `yaml:"auth_header_ref" env:"MCPP_UPSTREAM_AUTH_HEADER_REF"`
	} `yaml:"upstream"`

	Tools map[string]ToolFile `yaml:"tools"`
}

// APIKeyFile is the on-disk shape of one pre-shared API key, used only
// when auth.mode is "api_key" or "multi". KeyHash is the SHA-256 hex digest of the
// raw key (see auth.HashAPIKey), never the key itself.
type APIKeyFile struct {
	ID        string   `yaml:"id"`
	KeyHash   string   `yaml:"key_hash"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// ToolFile is the on-disk shape of one tool's declared policy.
type ToolFile struct {
	IsSensitive          bool              `yaml:"is_sensitive"`
	DataUsagePermissions map[string]string `yaml:"data_usage_permissions"`
	BlockedTargets       []string          `yaml:"blocked_targets"`
	AllowedTargets       []string          `yaml:"allowed_targets"`
	ConsentAlways        bool              `yaml:"consent_always"`
	ConsentNever         bool              `yaml:"consent_never"`
	ConsentCustomMessage string            `yaml:"consent_custom_message"`
}

func (t ToolFile) toDomain(name string) (*mcpptype.Tool, error) {
	perms := make(map[mcpptype.UsageLevel]mcpptype.Decision, len(t.DataUsagePermissions))
	for levelName, decisionName := range t.DataUsagePermissions {
		level, ok := mcpptype.ParseUsageLevel(levelName)
		if !ok {
			return nil, fmt.Errorf("config: tool %s: unrecognized usage level %q", name, levelName)
		}
		perms[level] = mcpptype.Decision(decisionName)
	}

	var blocked, allowed *mcpptype.TargetList
	if len(t.BlockedTargets) > 0 {
		blocked = &mcpptype.TargetList{List: t.BlockedTargets}
	}
	if len(t.AllowedTargets) > 0 {
		allowed = &mcpptype.TargetList{List: t.AllowedTargets}
	}

	return &mcpptype.Tool{
		Name:        name,
		IsSensitive: t.IsSensitive,
		DataPolicy: &mcpptype.DataPolicy{
			DataUsagePermissions: perms,
			TargetPermissions: mcpptype.TargetPermissions{
				BlockedTargets: blocked,
				AllowedTargets: allowed,
			},
			ConsentOverrides: mcpptype.ConsentOverrides{
				Always:        t.ConsentAlways,
				Never:         t.ConsentNever,
				CustomMessage: t.ConsentCustomMessage,
			},
		},
	}, nil
}

// toolsDomain converts the configured tool table into the map the dispatcher
// needs, keyed by tool name.
func (f *File) toolsDomain() (map[string]*mcpptype.Tool, error) {
	out := make(map[string]*mcpptype.Tool, len(f.Tools))
	for name, t := range f.Tools {
		tool, err := t.toDomain(name)
		if err != nil {
			return nil, err
		}
		out[name] = tool
	}
	return out, nil
}

// TargetListFile is the YAML shape of a mcpptype.TargetList.
type TargetListFile struct {
	None bool     `yaml:"none"`
	List []string `yaml:"list"`
}

func (t *TargetListFile) toDomain() *mcpptype.TargetList {
	if t == nil {
		return nil
	}
	return &mcpptype.TargetList{None: t.None, List: t.List}
}

// TargetCategoryFile is the YAML shape of a mcpptype.TargetCategory.
type TargetCategoryFile struct {
	Type            string         `yaml:"type"`
	Category        string         `yaml:"category"`
	TrustLevel      string         `yaml:"trust_level"`
	RequiresConsent bool           `yaml:"requires_consent"`
	Metadata        map[string]any `yaml:"metadata"`
}

// Loaded is everything cmd/mcppd needs to assemble the server: the
// policy configuration, the tool table, and the few plain settings that
// sit outside mcpptype.ServerConfig (listen address, auth mode, upstream
// base URL).
type Loaded struct {
	Policy             mcpptype.ServerConfig
	Tools              map[string]*mcpptype.Tool
	ListenAddr         string
	AuthMode           string
	AuthJWKSURL        string
	APIKeys            []APIKeyFile
	UpstreamBaseURL    string
	UpstreamAuthHeader string
}

// Load reads path as YAML, overlays environment variables (via
// caarlos0/env's struct-tag parsing), and converts the result into the
// domain types the rest of the server needs.
func Load(path string) (Loaded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Loaded{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := env.Parse(&f); err != nil {
		return Loaded{}, fmt.Errorf("config: applying environment overrides: %w", err)
	}

	policy, err := f.toDomain()
	if err != nil {
		return Loaded{}, err
	}
	tools, err := f.toolsDomain()
	if err != nil {
		return Loaded{}, err
	}

	return Loaded{
		Policy:             policy,
		Tools:              tools,
		ListenAddr:         f.Server.ListenAddr,
		AuthMode:           f.Auth.Mode,
		AuthJWKSURL:        f.Auth.JWKSURL,
		APIKeys:            f.Auth.APIKeys,
		UpstreamBaseURL:    f.Upstream.BaseURL,
		UpstreamAuthHeader: f.Upstream.AuthHeaderRef,
	}, nil
}

func (f *File) toDomain() (mcpptype.ServerConfig, error) {
	usagePolicy := make(map[mcpptype.UsageLevel]mcpptype.Decision, len(f.DefaultDataUsagePolicy))
	for levelName, decisionName := range f.DefaultDataUsagePolicy {
		level, ok := mcpptype.ParseUsageLevel(levelName)
		if !ok {
			return mcpptype.ServerConfig{}, fmt.Errorf("config: unrecognized usage level %q", levelName)
		}
		usagePolicy[level] = mcpptype.Decision(decisionName)
	}

	categories := make(map[string]mcpptype.TargetCategory, len(f.TargetCategories))
	for dest, c := range f.TargetCategories {
		categories[dest] = mcpptype.TargetCategory{
			Type:            mcpptype.TargetType(c.Type),
			Category:        mcpptype.TargetCategoryKind(c.Category),
			TrustLevel:      mcpptype.TrustLevel(c.TrustLevel),
			RequiresConsent: c.RequiresConsent,
			Metadata:        c.Metadata,
		}
	}

	cfg := mcpptype.ServerConfig{
		DefaultDataUsagePolicy: usagePolicy,
		DefaultTargetPolicy: mcpptype.DefaultTargetPolicy{
			Server: f.DefaultTargetPolicy.Server.toDomain(),
			LLM:    f.DefaultTargetPolicy.LLM,
		},
		TrustedTargets:              f.TrustedTargets,
		TrustedDomains:              f.TrustedDomains,
		TargetCategories:            categories,
		ConsentTimeoutSeconds:       f.Server.ConsentTimeoutSeconds,
		CacheConsentDurationMinutes: f.Server.CacheConsentDurationMinutes,
		DefaultOnTimeout:            mcpptype.Decision(f.Server.DefaultOnTimeout),
	}
	cfg.RequireConsentFor = mcpptype.RequireConsentFor{
		AnyTransfer:            f.RequireConsentFor.AnyTransfer,
		SensitiveDataTransfer:  f.RequireConsentFor.SensitiveDataTransfer,
		LLMDataAccess:          f.RequireConsentFor.LLMDataAccess,
		ExternalServerTransfer: f.RequireConsentFor.ExternalServerTransfer,
	}
	return cfg, nil
}
