package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ApplyEnv applies environment overrides to cfg: service bindings from
// VCAP_SERVICES (Cloud Foundry) and the PORT variable. Binding credentials
// take precedence over file configuration.
func ApplyEnv(cfg *Config) error {
	if raw := os.Getenv("VCAP_SERVICES"); raw != "" {
		if err := applyVCAP(cfg, raw); err != nil {
			return err
		}
	}
	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid PORT value %q", p)
		}
		cfg.Server.Port = port
		// Platform-assigned ports expect the app to bind all interfaces.
		cfg.Server.Host = "0.0.0.0"
	}
	return nil
}

type vcapService struct {
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Tags        []string        `json:"tags"`
	Credentials vcapCredentials `json:"credentials"`
}

type vcapCredentials struct {
	URI      string        `json:"uri"`
	Endpoint *vcapEndpoint `json:"endpoint"`
	Host     string        `json:"host"`
	Port     any           `json:"port"`
	Database string        `json:"database"`
	Username string        `json:"username"`
	Password string        `json:"password"`
}

// vcapEndpoint is the GenAI-style binding shape: an OpenAI-compatible API
// root plus its key.
type vcapEndpoint struct {
	APIBase   string `json:"api_base"`
	APIKey    string `json:"api_key"`
	ConfigURL string `json:"config_url"`
}

func applyVCAP(cfg *Config, raw string) error {
	var services map[string][]vcapService
	if err := json.Unmarshal([]byte(raw), &services); err != nil {
		return fmt.Errorf("failed to parse VCAP_SERVICES: %w", err)
	}

	for _, instances := range services {
		for _, svc := range instances {
			switch {
			case svc.matches("genai"):
				ep := svc.Credentials.Endpoint
				if ep == nil || ep.APIBase == "" {
					continue
				}
				cfg.Embedding.BaseURL = ep.APIBase
				cfg.Embedding.APIKey = ep.APIKey
				cfg.Embedding.Provider = "openai"
			case svc.matches("postgres"):
				if uri := svc.Credentials.postgresURL(); uri != "" {
					cfg.Store.PostgresURL = uri
				}
			}
		}
	}
	return nil
}

// matches reports whether the service's label or any tag contains kind.
func (s *vcapService) matches(kind string) bool {
	if strings.Contains(strings.ToLower(s.Label), kind) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), kind) {
			return true
		}
	}
	return false
}

// postgresURL returns the binding's connection URL, built from discrete
// credentials when no URI is provided.
func (c *vcapCredentials) postgresURL() string {
	if c.URI != "" {
		return c.URI
	}
	if c.Host == "" || c.Database == "" {
		return ""
	}
	host := c.Host
	if c.Port != nil {
		host = fmt.Sprintf("%s:%v", c.Host, c.Port)
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   host,
		Path:   "/" + c.Database,
	}
	return u.String()
}
