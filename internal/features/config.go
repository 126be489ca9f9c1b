package features

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Domain groups related features.
type Domain string

const (
	Statistical Domain = "statistical"
	Temporal    Domain = "temporal"
	Spectral    Domain = "spectral"
)

// Domains lists every domain in extraction order.
var Domains = []Domain{Statistical, Temporal, Spectral}

// Params holds per-feature parameter overrides.
type Params map[string]any

// Use is a feature toggle. YAML accepts booleans as well as the "yes"/"no"
// strings tsfel configuration files use.
type Use bool

// UnmarshalYAML implements yaml.Unmarshaler.
func (u *Use) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		*u = Use(b)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("use: expected bool or yes/no, got %q", node.Value)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "on":
		*u = true
	case "no", "false", "off", "":
		*u = false
	default:
		return fmt.Errorf("use: unsupported value %q", s)
	}
	return nil
}

// Setting configures one feature.
type Setting struct {
	Use        Use    `yaml:"use"`
	Parameters Params `yaml:"parameters,omitempty"`
}

// Config maps domain to feature display name to its setting. Features that
// are absent or disabled are not extracted.
type Config map[Domain]map[string]Setting

// Default enables every catalogue feature with its default parameters.
func Default() Config {
	cfg := Config{}
	for _, def := range catalogue {
		if cfg[def.domain] == nil {
			cfg[def.domain] = map[string]Setting{}
		}
		cfg[def.domain][def.name] = Setting{Use: true, Parameters: cloneParams(def.defaults)}
	}
	return cfg
}

// ForDomain returns a config enabling every feature of a single domain.
func ForDomain(domain Domain) (Config, error) {
	all := Default()
	settings, ok := all[domain]
	if !ok {
		return nil, fmt.Errorf("unknown feature domain %q", domain)
	}
	return Config{domain: settings}, nil
}

// LoadConfig reads a YAML feature configuration from path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("feature config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML feature configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown domains and features, and parameter values that
// would produce an unusable column layout.
func (c Config) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("feature config enables no domains")
	}
	for domain, settings := range c {
		if !knownDomain(domain) {
			return fmt.Errorf("unknown feature domain %q", domain)
		}
		for name, setting := range settings {
			def, ok := lookup(domain, name)
			if !ok {
				return fmt.Errorf("unknown feature %q in domain %q", name, domain)
			}
			if !setting.Use {
				continue
			}
			if width := def.outputs(def.params(setting.Parameters)); width <= 0 {
				return fmt.Errorf("feature %q: parameters yield %d outputs", name, width)
			}
		}
	}
	return nil
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Count reports how many enabled features the config selects.
func (c Config) Count() int {
	return len(c.enabled())
}

// Names lists every column Extract produces for cfg, in extraction order.
func Names(cfg Config) []string {
	var names []string
	for _, ef := range cfg.enabled() {
		names = append(names, ef.def.columns(ef.params)...)
	}
	return names
}

type enabledFeature struct {
	def    *definition
	params Params
}

func (c Config) enabled() []enabledFeature {
	var out []enabledFeature
	for _, domain := range Domains {
		settings := c[domain]
		names := make([]string, 0, len(settings))
		for name, setting := range settings {
			if setting.Use {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			def, ok := lookup(domain, name)
			if !ok {
				continue
			}
			out = append(out, enabledFeature{def: def, params: def.params(settings[name].Parameters)})
		}
	}
	return out
}

func knownDomain(d Domain) bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

func cloneParams(p Params) Params {
	if len(p) == 0 {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
