package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// LoadSection populates a single section, such as *UploadConfig, from the
// environment with its defaults applied. Command-line tools that never open
// the database use it instead of Load. The section is not validated.
func LoadSection(section any) error {
	v := reflect.ValueOf(section)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config section must be a non-nil struct pointer, got %T", section)
	}
	return loadStruct(v.Elem())
}

// envTag is the parsed form of a field's env, envAlt, default and
// required tags.
type envTag struct {
	name     string
	alt      string
	def      string
	required bool
}

func parseTag(f reflect.StructField) (envTag, bool) {
	tag := envTag{
		name:     f.Tag.Get("env"),
		alt:      f.Tag.Get("envAlt"),
		def:      f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
	return tag, tag.name != ""
}

// value returns the primary variable, then the alternate, then the default.
func (t envTag) value() (string, error) {
	if v := os.Getenv(t.name); v != "" {
		return v, nil
	}
	if t.alt != "" {
		if v := os.Getenv(t.alt); v != "" {
			return v, nil
		}
	}
	if t.required {
		return "", fmt.Errorf("required environment variable %s is not set", t.name)
	}
	return t.def, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct populates v's tagged fields, descending into nested sections.
func loadStruct(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fv); err != nil {
				return err
			}
			continue
		}

		tag, ok := parseTag(field)
		if !ok {
			continue
		}
		raw, err := tag.value()
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if err := setField(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", tag.name, raw, err)
		}
	}
	return nil
}

// setField parses raw into field according to the field's type.
func setField(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		field.Set(reflect.ValueOf(splitList(raw)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems collects validation failures across sections.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

// Validate checks every section and reports all failures together.
func (c *Config) Validate() error {
	var p problems
	c.Server.validate(&p)
	c.Database.validate(&p)
	c.Upload.validate(&p)
	c.Rate.validate(&p)
	c.Security.validate(&p)
	c.Logging.validate(&p)

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

func (c *ServerConfig) validate(p *problems) {
	if c.Port <= 0 || c.Port > 65535 {
		p.addf("SERVER_PORT (%d) must be 1-65535", c.Port)
	}
	if c.ReadTimeout < 0 {
		p.addf("SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.ShutdownTimeout <= 0 {
		p.addf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
}

func (c *DatabaseConfig) validate(p *problems) {
	if c.URL == "" {
		p.addf("DATABASE_URL is required")
	}
	switch {
	case c.MaxConns <= 0:
		p.addf("DB_MAX_CONNS must be positive")
	case c.MaxConns < c.MinConns:
		p.addf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.MaxConns, c.MinConns)
	}
	if c.MinConns < 0 {
		p.addf("DB_MIN_CONNS must be non-negative")
	}
}

func (c *UploadConfig) validate(p *problems) {
	if c.MaxFileSize <= 0 {
		p.addf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.MaxConcurrent <= 0 {
		p.addf("UPLOAD_MAX_CONCURRENT must be positive")
	}
	if c.MaxWaitTime <= 0 {
		p.addf("UPLOAD_MAX_WAIT_TIME must be positive")
	}
	if c.Timeout <= 0 {
		p.addf("UPLOAD_TIMEOUT must be positive")
	}
}

// validate only checks the limits when rate limiting is on.
func (c *RateLimitConfig) validate(p *problems) {
	if !c.Enabled {
		return
	}
	if c.Max <= 0 {
		p.addf("RATE_LIMIT_MAX must be positive when rate limiting is enabled")
	}
	if c.UploadLimit <= 0 {
		p.addf("RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}
	if c.Window <= 0 {
		p.addf("RATE_LIMIT_TTL must be positive when rate limiting is enabled")
	}
}

func (c *SecurityConfig) validate(p *problems) {
	if c.RequireAPIKey && len(c.APIKeys) == 0 {
		p.addf("REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}
}

func (c *LoggingConfig) validate(p *problems) {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.addf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		p.addf("LOG_FORMAT (%q) must be one of: text, json", c.Format)
	}
}

// String returns the configuration for logging with the database URL and
// API keys masked.
func (c *Config) String() string {
	sections := []string{
		fmt.Sprintf("Server: {Host: %q, Port: %d}", c.Server.Host, c.Server.Port),
		fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d, MinConns: %d, Migrate: %v}",
			c.Database.MaxConns, c.Database.MinConns, c.Database.Migrate),
		fmt.Sprintf("Upload: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}",
			c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.Timeout),
		fmt.Sprintf("Rate: {Enabled: %v, Max: %d, Window: %s, Upload: %d}",
			c.Rate.Enabled, c.Rate.Max, c.Rate.Window, c.Rate.UploadLimit),
		fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: [%d MASKED], Origins: %q, CSP: %v}",
			c.Security.RequireAPIKey, len(c.Security.APIKeys), c.Security.AllowedOrigins, c.Security.EnableCSP),
		fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format),
	}
	return "Config{" + strings.Join(sections, ", ") + "}"
}
