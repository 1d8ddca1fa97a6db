package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
	"github.com/avirbig/cohen-services-hub/internal/validate"
)

// Intake backends.
const (
	BackendHTTP = "http"
	BackendSDK  = "sdk"
)

// Payload encodings.
const (
	EncodingMultipart = "multipart"
	EncodingJSON      = "json"
)

// Built-in profiles.
const (
	ProfileSingle = "single"
	ProfileMulti  = "multi"
)

// IntakeConfig describes how the form reaches the external intake service.
type IntakeConfig struct {
	Backend     string `toml:"backend"`
	EndpointURL string `toml:"endpoint_url"`
	SDKBaseURL  string `toml:"sdk_base_url"`
	FormID      string `toml:"form_id"`
	FileField   string `toml:"file_field"`
	// FieldMapping renames page field names to intake field names.
	FieldMapping map[string]string `toml:"field_mapping"`
	Encoding     string            `toml:"encoding"`
	TimeoutSec   int               `toml:"timeout_sec"`
}

// UploadConfig bounds the attachment store and the preview renderer.
type UploadConfig struct {
	Capacity           int      `toml:"capacity"`
	MaxFileMB          int      `toml:"max_file_mb"`
	AllowedTypes       []string `toml:"allowed_types"`
	PreviewWorkers     int      `toml:"preview_workers"`
	ThumbnailPx        int      `toml:"thumbnail_px"`
	ThumbnailCacheSize int      `toml:"thumbnail_cache_size"`
	MaxImageMegapixels int      `toml:"max_image_megapixels"`
}

// MaxFileBytes is MaxFileMB in bytes.
func (u UploadConfig) MaxFileBytes() int64 {
	return validate.MaxBytesFromMB(u.MaxFileMB)
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig configures the local development intake server.
type ServerConfig struct {
	Port            string `toml:"port"`
	SimulateFailure bool   `toml:"simulate_failure"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from a profile, an optional TOML overlay, then environment
// variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Profile    string       `toml:"profile"`
	Locale     string       `toml:"locale"`
	LocalesDir string       `toml:"locales_dir"`
	Intake     IntakeConfig `toml:"intake"`
	Upload     UploadConfig `toml:"upload"`
	Log        LogConfig    `toml:"log"`
	Server     ServerConfig `toml:"server"`
}

// Profile returns the built-in defaults for name. The single profile mirrors
// the one-photo SDK form; multi is the five-photo direct-post form.
func Profile(name string) (*AppConfig, error) {
	base := &AppConfig{
		Profile: name,
		Locale:  "he",
		Intake: IntakeConfig{
			Encoding:   EncodingMultipart,
			TimeoutSec: 30,
		},
		Upload: UploadConfig{
			MaxFileMB:          5,
			AllowedTypes:       append([]string(nil), validate.DefaultAllowedTypes...),
			PreviewWorkers:     4,
			ThumbnailPx:        160,
			ThumbnailCacheSize: 64,
			MaxImageMegapixels: 40,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}

	switch name {
	case ProfileSingle:
		base.Upload.Capacity = 1
		base.Intake.Backend = BackendSDK
		base.Intake.SDKBaseURL = "https://forminit.com"
		base.Intake.FileField = "photo"
	case ProfileMulti:
		base.Upload.Capacity = 5
		base.Intake.Backend = BackendHTTP
		base.Intake.FileField = "photos"
	default:
		return nil, apperrors.ErrInvalidConfig.WithContext("profile", name)
	}
	return base, nil
}

// Load reads configuration. A .env file can be auto-loaded by importing:
// _ "github.com/joho/godotenv/autoload". Real environment variables take
// precedence over the TOML overlay, which takes precedence over the profile.
func Load() (*AppConfig, error) {
	return LoadProfile(getEnv("FORM_PROFILE", ProfileMulti))
}

// LoadProfile is Load starting from the named profile instead of FORM_PROFILE.
func LoadProfile(name string) (*AppConfig, error) {
	cfg, err := Profile(name)
	if err != nil {
		return nil, err
	}

	if path := getEnv("FORM_CONFIG_FILE", ""); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Locale = getEnv("FORM_LOCALE", cfg.Locale)
	cfg.LocalesDir = getEnv("FORM_LOCALES_DIR", cfg.LocalesDir)

	cfg.Intake.Backend = getEnv("INTAKE_BACKEND", cfg.Intake.Backend)
	cfg.Intake.EndpointURL = getEnv("INTAKE_ENDPOINT_URL", cfg.Intake.EndpointURL)
	cfg.Intake.SDKBaseURL = getEnv("INTAKE_SDK_BASE_URL", cfg.Intake.SDKBaseURL)
	cfg.Intake.FormID = getEnv("INTAKE_FORM_ID", cfg.Intake.FormID)
	cfg.Intake.FileField = getEnv("INTAKE_FILE_FIELD", cfg.Intake.FileField)
	cfg.Intake.FieldMapping = getEnvMap("INTAKE_FIELD_MAPPING", cfg.Intake.FieldMapping)
	cfg.Intake.Encoding = getEnv("INTAKE_ENCODING", cfg.Intake.Encoding)
	cfg.Intake.TimeoutSec = getEnvInt("INTAKE_TIMEOUT_SEC", cfg.Intake.TimeoutSec)

	cfg.Upload.Capacity = getEnvInt("UPLOAD_CAPACITY", cfg.Upload.Capacity)
	cfg.Upload.MaxFileMB = getEnvInt("UPLOAD_MAX_FILE_MB", cfg.Upload.MaxFileMB)
	cfg.Upload.AllowedTypes = getEnvList("UPLOAD_ALLOWED_TYPES", cfg.Upload.AllowedTypes)
	cfg.Upload.PreviewWorkers = getEnvInt("UPLOAD_PREVIEW_WORKERS", cfg.Upload.PreviewWorkers)
	cfg.Upload.ThumbnailPx = getEnvInt("UPLOAD_THUMBNAIL_PX", cfg.Upload.ThumbnailPx)
	cfg.Upload.ThumbnailCacheSize = getEnvInt("UPLOAD_THUMBNAIL_CACHE", cfg.Upload.ThumbnailCacheSize)
	cfg.Upload.MaxImageMegapixels = getEnvInt("UPLOAD_MAX_IMAGE_MP", cfg.Upload.MaxImageMegapixels)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.SimulateFailure = getEnvBool("INTAKE_SIMULATE_FAILURE", cfg.Server.SimulateFailure)

	return cfg, nil
}

// LoadFile overlays the TOML file at path onto cfg. Keys absent from the file
// keep their current values.
func LoadFile(path string, cfg *AppConfig) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return apperrors.ErrInvalidConfig.WithContext("file", path).WithError(err)
	}
	return nil
}

// Validate checks the settings the page needs before any component is built.
// Intake settings are checked separately by Intake.Validate, since a broken
// intake only fails submission attempts.
func (c *AppConfig) Validate() error {
	if c.Upload.Capacity < 1 {
		return apperrors.ErrInvalidConfig.WithContext("upload.capacity", c.Upload.Capacity)
	}
	if c.Upload.MaxFileMB < 1 {
		return apperrors.ErrInvalidConfig.WithContext("upload.max_file_mb", c.Upload.MaxFileMB)
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return apperrors.ErrInvalidConfig.WithContext("upload.allowed_types", "empty")
	}
	if c.Locale == "" {
		return apperrors.ErrInvalidConfig.WithContext("locale", "empty")
	}
	return nil
}

// Validate reports whether the intake settings can produce a working backend.
func (c IntakeConfig) Validate() error {
	switch c.Encoding {
	case EncodingMultipart, EncodingJSON:
	default:
		return apperrors.ErrInvalidConfig.WithContext("intake.encoding", c.Encoding)
	}
	if c.FileField == "" {
		return apperrors.ErrInvalidConfig.WithContext("intake.file_field", "empty")
	}

	switch c.Backend {
	case BackendHTTP:
		if _, err := url.ParseRequestURI(c.EndpointURL); err != nil || c.EndpointURL == "" {
			return apperrors.ErrInvalidConfig.WithContext("intake.endpoint_url", c.EndpointURL).WithError(err)
		}
	case BackendSDK:
		if c.FormID == "" {
			return apperrors.ErrInvalidConfig.WithContext("intake.form_id", "empty")
		}
		if _, err := url.ParseRequestURI(c.SDKBaseURL); err != nil {
			return apperrors.ErrInvalidConfig.WithContext("intake.sdk_base_url", c.SDKBaseURL).WithError(err)
		}
	default:
		return apperrors.ErrInvalidConfig.WithContext("intake.backend", c.Backend)
	}
	return nil
}

// MappedName returns the intake name for a page field.
func (c IntakeConfig) MappedName(field string) string {
	if mapped, ok := c.FieldMapping[field]; ok && mapped != "" {
		return mapped
	}
	return field
}

func (c *AppConfig) String() string {
	return fmt.Sprintf("profile=%s backend=%s capacity=%d max_file_mb=%d locale=%s",
		c.Profile, c.Intake.Backend, c.Upload.Capacity, c.Upload.MaxFileMB, c.Locale)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// getEnvMap parses "a=b,c=d". Malformed pairs are skipped.
func getEnvMap(key string, def map[string]string) map[string]string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		k, val, ok := strings.Cut(pair, "=")
		k, val = strings.TrimSpace(k), strings.TrimSpace(val)
		if !ok || k == "" || val == "" {
			continue
		}
		out[k] = val
	}
	return out
}
