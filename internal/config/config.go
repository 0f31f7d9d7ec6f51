package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yourorg/image-variants/internal/codec"
	"github.com/yourorg/image-variants/internal/storage"
	"github.com/yourorg/image-variants/internal/variant"
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Store backends.
const (
	BackendS3     = storage.BackendS3
	BackendBadger = storage.BackendBadger
)

// Cascade scopes.
const (
	// ScopeNamespace deletes every object under every label folder of the
	// deleted source's namespace.
	ScopeNamespace = "namespace"
	// ScopeSource deletes only the deleted source's own variants.
	ScopeSource = "source"
)

// Config is built once at start-up and never mutated.
type Config struct {
	Bucket             string
	BaseURL            string
	AllowedResolutions variant.AllowedSet
	DefaultResolution  variant.Spec

	StoreBackend string
	BadgerDir    string
	S3Endpoint   string
	S3PathStyle  bool
	OutputFormat string
	JPEGQuality  int
	CascadeScope string
	ListPageSize int32

	Port        string
	MetricsAddr string
	LogLevel    string

	TemporalAddress   string
	TemporalNamespace string
	TemporalTaskQueue string
}

// FromEnv loads .env when present, then reads the process environment.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: .env: %v", ErrInvalid, err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(k, def string) string {
		if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Bucket:            get("BUCKET", ""),
		BaseURL:           strings.TrimRight(get("URL", ""), "/"),
		StoreBackend:      strings.ToLower(get("STORE_BACKEND", BackendS3)),
		BadgerDir:         get("BADGER_DIR", "./data/badger"),
		S3Endpoint:        get("AWS_ENDPOINT_URL_S3", ""),
		S3PathStyle:       strings.EqualFold(get("AWS_S3_FORCE_PATH_STYLE", ""), "true"),
		OutputFormat:      strings.ToLower(get("OUTPUT_FORMAT", codec.FormatJPEG)),
		CascadeScope:      strings.ToLower(get("CASCADE_SCOPE", ScopeNamespace)),
		Port:              get("PORT", "8080"),
		MetricsAddr:       get("METRICS_ADDR", ":9090"),
		LogLevel:          get("LOG_LEVEL", "info"),
		TemporalAddress:   get("TEMPORAL_ADDRESS", ""),
		TemporalNamespace: get("TEMPORAL_NAMESPACE", "default"),
		TemporalTaskQueue: get("TEMPORAL_TASK_QUEUE", "image-variants"),
	}

	var err error
	if cfg.AllowedResolutions, err = variant.ParseAllowedSet(get("ALLOWED_RESOLUTIONS", "")); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cfg.DefaultResolution, err = variant.ParseLabel(get("DEFAULT_RESOLUTION", "800x600")); err != nil {
		return Config{}, fmt.Errorf("%w: DEFAULT_RESOLUTION: %v", ErrInvalid, err)
	}
	if cfg.JPEGQuality, err = intIn(get("JPEG_QUALITY", "80"), 1, 100); err != nil {
		return Config{}, fmt.Errorf("%w: JPEG_QUALITY: %v", ErrInvalid, err)
	}
	pageSize, err := intIn(get("LIST_PAGE_SIZE", "1000"), 1, 1000)
	if err != nil {
		return Config{}, fmt.Errorf("%w: LIST_PAGE_SIZE: %v", ErrInvalid, err)
	}
	cfg.ListPageSize = int32(pageSize)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StoreOptions converts the store settings for storage.Open.
func (c Config) StoreOptions() storage.OpenOptions {
	return storage.OpenOptions{
		Backend:   c.StoreBackend,
		BadgerDir: c.BadgerDir,
		S3: storage.S3Options{
			Bucket:         c.Bucket,
			Endpoint:       c.S3Endpoint,
			ForcePathStyle: c.S3PathStyle,
		},
	}
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalid)
	}
	switch c.StoreBackend {
	case BackendS3:
		if c.Bucket == "" {
			return fmt.Errorf("%w: BUCKET is required for the s3 backend", ErrInvalid)
		}
	case BackendBadger:
	default:
		return fmt.Errorf("%w: unknown STORE_BACKEND %q", ErrInvalid, c.StoreBackend)
	}
	switch c.OutputFormat {
	case codec.FormatJPEG, codec.FormatPNG, codec.FormatSource:
	default:
		return fmt.Errorf("%w: unknown OUTPUT_FORMAT %q", ErrInvalid, c.OutputFormat)
	}
	switch c.CascadeScope {
	case ScopeNamespace, ScopeSource:
	default:
		return fmt.Errorf("%w: unknown CASCADE_SCOPE %q", ErrInvalid, c.CascadeScope)
	}
	return nil
}

func intIn(s string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d not in [%d, %d]", n, lo, hi)
	}
	return n, nil
}
