package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for the kiosk.
type Config struct {
	StationID   string            `toml:"station_id"`
	BaseDir     string            `toml:"base_dir"`
	DBDir       string            `toml:"db_dir"`
	LogDir      string            `toml:"log_dir"`
	Camera      CameraConfig      `toml:"camera"`
	Video       VideoConfig       `toml:"video"`
	Face        FaceConfig        `toml:"face"`
	Time        TimeConfig        `toml:"time"`
	Capture     CaptureConfig     `toml:"capture"`
	Archive     ArchiveConfig     `toml:"archive"`
	Ledger      LedgerConfig      `toml:"ledger"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Replication ReplicationConfig `toml:"replication"`
}

// Duration is a time.Duration written as a string such as "30s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// CameraConfig selects the frame source.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type CameraConfig struct {
	Type         string   `toml:"type"`                    // "ffmpeg" (default) or "test"
	Device       string   `toml:"device,omitempty"`        // e.g. /dev/video0
	InputFormat  string   `toml:"input_format,omitempty"`  // ffmpeg demuxer, e.g. v4l2, avfoundation, dshow
	PollInterval Duration `toml:"poll_interval,omitempty"` // defaults to 20ms
}

// VideoConfig configures clip encoding. Clips are always 20 fps at 640x480;
// fps, width and height may be left unset or must restate those values.
type VideoConfig struct {
	FFmpegPath string  `toml:"ffmpeg_path"`
	FPS        float64 `toml:"fps"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	CodecTag   string  `toml:"codec_tag"`
}

// FaceConfig selects the face detection/encoding backend.
type FaceConfig struct {
	Type       string   `toml:"type"`                  // "http" (default) or "thumbnail"
	ServiceURL string   `toml:"service_url,omitempty"` // only used for type=http
	Timeout    Duration `toml:"timeout,omitempty"`
	Tolerance  float64  `toml:"tolerance"` // max Euclidean distance counted as a match
}

// TimeConfig configures the clock check performed before each login.
type TimeConfig struct {
	Type     string   `toml:"type"` // "ntp" (default) or "none"
	Server   string   `toml:"server,omitempty"`
	MaxDrift Duration `toml:"max_drift"`
	Timeout  Duration `toml:"timeout,omitempty"`
}

// CaptureConfig tunes capture sessions.
type CaptureConfig struct {
	EnrollDuration Duration `toml:"enroll_duration"`
}

// ArchiveConfig selects where clips are stored.
type ArchiveConfig struct {
	Type string `toml:"type"` // "filesystem" (default) or "memory"
}

// LedgerConfig selects the attendance ledger backend.
type LedgerConfig struct {
	Type            string `toml:"type"`             // "xlsx" (default) or "memory"
	DirectionSource string `toml:"direction_source"` // "archive" (default) or "ledger"
}

// MetricsConfig configures the prometheus listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `toml:"addr,omitempty"`
}

// ReplicationConfig configures off-station copies of clips and ledgers.
type ReplicationConfig struct {
	Enabled    bool             `toml:"enabled"`
	Staging    StagingConfig    `toml:"staging"`
	Vault      VaultConfig      `toml:"vault"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// StagingConfig represents configuration for the replication queue.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StagingConfig struct {
	Type       string `toml:"type"`                  // "memory" or "filesystem"
	StagingDir string `toml:"staging_dir,omitempty"` // only used for type=filesystem
	MaxSize    int64  `toml:"max_size,omitempty"`    // bytes; defaults to 512MB
}

// VaultConfig represents configuration for a replica backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3").
	// S3Endpoint selects an S3-compatible service; path-style addressing is used when set.
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// EncryptionConfig holds the age key pair used to encrypt replicas.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age", "test", or "none" (default)
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// NewConfig creates a new Config with the provided values and defaults matching
// a single webcam station with a local face service.
func NewConfig(stationID, baseDir string) *Config {
	return &Config{
		StationID: stationID,
		BaseDir:   baseDir,
		DBDir:     filepath.Join(baseDir, "db"),
		LogDir:    filepath.Join(baseDir, "log"),
		Camera: CameraConfig{
			Type:         "ffmpeg",
			Device:       "/dev/video0",
			InputFormat:  "v4l2",
			PollInterval: Duration{20 * time.Millisecond},
		},
		Video: VideoConfig{
			FFmpegPath: "ffmpeg",
			FPS:        20,
			Width:      640,
			Height:     480,
			CodecTag:   "mp4v",
		},
		Face: FaceConfig{
			Type:       "http",
			ServiceURL: "http://localhost:8000",
			Timeout:    Duration{30 * time.Second},
			Tolerance:  0.6,
		},
		Time: TimeConfig{
			Type:     "ntp",
			Server:   "pool.ntp.org",
			MaxDrift: Duration{60 * time.Second},
			Timeout:  Duration{5 * time.Second},
		},
		Capture: CaptureConfig{EnrollDuration: Duration{30 * time.Second}},
		Archive: ArchiveConfig{Type: "filesystem"},
		Ledger:  LedgerConfig{Type: "xlsx", DirectionSource: "archive"},
		Replication: ReplicationConfig{
			Staging: StagingConfig{Type: "filesystem", StagingDir: filepath.Join(baseDir, "staging")},
			Vault:   VaultConfig{Type: "filesystem", Name: "replica", FSVaultRoot: filepath.Join(baseDir, "replica")},
			Encryption: EncryptionConfig{
				Type:           "none",
				PublicKeyPath:  filepath.Join(baseDir, "keys", "kiosk.pub"),
				PrivateKeyPath: filepath.Join(baseDir, "keys", "kiosk.key"),
			},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
