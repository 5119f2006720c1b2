package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DataDriverMongo  = "mongo"
	DataDriverMemory = "memory"

	MongoModeLocal = "local"
	MongoModeAtlas = "atlas"

	PasetoKeyLength      = 32
	MinFlashSecretLength = 32
)

// AppConfig menampung semua variabel konfigurasi aplikasi.
type AppConfig struct {
	Port      string `env:"PORT" envDefault:"5000"`
	AdminAddr string `env:"ADMIN_ADDR" envDefault:"127.0.0.1:5001"`
	Env       string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	DataDriver    string `env:"DATA_DRIVER" envDefault:"memory"`
	MongoMode     string `env:"MONGO_MODE" envDefault:"local"`
	MongoURILocal string `env:"MONGO_URI_LOCAL" envDefault:"mongodb://localhost:27017/nstore"`
	MongoURIAtlas string `env:"MONGO_URI_ATLAS"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"nstore"`

	PasetoSecretKey string `env:"PASETO_SECRET_KEY,required"`
	FlashSecret     string `env:"FLASH_SECRET,required"`

	StorageDriver        string `env:"STORAGE_DRIVER" envDefault:"local"`
	CloudinaryURL        string `env:"CLOUDINARY_URL"`
	S3Region             string `env:"S3_REGION"`
	S3Bucket             string `env:"S3_BUCKET"`
	S3PublicBaseURL      string `env:"S3_PUBLIC_BASE_URL"`
	LocalUploadDir       string `env:"LOCAL_UPLOAD_DIR" envDefault:"./data/media"`
	LocalUploadURLPrefix string `env:"LOCAL_UPLOAD_URL_PREFIX" envDefault:"/media"`

	WhatsAppNumber     string   `env:"WHATSAPP_NUMBER" envDefault:"6285363619829"`
	AuthClientID       string   `env:"AUTH_CLIENT_ID" envDefault:"nstore-admin"`
	SessionDoubleCheck bool     `env:"SESSION_DOUBLE_CHECK" envDefault:"false"`
	CORSOrigins        []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	TrustedOrigins     []string `env:"TRUSTED_ORIGINS" envSeparator:","`

	// Hanya dipakai oleh driver auth memory.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@nstore.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"password"`
}

// IsDevelopment bernilai true saat aplikasi berjalan dalam mode development.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// MongoURI memilih URI MongoDB berdasarkan MONGO_MODE.
func (c *AppConfig) MongoURI() string {
	if c.MongoMode == MongoModeAtlas {
		return c.MongoURIAtlas
	}
	return c.MongoURILocal
}

// PublicAddr mengembalikan alamat listener publik.
func (c *AppConfig) PublicAddr() string {
	return ":" + c.Port
}

// Load memuat konfigurasi dari file .env atau environment variables.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate memeriksa kombinasi nilai yang tidak bisa diungkapkan lewat tag.
func (c *AppConfig) Validate() error {
	if len(c.PasetoSecretKey) != PasetoKeyLength {
		return fmt.Errorf("PASETO_SECRET_KEY must be %d characters long, got %d", PasetoKeyLength, len(c.PasetoSecretKey))
	}
	if len(c.FlashSecret) < MinFlashSecretLength {
		return fmt.Errorf("FLASH_SECRET must be at least %d bytes long, got %d", MinFlashSecretLength, len(c.FlashSecret))
	}

	switch c.DataDriver {
	case DataDriverMemory:
	case DataDriverMongo:
		if !slices.Contains([]string{MongoModeLocal, MongoModeAtlas}, c.MongoMode) {
			return fmt.Errorf("unknown MONGO_MODE: %s", c.MongoMode)
		}
		if c.MongoURI() == "" {
			return fmt.Errorf("MONGO_MODE '%s' but its URI is not set", c.MongoMode)
		}
	default:
		return fmt.Errorf("unknown DATA_DRIVER: %s", c.DataDriver)
	}

	switch c.StorageDriver {
	case "local":
		if c.LocalUploadDir == "" {
			return errors.New("LOCAL_UPLOAD_DIR is required for the local storage driver")
		}
	case "cloudinary":
		if c.CloudinaryURL == "" {
			return errors.New("CLOUDINARY_URL is required for the cloudinary storage driver")
		}
	case "s3":
		if c.S3Region == "" || c.S3Bucket == "" || c.S3PublicBaseURL == "" {
			return errors.New("S3_REGION, S3_BUCKET and S3_PUBLIC_BASE_URL are required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER: %s", c.StorageDriver)
	}

	if _, _, err := net.SplitHostPort(c.AdminAddr); err != nil {
		return fmt.Errorf("invalid ADMIN_ADDR %q: %w", c.AdminAddr, err)
	}
	return nil
}
