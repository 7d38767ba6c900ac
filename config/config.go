package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Email    EmailConfig
	Payment  PaymentConfig
	Booking  BookingConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port               string
	GinMode            string
	JWTSecret          string
	JWTExpirationHours int
	SiteURL            string
	CORSOrigin         string
	AuthRateLimit      int
	APIRateLimit       int
	FunctionsAPIKey    string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type StorageConfig struct {
	UploadDir     string
	PublicBaseURL string
}

type EmailConfig struct {
	APIKey  string
	BaseURL string
	From    string
}

type PaymentConfig struct {
	StripeSecretKey string
	StripeBaseURL   string
	Currency        string
	CurrencySymbol  string
}

type BookingConfig struct {
	AsapCharge             float64
	DepositRate            float64
	ReservationSlotMinutes int
}

type AdminConfig struct {
	Email    string
	Password string
}

var AppConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("SITE_URL", "http://localhost:5173")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("AUTH_RATE_LIMIT_PER_MINUTE", 5)
	v.SetDefault("API_RATE_LIMIT_PER_SECOND", 50)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "restaurant.db")
	v.SetDefault("UPLOAD_DIR", "public/uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("RESEND_BASE_URL", "https://api.resend.com")
	v.SetDefault("EMAIL_FROM", "Restaurant <bookings@resend.dev>")
	v.SetDefault("STRIPE_BASE_URL", "https://api.stripe.com")
	v.SetDefault("CURRENCY", "inr")
	v.SetDefault("CURRENCY_SYMBOL", "₹")
	v.SetDefault("ASAP_CHARGE", 25)
	v.SetDefault("DEPOSIT_RATE", 0.35)
	v.SetDefault("RESERVATION_SLOT_MINUTES", 120)
	v.SetDefault("ADMIN_EMAIL", "admin@restaurant.local")
}

// LoadConfig reads .env (if any) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Printf("Warning: .env file not found, using process environment")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	AppConfig = &Config{
		Server: ServerConfig{
			Port:               v.GetString("PORT"),
			GinMode:            v.GetString("GIN_MODE"),
			JWTSecret:          v.GetString("JWT_SECRET"),
			JWTExpirationHours: v.GetInt("JWT_EXPIRATION_HOURS"),
			SiteURL:            strings.TrimRight(v.GetString("SITE_URL"), "/"),
			CORSOrigin:         v.GetString("CORS_ORIGIN"),
			AuthRateLimit:      v.GetInt("AUTH_RATE_LIMIT_PER_MINUTE"),
			APIRateLimit:       v.GetInt("API_RATE_LIMIT_PER_SECOND"),
			FunctionsAPIKey:    v.GetString("FUNCTIONS_API_KEY"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("DB_DRIVER"),
			DSN:    v.GetString("DB_DSN"),
		},
		Storage: StorageConfig{
			UploadDir:     v.GetString("UPLOAD_DIR"),
			PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		},
		Email: EmailConfig{
			APIKey:  v.GetString("RESEND_API_KEY"),
			BaseURL: strings.TrimRight(v.GetString("RESEND_BASE_URL"), "/"),
			From:    v.GetString("EMAIL_FROM"),
		},
		Payment: PaymentConfig{
			StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
			StripeBaseURL:   strings.TrimRight(v.GetString("STRIPE_BASE_URL"), "/"),
			Currency:        strings.ToLower(v.GetString("CURRENCY")),
			CurrencySymbol:  v.GetString("CURRENCY_SYMBOL"),
		},
		Booking: BookingConfig{
			AsapCharge:             v.GetFloat64("ASAP_CHARGE"),
			DepositRate:            v.GetFloat64("DEPOSIT_RATE"),
			ReservationSlotMinutes: v.GetInt("RESERVATION_SLOT_MINUTES"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}

	utils.InfoLogger.Printf("Configuration loaded: port=%s db=%s currency=%s",
		AppConfig.Server.Port, AppConfig.Database.Driver, AppConfig.Payment.Currency)
	if AppConfig.Email.APIKey == "" {
		utils.InfoLogger.Warn("RESEND_API_KEY is not set, email functions will fail")
	}
	if AppConfig.Server.FunctionsAPIKey == "" {
		utils.InfoLogger.Warn("FUNCTIONS_API_KEY is not set, /functions endpoints are disabled")
	}
	if AppConfig.Payment.StripeSecretKey == "" {
		utils.InfoLogger.Warn("STRIPE_SECRET_KEY is not set, payment links will fail")
	}
	return AppConfig
}

// InitDB opens the configured database.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	return db, nil
}
