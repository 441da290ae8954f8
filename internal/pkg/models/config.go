package models

// Config represents application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NSQ       NSQConfig
	JWT       JWTConfig
	Emergency EmergencyConfig
	SMTP      SMTPConfig
	Termii    TermiiConfig
	Twilio    TwilioConfig
	FCM       FCMConfig
	Logger    LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NSQConfig contains NSQ connection configuration
type NSQConfig struct {
	NSQDAddress      string
	LookupdAddresses []string
	MaxAttempts      int
	Concurrency      int
}

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// EmergencyConfig contains dispatch-specific configuration
type EmergencyConfig struct {
	MaxResponders     int      // maximum responders selected per emergency
	RateLimitSeconds  int      // minimum interval between creations per user
	UrbanRadiusKm     float64  // default search radius per location class
	SemiUrbanRadiusKm float64
	RuralRadiusKm     float64
	AvgSpeedKmh       float64  // assumed responder travel speed for ETA
	AdminPhones       []string // fallback contacts when no responder is in range
}

// SMTPConfig contains email channel configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// TermiiConfig contains the primary SMS provider configuration
type TermiiConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
}

// TwilioConfig contains the secondary SMS / WhatsApp provider configuration
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	SenderPhone    string
	WhatsAppNumber string // e.g. "whatsapp:+1415..."
}

// FCMConfig contains push notification configuration
type FCMConfig struct {
	CredentialsFile string
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}
