package config

import "time"

// Auth configures the PIN-gated admin session.
type Auth struct {
	Pin           string        `env:"AUTH_PIN,required,notEmpty"`
	SessionSecret string        `env:"AUTH_SESSION_SECRET,required,notEmpty"`
	SessionTTL    time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`
	CookieSecure  bool          `env:"AUTH_COOKIE_SECURE" envDefault:"true"`
}

// Hook configures the shared-secret webhook endpoints. An empty key disables them.
type Hook struct {
	SecretKey string `env:"HOOK_SECRET_KEY"`
}
