package mpesa

import (
	"log"
	"os"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	// Public Daraja sandbox defaults, used when no merchant credentials are configured.
	defaultShortCode = "174379"
	defaultPasskey   = "bfb279f9aa9bdbcf158e97dd71a467cd2e0c893059b10f78e6b72ada1ed2c919"
)

// Config carries the Daraja API credentials and environment selection. All
// values come from the environment; BaseURL is normally derived from
// Environment and only set directly in tests.
type Config struct {
	ConsumerKey     string
	ConsumerSecret  string
	ShortCode       string
	Passkey         string
	Environment     string
	CallbackBaseURL string
	BaseURL         string
	TestMode        bool
}

// LoadConfig reads the M-Pesa configuration from the environment. Test mode is
// enabled explicitly via MPESA_TEST_MODE or implicitly when no consumer
// credentials are present, so the rest of the system can run without live
// payment-provider access.
func LoadConfig() Config {
	cfg := Config{
		ConsumerKey:     os.Getenv("MPESA_CONSUMER_KEY"),
		ConsumerSecret:  os.Getenv("MPESA_CONSUMER_SECRET"),
		ShortCode:       os.Getenv("MPESA_BUSINESS_SHORTCODE"),
		Passkey:         os.Getenv("MPESA_PASSKEY"),
		Environment:     os.Getenv("MPESA_ENVIRONMENT"),
		CallbackBaseURL: os.Getenv("CALLBACK_BASE_URL"),
	}

	if cfg.ShortCode == "" {
		cfg.ShortCode = defaultShortCode
	}
	if cfg.Passkey == "" {
		cfg.Passkey = defaultPasskey
	}
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}
	if cfg.CallbackBaseURL == "" {
		cfg.CallbackBaseURL = "http://localhost:8080"
	}

	cfg.TestMode = os.Getenv("MPESA_TEST_MODE") == "true" ||
		cfg.ConsumerKey == "" || cfg.ConsumerSecret == ""

	log.Printf("M-Pesa configuration: environment=%s test_mode=%t shortcode=%s",
		cfg.Environment, cfg.TestMode, cfg.ShortCode)

	return cfg
}

func (c Config) apiBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Environment == "production" {
		return productionBaseURL
	}
	return sandboxBaseURL
}

func (c Config) callbackURL() string {
	return c.CallbackBaseURL + "/api/payments/callback"
}
