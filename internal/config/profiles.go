package config

import (
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// applyLocal layers the development overrides onto the base settings.
func applyLocal(s *Settings) error {
	s.Debug = true
	if s.SecretKey == "" {
		s.SecretKey = "insecure-local-dev-key-change-in-production"
	}
	s.AllowedHosts = []string{"localhost", "0.0.0.0", "127.0.0.1", "*"}
	if len(s.CORS.AllowedOrigins) == 0 {
		s.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	s.CORS.AllowCredentials = true
	return nil
}

// applyTest layers the test-run overrides onto the base settings.
// The database becomes an in-memory SQLite instance, email is captured in
// memory, password hashing uses the cheapest bcrypt cost and tasks execute
// eagerly so no broker or worker is needed.
func applyTest(s *Settings) error {
	s.Debug = false
	s.SecretKey = "insecure-test-key-for-testing-only"
	s.AllowedHosts = []string{"localhost", "testserver", "127.0.0.1"}
	s.Database.Driver = "sqlite"
	s.Database.DSN = ":memory:"
	s.Email.Backend = "locmem"
	s.BcryptCost = bcrypt.MinCost
	s.Tasks.Eager = true
	return nil
}

// applyProduction layers the production overrides onto the base settings.
// The secret key and the Redis URL have no fallback here; missing values are
// configuration errors rather than silently insecure defaults.
func applyProduction(s *Settings) error {
	if s.SecretKey == "" {
		return errors.New("SECRET_KEY must be set in production")
	}
	if _, ok := os.LookupEnv("REDIS_URL"); !ok {
		return errors.New("REDIS_URL must be set in production")
	}
	if s.Database.ConnMaxAge == 0 {
		s.Database.ConnMaxAge = 60
	}

	// Hardening defaults flip on in production but stay env-overridable.
	if _, ok := os.LookupEnv("SECURE_SSL_REDIRECT"); !ok {
		s.Security.SSLRedirect = true
	}
	if _, ok := os.LookupEnv("SECURE_HSTS_SECONDS"); !ok {
		s.Security.HSTSSeconds = 518400
	}
	s.Session.CookieName = "__Secure-sessionid"
	s.Session.CookieSecure = true
	s.Session.CSRFCookieName = "__Secure-csrftoken"
	s.Session.CSRFCookieSecure = true

	// Transactional email goes through Mailgun when credentials are present.
	if s.Email.MailgunAPIKey != "" {
		s.Email.Backend = "mailgun"
	}
	return nil
}
