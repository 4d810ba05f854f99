package buildCFG

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"edevents/internal/auth"
)

type ServerConfig struct {
	Port string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) *ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return &ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("db.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("db.master_dsn is required")
	}

	slaveDSNs := cfg.GetStringSlice("db.slave_dsns")

	maxOpen := cfg.GetInt("db.max_open_conns")
	if maxOpen <= 0 {
		maxOpen = 20
	}
	maxIdle := cfg.GetInt("db.max_idle_conns")
	if maxIdle <= 0 {
		maxIdle = 10
	}
	lifetime := cfg.GetInt("db.conn_max_lifetime_seconds")
	if lifetime <= 0 {
		lifetime = 300
	}

	opts := &dbpg.Options{
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: time.Duration(lifetime) * time.Second,
	}

	log.Info().
		Int("max_open_conns", maxOpen).
		Int("max_idle_conns", maxIdle).
		Msg("DB pool configured")

	return masterDSN, slaveDSNs, opts, nil
}

func BuildAuthConfig(cfg *config.Config, log *zerolog.Logger) (auth.Config, error) {
	out := auth.Config{
		ClientID:          cfg.GetString("auth.client_id"),
		ClientSecret:      cfg.GetString("auth.client_secret"),
		AuthURL:           cfg.GetString("auth.auth_url"),
		TokenURL:          cfg.GetString("auth.token_url"),
		UserInfoURL:       cfg.GetString("auth.userinfo_url"),
		RedirectURL:       cfg.GetString("auth.redirect_url"),
		SessionSecret:     cfg.GetString("auth.session_secret"),
		JWTSecret:         cfg.GetString("auth.jwt_secret"),
		PostLoginRedirect: cfg.GetString("auth.post_login_redirect"),
	}

	if out.ClientID == "" || out.ClientSecret == "" {
		return auth.Config{}, fmt.Errorf("auth.client_id and auth.client_secret are required")
	}
	if out.AuthURL == "" || out.TokenURL == "" || out.UserInfoURL == "" {
		return auth.Config{}, fmt.Errorf("auth provider endpoints are required")
	}
	if out.SessionSecret == "" || out.JWTSecret == "" {
		return auth.Config{}, fmt.Errorf("auth.session_secret and auth.jwt_secret are required")
	}
	if out.PostLoginRedirect == "" {
		out.PostLoginRedirect = "/"
	}

	log.Info().Str("auth_url", out.AuthURL).Msg("access gate configured")
	return out, nil
}

func BuildPhoneRegion(cfg *config.Config) string {
	region := cfg.GetString("phone.default_region")
	if region == "" {
		region = "ZA"
	}
	return region
}
