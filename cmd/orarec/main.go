package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/ramzyrsr/orarec"
	"github.com/rs/zerolog"
)

type config struct {
	Server   string
	Port     int
	User     string
	Password string
	Service  string
	Wallet   string
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := loadConfig()
	runDemo(func() (orarec.Connector, error) { return connect(cfg, &log) }, &log)
}

func connect(cfg config, log *zerolog.Logger) (orarec.Connector, error) {
	options := map[string]string{}
	if dir := walletDir(cfg); dir != "" {
		log.Info().Msgf("+++ Using client wallet at [%v]", dir)
		options["wallet"] = dir
	}
	return orarec.NewConnectionWithParams(cfg.Server, cfg.Port, cfg.User, cfg.Password,
		cfg.Service, options, nil, "rec-demo", log)
}

func loadConfig() config {
	return config{
		Server:   envOr("ORAREC_SERVER", "localhost"),
		Port:     envIntOr("ORAREC_PORT", 1521),
		User:     envOr("ORAREC_USER", "scott"),
		Password: envOr("ORAREC_PASSWORD", "tiger"),
		Service:  envOr("ORAREC_SERVICE", "XEPDB1"),
		Wallet:   os.Getenv("ORAREC_WALLET"),
	}
}

// walletDir probes the configured wallet directory and then a well-known
// per-platform location, returning empty when nothing is present so the
// connection proceeds without one
func walletDir(cfg config) string {
	candidates := []string{cfg.Wallet}
	if runtime.GOOS == "darwin" {
		candidates = append(candidates, filepath.Join(os.Getenv("HOME"), "Oracle", "wallet"))
	} else {
		candidates = append(candidates, "/opt/oracle/wallet")
	}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return dir
		}
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
