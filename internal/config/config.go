package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Addr            string
	LogLevel        string
	LogConsole      bool
	BaseURL         string
	RequestTimeout  time.Duration
	CredentialsFile string
	OutputDir       string
	UserAgent       string
	Lang            string
	MaxPixels       int
	ProbeLayer      string
}

func FromEnv() Config {
	return Config{
		Addr:            getenv("ADDR", ":8090"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogConsole:      getbool("LOG_CONSOLE", false),
		BaseURL:         getenv("GEOMET_URL", "https://geo.weather.gc.ca/geomet"),
		RequestTimeout:  getduration("GEOMET_TIMEOUT", 60*time.Second),
		CredentialsFile: getenv("GEOMET_CREDENTIALS", ""),
		OutputDir:       getenv("OUTPUT_DIR", "."),
		UserAgent:       getenv("USER_AGENT", "geomet-fetch/1.0"),
		Lang:            getenv("GEOMET_LANG", ""),
		MaxPixels:       getint("MAX_PIXELS", 2048),
		ProbeLayer:      getenv("PROBE_LAYER", "GDPS.ETA_TT"),
	}
}

// Credentials carry the basic-auth pair GeoMet issues for licensed
// layers. A nil *Credentials means anonymous access.
type Credentials struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type credentialsFile struct {
	Auth Credentials `toml:"auth"`
}

// LoadCredentials reads a TOML file with an [auth] table holding
// username and password. Both fields must be present; a half-filled
// file is an error rather than a silent anonymous fallback.
func LoadCredentials(path string) (*Credentials, error) {
	var f credentialsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}
	if f.Auth.Username == "" || f.Auth.Password == "" {
		return nil, fmt.Errorf("credentials %s: [auth] needs both username and password", path)
	}
	return &f.Auth, nil
}

// ResolveCredentials picks the credential source: the GEOMET_USERNAME /
// GEOMET_PASSWORD pair wins over the credentials file, and no source at
// all resolves to anonymous. Setting only one of the pair is an error.
func ResolveCredentials(cfg Config) (*Credentials, error) {
	user := os.Getenv("GEOMET_USERNAME")
	pass := os.Getenv("GEOMET_PASSWORD")
	switch {
	case user != "" && pass != "":
		return &Credentials{Username: user, Password: pass}, nil
	case user != "" || pass != "":
		return nil, fmt.Errorf("GEOMET_USERNAME and GEOMET_PASSWORD must be set together")
	}
	if cfg.CredentialsFile != "" {
		return LoadCredentials(cfg.CredentialsFile)
	}
	return nil, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
