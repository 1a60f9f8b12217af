package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/bgentry/go-netrc/netrc"
)

const (
	EnvUserID   = "ANNOFAB_USER_ID"
	EnvPassword = "ANNOFAB_PASSWORD"
	EnvNetrc    = "NETRC"
)

var ErrNoCredentials = errors.New("no AnnoFab credentials: add a .netrc entry or set ANNOFAB_USER_ID and ANNOFAB_PASSWORD")

type Credentials struct {
	UserID   string
	Password string
	// Source is "netrc" or "env".
	Source string
}

func NetrcPath(getenv func(string) string) (string, error) {
	if p := getenv(EnvNetrc); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".netrc"), nil
}

// ResolveCredentials looks up the endpoint host in .netrc first and falls back
// to the environment. A missing .netrc is not an error; a malformed one is.
func ResolveCredentials(endpointURL string, getenv func(string) string) (Credentials, error) {
	host := "annofab.com"
	if endpointURL != "" {
		u, err := url.Parse(endpointURL)
		if err != nil {
			return Credentials{}, fmt.Errorf("parse endpoint url: %w", err)
		}
		if h := u.Hostname(); h != "" {
			host = h
		}
	}
	path, err := NetrcPath(getenv)
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			m, err := netrc.FindMachine(path, host)
			if err != nil {
				return Credentials{}, fmt.Errorf("read %s: %w", path, err)
			}
			if m != nil && m.Login != "" && m.Password != "" {
				return Credentials{UserID: m.Login, Password: m.Password, Source: "netrc"}, nil
			}
		}
	}
	userID, password := getenv(EnvUserID), getenv(EnvPassword)
	if userID != "" && password != "" {
		return Credentials{UserID: userID, Password: password, Source: "env"}, nil
	}
	return Credentials{}, ErrNoCredentials
}
