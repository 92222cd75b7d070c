package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"leadhunt/internal/config"
	"leadhunt/internal/search"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "leadhunt"

	EnvAPIKey = "LEADHUNT_API_KEY"
	EnvCX     = "LEADHUNT_CX"
)

var ErrMissingCredentials = errors.New("search credentials not configured (run `leadhunt setup` or set LEADHUNT_API_KEY and LEADHUNT_CX)")

// CSEKeyringAccount names the keychain entry holding the API key for one engine.
func CSEKeyringAccount(cx string) string {
	return "cse:" + strings.TrimSpace(cx)
}

func GetAPIKey(cx string) (string, error) {
	if strings.TrimSpace(cx) == "" {
		return "", errors.New("search engine id (cx) is empty")
	}
	key, err := keyring.Get(KeyringService, CSEKeyringAccount(cx))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", keyring.ErrNotFound
	}
	return key, nil
}

func SetAPIKey(cx, apiKey string) error {
	if strings.TrimSpace(cx) == "" {
		return errors.New("search engine id (cx) is empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, CSEKeyringAccount(cx), strings.TrimSpace(apiKey))
}

func DeleteAPIKey(cx string) error {
	if strings.TrimSpace(cx) == "" {
		return errors.New("search engine id (cx) is empty")
	}
	return keyring.Delete(KeyringService, CSEKeyringAccount(cx))
}

// Resolve returns the credentials for a run. Environment wins, then the
// keychain, then a plaintext key in the config file.
func Resolve(cfg config.Config) (search.Credentials, error) {
	return resolve(cfg, os.Getenv)
}

func resolve(cfg config.Config, getenv func(string) string) (search.Credentials, error) {
	creds := search.Credentials{
		APIKey: strings.TrimSpace(getenv(EnvAPIKey)),
		CX:     strings.TrimSpace(getenv(EnvCX)),
	}
	if creds.CX == "" {
		creds.CX = strings.TrimSpace(cfg.Search.CX)
	}
	if creds.APIKey == "" && creds.CX != "" {
		// a locked or missing keychain falls through to config
		if key, err := GetAPIKey(creds.CX); err == nil {
			creds.APIKey = key
		}
	}
	if creds.APIKey == "" {
		creds.APIKey = strings.TrimSpace(cfg.Search.APIKey)
	}
	if !creds.Complete() {
		return creds, ErrMissingCredentials
	}
	return creds, nil
}

type Location string

const (
	InKeychain Location = "keychain"
	InConfig   Location = "config"
)

// SaveCredentials stores apiKey in the keychain under cx and returns cfg
// updated to point at that engine. When the keychain is unavailable the key
// is kept in cfg instead; the caller persists cfg either way.
func SaveCredentials(cfg config.Config, cx, apiKey string) (config.Config, Location, error) {
	cx = strings.TrimSpace(cx)
	apiKey = strings.TrimSpace(apiKey)
	if cx == "" {
		return cfg, "", errors.New("search engine id (cx) is empty")
	}
	if apiKey == "" {
		return cfg, "", errors.New("api key is empty")
	}

	cfg.Search.CX = cx
	if err := SetAPIKey(cx, apiKey); err != nil {
		cfg.Search.APIKey = apiKey
		return cfg, InConfig, nil
	}
	cfg.Search.APIKey = ""
	return cfg, InKeychain, nil
}
