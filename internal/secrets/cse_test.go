package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"leadhunt/internal/config"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveOrder(t *testing.T) {
	keyring.MockInit()

	cfg := config.Default()
	cfg.Search.CX = "engine1"
	cfg.Search.APIKey = "from-config"

	// config plaintext when nothing else is set
	got, err := resolve(cfg, env(nil))
	if err != nil || got.APIKey != "from-config" || got.CX != "engine1" {
		t.Fatalf("config fallback: %+v %v", got, err)
	}

	// keychain beats config
	if err := SetAPIKey("engine1", "from-keychain"); err != nil {
		t.Fatal(err)
	}
	got, err = resolve(cfg, env(nil))
	if err != nil || got.APIKey != "from-keychain" {
		t.Fatalf("keychain: %+v %v", got, err)
	}

	// env beats both
	got, err = resolve(cfg, env(map[string]string{EnvAPIKey: "from-env", EnvCX: "engine2"}))
	if err != nil || got.APIKey != "from-env" || got.CX != "engine2" {
		t.Fatalf("env: %+v %v", got, err)
	}

	// env cx selects the matching keychain entry
	if err := SetAPIKey("engine2", "k2"); err != nil {
		t.Fatal(err)
	}
	got, err = resolve(cfg, env(map[string]string{EnvCX: "engine2"}))
	if err != nil || got.APIKey != "k2" {
		t.Fatalf("env cx: %+v %v", got, err)
	}
}

func TestResolveMissing(t *testing.T) {
	keyring.MockInit()

	cfg := config.Default()
	cfg.Search.CX = "nokey"
	_, err := resolve(cfg, env(nil))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("want ErrMissingCredentials, got %v", err)
	}

	cfg.Search.CX = ""
	cfg.Search.APIKey = "k"
	_, err = resolve(cfg, env(nil))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("missing cx: want ErrMissingCredentials, got %v", err)
	}
}

func TestKeyringRoundTrip(t *testing.T) {
	keyring.MockInit()

	if err := SetAPIKey("", "k"); err == nil {
		t.Fatal("empty cx must be rejected")
	}
	if err := SetAPIKey("cx", " "); err == nil {
		t.Fatal("empty key must be rejected")
	}
	if err := SetAPIKey("cx", "secret"); err != nil {
		t.Fatal(err)
	}
	if k, err := GetAPIKey("cx"); err != nil || k != "secret" {
		t.Fatalf("get: %q %v", k, err)
	}
	if err := DeleteAPIKey("cx"); err != nil {
		t.Fatal(err)
	}
	if _, err := GetAPIKey("cx"); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("after delete: %v", err)
	}
}

func TestSaveCredentials(t *testing.T) {
	keyring.MockInit()

	cfg := config.Default()
	cfg.Search.APIKey = "old-plaintext"
	out, loc, err := SaveCredentials(cfg, " engine9 ", " key9 ")
	if err != nil {
		t.Fatal(err)
	}
	if loc != InKeychain || out.Search.CX != "engine9" || out.Search.APIKey != "" {
		t.Fatalf("loc=%s cfg=%+v", loc, out.Search)
	}
	if k, _ := GetAPIKey("engine9"); k != "key9" {
		t.Fatalf("keychain value = %q", k)
	}

	keyring.MockInitWithError(errors.New("no keychain"))
	out, loc, err = SaveCredentials(cfg, "engine9", "key9")
	if err != nil || loc != InConfig || out.Search.APIKey != "key9" {
		t.Fatalf("fallback: loc=%s cfg=%+v err=%v", loc, out.Search, err)
	}

	if _, _, err := SaveCredentials(cfg, "", "k"); err == nil {
		t.Fatal("empty cx must be rejected")
	}
}
