package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"apptrack-engine/internal/config"
)

const (
	// KeyringService groups this app's secrets in the OS keychain.
	KeyringService = "apptrack"
)

func GetIMAPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	return "", errors.New("IMAP password not found (set it via the secrets endpoint)")
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"apptrack:imap:%s@%s",
		cfg.Email.Username,
		cfg.Email.IMAPHost,
	)
}
