package emailpoll

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"

	"apptrack-engine/internal/config"
	"apptrack-engine/internal/domain"
	"apptrack-engine/internal/gateway"
	"apptrack-engine/internal/secrets"
)

// Poller turns application-confirmation emails into Applied records.
type Poller struct {
	Gateway *gateway.Gateway
}

// RunOnce scans UNSEEN mail, but only subjects matching
// cfg.Email.SearchSubjectAny (when set). Recognized confirmations become
// records deduped by UID, then the mail is marked \Seen.
func (p *Poller) RunOnce(cfg config.Config) (added int, err error) {
	if p.Gateway == nil {
		return 0, errors.New("gateway is nil")
	}
	if !cfg.Email.Enabled {
		return 0, nil
	}
	if cfg.Email.IMAPHost == "" || cfg.Email.Username == "" {
		return 0, errors.New("email enabled but missing imap_host/username")
	}

	password, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
	if err != nil {
		return 0, err
	}

	addr := cfg.Email.IMAPHost
	if cfg.Email.IMAPPort != 0 && !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, cfg.Email.IMAPPort)
	} else if !strings.Contains(addr, ":") {
		addr += ":993"
	}

	mailbox := cfg.Email.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	c, err := DialAndLogin(ctx, addr, cfg.Email.Username, password)
	if err != nil {
		return 0, err
	}
	defer LogoutAndClose(c)

	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return 0, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	msgs, err := FetchUnseen(ctx, c, 500)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	processed := make([]imap.UID, 0, len(msgs))

	for _, m := range msgs {
		processed = append(processed, m.UID)

		if len(cfg.Email.SearchSubjectAny) > 0 && !containsAnyCI(m.Subject, cfg.Email.SearchSubjectAny) {
			continue
		}

		company, role, ok := ParseConfirmation(m.Subject)
		if !ok {
			log.Printf("[email] skipping unrecognized subject %q", m.Subject)
			continue
		}

		date := m.Date
		if date.IsZero() {
			date = time.Now()
		}

		rec := domain.Application{
			Company:     company,
			Role:        role,
			DateApplied: date.Format(domain.DateLayout),
			Status:      domain.StatusApplied,
			Notes:       "Auto-created from email: " + m.Subject,
			SourceID:    fmt.Sprintf("imap:%s:%d", cfg.Email.Username, m.UID),
		}

		wasNew, err := p.Gateway.AddFromSource(ctx, rec)
		if err != nil {
			log.Printf("[email] insert failed uid=%d: %v", m.UID, err)
			continue
		}
		if wasNew {
			added++
		}
	}

	if err := MarkSeen(c, processed); err != nil {
		log.Printf("[email] mark seen: %v", err)
	}

	return added, nil
}
