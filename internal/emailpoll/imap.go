package emailpoll

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Message is the slice of an email the poller cares about. Confirmation
// mail is recognized from the envelope alone, so bodies are never fetched.
type Message struct {
	UID     imap.UID
	From    string
	Subject string
	Date    time.Time
}

// DialAndLogin connects over TLS and logs in.
func DialAndLogin(ctx context.Context, addr, username, password string) (*imapclient.Client, error) {
	if addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}

	host := addr
	if i := strings.IndexByte(addr, ':'); i >= 0 {
		host = addr[:i]
	}

	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: host,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}

	return c, nil
}

// FetchUnseen pulls up to max unseen envelopes (by UID), newest first.
func FetchUnseen(ctx context.Context, c *imapclient.Client, max int) ([]Message, error) {
	if c == nil {
		return nil, errors.New("imap client is nil")
	}
	if max <= 0 {
		max = 200
	}

	// ignore mail older than 3 months
	cutoff := time.Now().AddDate(0, -3, 0)

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   cutoff,
	}

	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return []Message{}, nil
	}

	// newest first
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	uidSet := imap.UIDSetNum(uids...)

	fetchOptions := &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
	}

	fetchCmd := c.Fetch(uidSet, fetchOptions)
	defer func() { _ = fetchCmd.Close() }()

	out := make([]Message, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var m Message
		m.UID = buf.UID
		if buf.Envelope != nil {
			m.Subject = buf.Envelope.Subject
			m.Date = buf.Envelope.Date
			m.From = joinAddrs(buf.Envelope.From)
		}
		if m.Date.IsZero() {
			m.Date = buf.InternalDate
		}

		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}

	return out, nil
}

// MarkSeen sets the \Seen flag for a UID set.
func MarkSeen(c *imapclient.Client, uids []imap.UID) error {
	if c == nil {
		return errors.New("imap client is nil")
	}
	if len(uids) == 0 {
		return nil
	}

	set := imap.UIDSetNum(uids...)

	storeFlags := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}

	cmd := c.Store(set, storeFlags, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

// LogoutAndClose logs out then closes the connection.
func LogoutAndClose(c *imapclient.Client) {
	if c == nil {
		return
	}
	_ = c.Logout().Wait()
	_ = c.Close()
}

func joinAddrs(addrs []imap.Address) string {
	if len(addrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := &addrs[i]
		addr := strings.TrimSpace(a.Addr())
		if addr == "" {
			addr = strings.TrimSpace(a.Name)
		}
		if addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}
