package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a cleaned-up copy plus everything wrong
// or suspicious with it. Warnings never block a save.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Polling.EmailSeconds <= 0 {
		res.addErr("polling.email_seconds must be > 0")
	} else if out.Polling.EmailSeconds < 30 {
		res.addWarn("polling.email_seconds is very low (%d) and may trip IMAP rate limits.", out.Polling.EmailSeconds)
	}
	if out.Polling.CheckpointSeconds <= 0 {
		res.addErr("polling.checkpoint_seconds must be > 0")
	}

	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; the poller may create nothing.")
		}
	}

	if out.Autofill.Enabled {
		if out.Autofill.ReqPerSec <= 0 {
			res.addErr("autofill.req_per_sec must be > 0 when autofill.enabled=true")
		}
		if out.Autofill.Burst <= 0 {
			res.addErr("autofill.burst must be > 0 when autofill.enabled=true")
		}
	}

	if out.API.RatePerSec < 0 {
		res.addErr("api.rate_per_sec must be >= 0 (0 disables the limiter)")
	}
	if out.API.RatePerSec > 0 && out.API.Burst <= 0 {
		res.addErr("api.burst must be > 0 when api.rate_per_sec is set")
	}

	return out, res
}
