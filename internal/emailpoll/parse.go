package emailpoll

import (
	"regexp"
	"strings"
)

// Confirmation subjects come in two broad shapes:
//
//	"Your application for Senior Engineer at Acme"
//	"Thank you for applying to Acme [for Senior Engineer]"
var (
	reRoleAt  = regexp.MustCompile(`(?i)(?:application|applying|applied)\s+(?:for|to)\s+(?:the\s+)?(.+?)\s+(?:position\s+|role\s+)?at\s+(.+)$`)
	reCompany = regexp.MustCompile(`(?i)(?:applying|application)\s+to\s+([^!.,]+?)(?:\s+for\s+(.+))?$`)
)

// ParseConfirmation extracts company and role from a confirmation-mail
// subject. Role falls back to "Unknown" when the subject only names the
// company; ok is false when no company could be found.
func ParseConfirmation(subject string) (company, role string, ok bool) {
	s := strings.Join(strings.Fields(subject), " ")
	s = strings.TrimRight(s, "!. ")
	if s == "" {
		return "", "", false
	}

	if m := reRoleAt.FindStringSubmatch(s); m != nil {
		role = strings.TrimSpace(m[1])
		company = strings.TrimSpace(m[2])
	} else if m := reCompany.FindStringSubmatch(s); m != nil {
		company = strings.TrimSpace(m[1])
		role = strings.TrimSpace(m[2])
	}

	if company == "" {
		return "", "", false
	}
	if role == "" {
		role = "Unknown"
	}
	return company, role, true
}

func containsAnyCI(s string, needles []string) bool {
	low := strings.ToLower(s)
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(low, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
