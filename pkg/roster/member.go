package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-memberforms/pkg/kennel"
)

// Member is a stored member record as returned by the member API. Nested
// groups such as "discord" or "ethics_form" are kept as maps.
type Member map[string]any

// Status labels shown next to a member.
const (
	StatusAdministrator = "Administrator"
	StatusLabMonitor    = "CyberLab Monitor"
	StatusOperations    = "Operations Member"
	StatusFullMember    = "Dues-Paying Member"
	StatusNeedsDues     = "Needs Dues Payment"
	StatusNeedsEthics   = "Needs Ethics Form"
	StatusAttendee      = "Attendee"
)

var unsafeIDChars = regexp.MustCompile(`[^\w-]`)

// NormalizeID strips everything but word characters and dashes, then
// requires a UUID and returns its canonical lowercase form.
func NormalizeID(raw string) (string, error) {
	cleaned := unsafeIDChars.ReplaceAllString(strings.TrimSpace(raw), "")
	parsed, err := uuid.Parse(cleaned)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return parsed.String(), nil
}

// ID returns the member identifier, or "" when unset.
func (m Member) ID() string {
	id, _ := m["id"].(string)
	return id
}

// Name joins first name and surname.
func (m Member) Name() string {
	return strings.TrimSpace(m.text("first_name") + " " + m.text("surname"))
}

// Prefill returns the record in the shape kennel.Build consumes. The
// returned value shares nested maps with the member; callers must not
// mutate it.
func (m Member) Prefill() kennel.Prefill {
	return kennel.Prefill(m)
}

// Status derives the membership label from the record flags.
func (m Member) Status() string {
	switch {
	case m.flag("sudo"):
		return StatusAdministrator
	case m.signed("cyberlab_monitor"):
		return StatusLabMonitor
	case m.text("ops_email") != "":
		return StatusOperations
	case m.flag("is_full_member"):
		return StatusFullMember
	case !m.flag("did_pay_dues"):
		return StatusNeedsDues
	case !m.signed("ethics_form"):
		return StatusNeedsEthics
	default:
		return StatusAttendee
	}
}

func (m Member) text(key string) string {
	value, ok := kennel.Prefill(m).Lookup(key)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func (m Member) flag(key string) bool {
	value, _ := m[key].(bool)
	return value
}

// signed reports whether group.signtime holds a timestamp. Zero and -1 mark
// unsigned forms.
func (m Member) signed(group string) bool {
	raw := m.text(group + ".signtime")
	if raw == "" {
		return false
	}
	stamp, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false
	}
	return stamp > 0
}

func (m Member) clone() Member {
	out := make(Member, len(m))
	for key, value := range m {
		if nested, ok := value.(map[string]any); ok {
			out[key] = map[string]any(Member(nested).clone())
			continue
		}
		out[key] = value
	}
	return out
}
