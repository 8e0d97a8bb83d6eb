package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatFunc checks a string against a format. A nil error means valid.
type FormatFunc func(s string) error

var (
	hostnameLabel = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
	fullDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	fullTime      = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?([Zz]|[+-]\d{2}:\d{2})$`)
	uriTemplate   = regexp.MustCompile(`^([^{}]|\{[^{}]+\})*$`)
	relPointer    = regexp.MustCompile(`^(0|[1-9][0-9]*)(#|(/([^/~]|~[01])*)*)$`)
)

func defaultFormats() map[string]FormatFunc {
	return map[string]FormatFunc{
		"date-time":             checkDateTime,
		"date":                  checkDate,
		"time":                  checkTime,
		"email":                 checkEmail,
		"idn-email":             checkEmail,
		"hostname":              checkHostname,
		"idn-hostname":          checkIDNHostname,
		"ipv4":                  checkIPv4,
		"ipv6":                  checkIPv6,
		"uri":                   checkURI,
		"iri":                   checkURI,
		"uri-reference":         checkURIReference,
		"iri-reference":         checkURIReference,
		"uri-template":          matchFormat(uriTemplate, "uri-template"),
		"json-pointer":          checkJSONPointer,
		"relative-json-pointer": matchFormat(relPointer, "relative-json-pointer"),
		"regex":                 checkRegex,
		"uuid":                  checkUUID,
	}
}

// parseRFC3339 accepts RFC 3339 timestamps with optional fractional seconds.
func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func checkDateTime(s string) error {
	_, err := parseRFC3339(s)
	return err
}

func checkDate(s string) error {
	if !fullDate.MatchString(s) {
		return errors.New("expected YYYY-MM-DD")
	}
	_, err := time.Parse(time.DateOnly, s)
	return err
}

func checkTime(s string) error {
	if !fullTime.MatchString(s) {
		return errors.New("expected HH:MM:SS with offset")
	}
	return checkDateTime("1970-01-01T" + s)
}

func checkEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return err
	}
	if addr.Address != s {
		return errors.New("display names are not allowed")
	}
	return nil
}

func checkHostname(s string) error {
	s = strings.TrimSuffix(s, ".")
	if s == "" || len(s) > 253 {
		return errors.New("invalid hostname length")
	}
	for _, label := range strings.Split(s, ".") {
		if !hostnameLabel.MatchString(label) {
			return fmt.Errorf("invalid hostname label %q", label)
		}
	}
	return nil
}

// checkIDNHostname accepts non-ASCII labels without punycode validation.
func checkIDNHostname(s string) error {
	if s == "" || strings.ContainsAny(s, " \t\r\n/:@") {
		return errors.New("invalid hostname")
	}
	return nil
}

func checkIPv4(s string) error {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return err
	}
	if !a.Is4() {
		return errors.New("not an IPv4 address")
	}
	return nil
}

func checkIPv6(s string) error {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return err
	}
	if !a.Is6() || a.Zone() != "" {
		return errors.New("not an IPv6 address")
	}
	return nil
}

func checkURI(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return errors.New("uri must be absolute")
	}
	return nil
}

func checkURIReference(s string) error {
	_, err := url.Parse(s)
	return err
}

func checkJSONPointer(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "/") {
		return errors.New("json pointer must start with /")
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '~' && (i+1 >= len(s) || (s[i+1] != '0' && s[i+1] != '1')) {
			return errors.New("invalid ~ escape")
		}
	}
	return nil
}

func checkRegex(s string) error {
	_, err := regexp.Compile(s)
	return err
}

func checkUUID(s string) error {
	if len(s) != 36 {
		return errors.New("uuid must be in canonical 8-4-4-4-12 form")
	}
	_, err := uuid.Parse(s)
	return err
}

func matchFormat(re *regexp.Regexp, name string) FormatFunc {
	return func(s string) error {
		if !re.MatchString(s) {
			return fmt.Errorf("invalid %s", name)
		}
		return nil
	}
}
