package domain

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"` // stored as given, never serialized
}

// EmailMatch selects how GetUserByEmail compares addresses.
type EmailMatch int

const (
	EmailExact           EmailMatch = iota // byte-for-byte, case-sensitive
	EmailCaseInsensitive                   // lower(email) = lower(input)
)

// ParseEmailMatch maps a config value to an EmailMatch. Unknown values fall back to EmailExact.
func ParseEmailMatch(s string) EmailMatch {
	switch s {
	case "insensitive", "case_insensitive", "fold":
		return EmailCaseInsensitive
	}
	return EmailExact
}

func (m EmailMatch) String() string {
	if m == EmailCaseInsensitive {
		return "insensitive"
	}
	return "exact"
}
