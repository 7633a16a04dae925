package newsheader

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	StatusMissing = "missing"
	StatusInvalid = "invalid"
)

// Finding is one problem with a header block.
type Finding struct {
	Field  string `json:"field"`
	Status string `json:"status"` // "missing", "invalid"
	Detail string `json:"detail,omitempty"`
}

var (
	// Mandatory article fields, RFC 5536 section 3.1
	requiredFields = []string{"From", "Date", "Message-ID", "Newsgroups", "Subject"}

	messageIDRegex = regexp.MustCompile(`^<[^<>@\s]+@[^<>@\s]+>$`)
)

// Validate reports missing mandatory fields and unparseable From, Date and
// Message-ID values.
func Validate(h Fields) []Finding {
	var results []Finding

	for _, name := range requiredFields {
		if _, exists := h.Get(name); !exists {
			results = append(results, Finding{Field: name, Status: StatusMissing})
		}
	}

	if from, exists := h.Get("from"); exists && !isValidFrom(from) {
		results = append(results, Finding{Field: "From", Status: StatusInvalid, Detail: "Invalid From address format"})
	}
	if date, exists := h.Get("date"); exists && !isValidDate(date) {
		results = append(results, Finding{Field: "Date", Status: StatusInvalid, Detail: "Invalid Date format"})
	}
	if msgID, exists := h.Get("message-id"); exists && !IsValidMessageID(msgID) {
		results = append(results, Finding{Field: "Message-ID", Status: StatusInvalid, Detail: "Invalid Message-ID format"})
	}

	return results
}

func isValidFrom(from string) bool {
	_, err := mail.ParseAddressList(from)
	return err == nil
}

func isValidDate(date string) bool {
	_, err := mail.ParseDate(date)
	return err == nil
}

// IsValidMessageID checks the <local@domain> shape of a Message-ID.
func IsValidMessageID(msgID string) bool {
	return messageIDRegex.MatchString(strings.TrimSpace(msgID))
}
