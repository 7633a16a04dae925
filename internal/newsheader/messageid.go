package newsheader

import (
	"fmt"

	"github.com/google/uuid"
)

// messageIDSpace namespaces the name-based UUIDs of synthetic Message-IDs.
var messageIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:newsview:message-id"))

// SyntheticMessageID derives a Message-ID for an article that has none. The
// value is a version 5 UUID of the header block, so the same article gets the
// same ID on every read.
func SyntheticMessageID(block []byte, domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.NewSHA1(messageIDSpace, block), domain)
}
