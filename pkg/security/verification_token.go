package security

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MakeVerificationToken returns a new random e-mail verification token
func MakeVerificationToken() string {
	return uuid.NewString()
}

// GravatarURL derives the default avatar of an e-mail address. Gravatar
// identifies addresses by the md5 of the trimmed, lower-cased address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=250&d=identicon", hex.EncodeToString(sum[:]))
}
