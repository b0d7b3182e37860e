package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// TokenLength is the number of hex characters kept from the SHA-256 digest.
// 16 hex chars (64 bits) keeps collision probability negligible while staying
// compact enough for the (report_id, user_identifier, vote_type) unique index.
const TokenLength = 16

// Hash pseudonymizes a raw submitter identifier (IP, session id, account id)
// into a stable opaque token. It is deterministic and one-way; callers must
// validate non-empty identifiers upstream.
func Hash(rawIdentifier string) string {
	sum := sha256.Sum256([]byte(rawIdentifier))
	return hex.EncodeToString(sum[:])[:TokenLength]
}
