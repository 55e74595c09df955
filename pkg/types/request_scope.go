package types

import "strings"

// RequestScope carries the identity of one mobile-client request: which
// company and branch the user operates in, who they are, and the raw bearer
// token to forward upstream. It is threaded explicitly into every service
// call instead of being read from ambient state.
type RequestScope struct {
	CompanyID string
	BranchID  string
	UserID    string
	SessionID string
	Token     string
}

// Valid reports whether the scope carries the identifiers required to call
// the upstream ERP.
func (s RequestScope) Valid() bool {
	return strings.TrimSpace(s.CompanyID) != "" &&
		strings.TrimSpace(s.BranchID) != "" &&
		strings.TrimSpace(s.UserID) != ""
}

// CacheKeyPart returns the scope fragment used to namespace cache entries so
// companies never observe each other's cached lookups.
func (s RequestScope) CacheKeyPart() string {
	return s.CompanyID + ":" + s.BranchID
}
