package models

import "strings"

// AuthSession is the single active provider session. Persisted under the
// provider_auth slot; the JSON shape matches what the backend issued.
type AuthSession struct {
	Token    string `json:"token"`
	SiteURL  string `json:"siteUrl"`
	Username string `json:"username"`
}

// Valid reports whether the session can authenticate backend calls.
func (s AuthSession) Valid() bool {
	return strings.TrimSpace(s.Token) != "" && strings.TrimSpace(s.SiteURL) != ""
}
