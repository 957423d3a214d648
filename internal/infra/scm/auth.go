// Package scm handles source-host specifics for repository access,
// embedding access tokens into clone URLs per forge convention.
package scm

import (
	"net/url"
	"strings"
)

// Provider represents the SCM provider type.
type Provider string

const (
	ProviderGitHub    Provider = "github"
	ProviderBitbucket Provider = "bitbucket"
	ProviderGeneric   Provider = "generic"
)

// redactedDisplay is what callers show instead of a tokenized URL.
const redactedDisplay = "provided URL with token"

// DetectProvider identifies the forge from the URL host.
func DetectProvider(host string) Provider {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "github.com"):
		return ProviderGitHub
	case strings.Contains(host, "bitbucket.org"):
		return ProviderBitbucket
	default:
		return ProviderGeneric
	}
}

// AuthenticateURL embeds token into rawURL's authority using the convention
// of the detected forge. With an empty token, or a URL that does not parse
// into a scheme and host, the input is returned unchanged; URL
// authentication is best-effort and never fails the scan.
//
// GitHub accepts the token as the username (token@host). Bitbucket requires
// the x-token-auth pseudo-user. Other hosts get the GitHub form, which most
// git servers accept.
func AuthenticateURL(rawURL, token string) string {
	if token == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}

	switch DetectProvider(u.Host) {
	case ProviderBitbucket:
		u.User = url.UserPassword("x-token-auth", token)
	default:
		u.User = url.User(token)
	}

	return u.String()
}

// DisplayURL returns a form of rawURL safe to echo back to callers.
// When a token is in play the URL is replaced wholesale rather than
// rewritten, so a token pasted into the URL itself cannot leak either.
func DisplayURL(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	return redactedDisplay
}
