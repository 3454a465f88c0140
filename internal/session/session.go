// Package session holds the shared host-session state: account identity,
// base URL, and the session cookie the feed fetcher authenticates with.
// Cookies live in the OS keyring, never on disk.
package session

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringService namespaces quickbar entries in the OS keyring.
const keyringService = "quickbar"

// State is the coordination state shared by the reconciliation engine and
// the CLI surface. It has one writer (the bootstrap sequence) and many
// readers; nothing mutates it after Load returns.
type State struct {
	// Email identifies the host account; also the keyring username.
	Email string
	// BaseURL is origin plus base path, always with a trailing slash.
	BaseURL string
	// Cookie is the host session cookie header value, empty when the user
	// has not stored one.
	Cookie string
}

// Load assembles the shared state for an account. A missing cookie is not
// an error; the fetcher simply runs unauthenticated and degrades.
func Load(email, baseURL string) State {
	st := State{
		Email:   email,
		BaseURL: normalizeBaseURL(baseURL),
	}
	if email == "" {
		return st
	}
	if cookie, err := keyring.Get(keyringService, email); err == nil {
		st.Cookie = cookie
	}
	return st
}

// SaveCookie stores the session cookie for an account in the OS keyring.
func SaveCookie(email, cookie string) error {
	if email == "" {
		return fmt.Errorf("email is required to store a session cookie")
	}
	if err := keyring.Set(keyringService, email, cookie); err != nil {
		return fmt.Errorf("failed to store session cookie: %w", err)
	}
	return nil
}

// DeleteCookie removes a stored session cookie. Deleting a cookie that was
// never stored is not an error.
func DeleteCookie(email string) error {
	err := keyring.Delete(keyringService, email)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete session cookie: %w", err)
	}
	return nil
}

// HasCookie reports whether a session cookie is stored for the account.
func HasCookie(email string) bool {
	_, err := keyring.Get(keyringService, email)
	return err == nil
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return u
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}
