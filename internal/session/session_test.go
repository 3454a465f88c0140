package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestCookieRoundTrip(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, SaveCookie("me@example.com", "S=abc"))
	assert.True(t, HasCookie("me@example.com"))

	st := Load("me@example.com", "https://mail.example.com/mail/u/0")
	assert.Equal(t, "S=abc", st.Cookie)
	assert.Equal(t, "https://mail.example.com/mail/u/0/", st.BaseURL, "base URL gains a trailing slash")

	require.NoError(t, DeleteCookie("me@example.com"))
	assert.False(t, HasCookie("me@example.com"))
}

func TestDeleteMissingCookieIsNotAnError(t *testing.T) {
	keyring.MockInit()
	assert.NoError(t, DeleteCookie("nobody@example.com"))
}

func TestLoadWithoutEmail(t *testing.T) {
	keyring.MockInit()
	st := Load("", "https://mail.example.com/")
	assert.Empty(t, st.Cookie)
	assert.Equal(t, "https://mail.example.com/", st.BaseURL)
}

func TestSaveCookieRequiresEmail(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, SaveCookie("", "S=abc"))
}
