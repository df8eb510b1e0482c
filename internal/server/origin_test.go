package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestWithOrigin(origin string) *http.Request {
	r, _ := http.NewRequest(http.MethodGet, "http://localhost/ws", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestOriginPolicyAllowsConfiguredOrigin(t *testing.T) {
	p := newOriginPolicy([]string{"http://localhost:8080"})

	assert.True(t, p.check(requestWithOrigin("http://localhost:8080")))
	assert.True(t, p.check(requestWithOrigin("HTTP://LOCALHOST:8080")))
}

func TestOriginPolicyBlocksUnknownOrigin(t *testing.T) {
	p := newOriginPolicy([]string{"http://localhost:8080"})

	assert.False(t, p.check(requestWithOrigin("http://evil.example.com")))
	assert.False(t, p.check(requestWithOrigin("")))
	assert.False(t, p.check(requestWithOrigin("not a url")))
}

func TestOriginPolicyWildcardAllowsAll(t *testing.T) {
	p := newOriginPolicy([]string{"*"})

	assert.True(t, p.check(requestWithOrigin("http://anything.example.com")))
	assert.False(t, p.check(requestWithOrigin("")))
}

func TestOriginPolicyIgnoresInvalidConfiguredEntries(t *testing.T) {
	p := newOriginPolicy([]string{"", "   ", "no-scheme", "http://ok.example.com"})

	assert.True(t, p.check(requestWithOrigin("http://ok.example.com")))
	assert.False(t, p.check(requestWithOrigin("http://no-scheme")))
}
