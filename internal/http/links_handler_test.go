package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"linkpulse/internal/config"
)

func TestShortURL(t *testing.T) {
	dev := &config.Config{Environment: config.Development, Domain: "localhost:3000"}
	assert.Equal(t, "http://localhost:3000/xK9mPq", shortURL(dev, "xK9mPq"))

	prod := &config.Config{Environment: config.Production, Domain: "lnk.example.com"}
	assert.Equal(t, "https://lnk.example.com/xK9mPq", shortURL(prod, "xK9mPq"))
}

func TestIsValidHex(t *testing.T) {
	assert.True(t, isValidHex("#1a2b3c"))
	assert.True(t, isValidHex("#FFFFFF"))
	assert.False(t, isValidHex("1a2b3c"))
	assert.False(t, isValidHex("#1a2b3"))
	assert.False(t, isValidHex("#1a2b3cc"))
	assert.False(t, isValidHex("#ggg000"))
	assert.False(t, isValidHex(""))
}
