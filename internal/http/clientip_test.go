package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstValidIP(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"single address", []string{"203.0.113.5"}, "203.0.113.5"},
		{"first of chain", []string{"203.0.113.5", "10.0.0.1"}, "203.0.113.5"},
		{"skips garbage", []string{"not-an-ip", "198.51.100.7"}, "198.51.100.7"},
		{"strips port", []string{"203.0.113.5:4711"}, "203.0.113.5"},
		{"ipv6", []string{"2001:db8::1"}, "2001:db8::1"},
		{"ipv6 with zone", []string{"fe80::1%eth0"}, "fe80::1"},
		{"whitespace", []string{"  203.0.113.5  "}, "203.0.113.5"},
		{"empty", []string{""}, ""},
		{"all invalid", []string{"", "nope"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstValidIP(tt.values))
		})
	}
}
