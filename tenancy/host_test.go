package tenancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubdomainFromHost(t *testing.T) {
	const baseDomain = "oneclass.ac.zw"

	tests := []struct {
		name   string
		host   string
		want   string
		wantOK bool
	}{
		{
			name:   "school on base domain",
			host:   "stmarys.oneclass.ac.zw",
			want:   "stmarys",
			wantOK: true,
		},
		{
			name:   "host is case insensitive",
			host:   "StMarys.OneClass.AC.ZW",
			want:   "stmarys",
			wantOK: true,
		},
		{
			name:   "port is stripped",
			host:   "stmarys.oneclass.ac.zw:8080",
			want:   "stmarys",
			wantOK: true,
		},
		{
			name:   "first label wins on foreign domains",
			host:   "palm-springs-jnr.oneclass.local:3000",
			want:   "palm-springs-jnr",
			wantOK: true,
		},
		{
			name:   "custom school domain with three labels",
			host:   "greenfield.example.com",
			want:   "greenfield",
			wantOK: true,
		},
		{
			name:   "apex domain is not a school",
			host:   "oneclass.ac.zw",
			wantOK: false,
		},
		{
			name:   "apex domain with port",
			host:   "oneclass.ac.zw:443",
			wantOK: false,
		},
		{
			name:   "www is not a school",
			host:   "www.oneclass.ac.zw",
			wantOK: false,
		},
		{
			name:   "localhost has no subdomain",
			host:   "localhost:3000",
			wantOK: false,
		},
		{
			name:   "dotted localhost has no subdomain",
			host:   "stmarys.localhost:3000",
			wantOK: false,
		},
		{
			name:   "IPv4 literal",
			host:   "127.0.0.1:8080",
			wantOK: false,
		},
		{
			name:   "IPv6 literal with port",
			host:   "[::1]:8080",
			wantOK: false,
		},
		{
			name:   "IPv6 literal without port",
			host:   "[::1]",
			wantOK: false,
		},
		{
			name:   "two labels is not enough",
			host:   "example.com",
			wantOK: false,
		},
		{
			name:   "empty host",
			host:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SubdomainFromHost(tt.host, baseDomain)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsLoopbackHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"localhost:3000", true},
		{"app.localhost:3000", true},
		{"127.0.0.1", true},
		{"127.0.0.1:8080", true},
		{"[::1]:8080", true},
		{"stmarys.oneclass.ac.zw", false},
		{"192.168.1.10", false},
		{"example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, isLoopbackHost(tt.host))
		})
	}
}
