package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveToken(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "url with token param",
			payload: "https://portal.example.edu/attendance/scan?token=abc-123",
			want:    "abc-123",
		},
		{
			name:    "url with token among other params",
			payload: "https://portal.example.edu/attendance/scan?utm_source=qr&token=abc-123",
			want:    "abc-123",
		},
		{
			name:    "url without token param falls through to raw payload",
			payload: "https://portal.example.edu/attendance/scan?session=abc-123",
			want:    "https://portal.example.edu/attendance/scan?session=abc-123",
		},
		{
			name:    "url with empty token param falls through",
			payload: "https://portal.example.edu/attendance/scan?token=",
			want:    "https://portal.example.edu/attendance/scan?token=",
		},
		{
			name:    "raw token",
			payload: "abc-123",
			want:    "abc-123",
		},
		{
			name:    "raw uuid token",
			payload: "0d9fe91c-4a47-4f6a-9a3e-2f8f34a51f88",
			want:    "0d9fe91c-4a47-4f6a-9a3e-2f8f34a51f88",
		},
		{
			name:    "scheme-less string is treated as raw",
			payload: "portal.example.edu/scan?token=abc",
			want:    "portal.example.edu/scan?token=abc",
		},
		{
			name:    "empty payload",
			payload: "",
			want:    "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveToken(tc.payload))
		})
	}
}
