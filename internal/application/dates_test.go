package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMonth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		locale string
		want   string
	}{
		{name: "french", key: "2025-03", locale: "fr_FR", want: "mars 2025"},
		{name: "english", key: "2025-03", locale: "en_US", want: "March 2025"},
		{name: "unsupported locale falls back to default", key: "2025-03", locale: "xx_XX", want: "mars 2025"},
		{name: "malformed key returned raw", key: "March", locale: "en_US", want: "March"},
		{name: "empty key returned raw", key: "", locale: "en_US", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMonth(tt.key, tt.locale))
		})
	}
}

func TestIsSupportedLocale(t *testing.T) {
	assert.True(t, IsSupportedLocale("fr_FR"))
	assert.True(t, IsSupportedLocale("en_US"))
	assert.False(t, IsSupportedLocale("klingon"))
}
