package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   Status
		wantOK bool
	}{
		{"FIRE", StatusFire, true},
		{"fire", StatusFire, true},
		{"FiRe", StatusFire, true},
		{" safe ", StatusSafe, true},
		{"Safe", StatusSafe, true},
		{"", "", false},
		{"smoke", "", false},
		{"FIRE!", "", false},
		{"SAFE SAFE", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseStatus(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFireEventHasLocation(t *testing.T) {
	lat, lon := -6.2, 106.8

	assert.False(t, (&FireEvent{}).HasLocation())
	assert.False(t, (&FireEvent{Latitude: &lat}).HasLocation())
	assert.True(t, (&FireEvent{Latitude: &lat, Longitude: &lon}).HasLocation())
}

func TestUserRoles(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, ValidRole("user"))
	assert.False(t, ValidRole("superuser"))
}
