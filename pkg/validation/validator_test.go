package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func TestPasswordRule(t *testing.T) {
	Init()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"minimum length", "red123", true},
		{"longer", "correct horse battery", true},
		{"too short", "red1", false},
		{"contains password", "mypassword1", false},
		{"contains password mixed case", "MyPassWord1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&credentials{Email: "a@b.com", Password: tt.password})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	Init()

	err := Validate(&credentials{Email: "not-an-email", Password: "red123"})
	require.Error(t, err)

	details := ToDetails(err)
	require.Contains(t, details, "email")
	assert.Equal(t, "must be a valid email", details["email"])
}

func TestToDetailsNil(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}
