package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name  string
		pwd   string
		attrs []string
		want  string
	}{
		{name: "too short", pwd: "Ab1!", want: pwdMinLenText},
		{name: "whitespace", pwd: "Abc 1234!x", want: pwdNoSpaceText},
		{name: "all numeric", pwd: "1234567890", want: pwdNotAllNumText},
		{name: "no special", pwd: "Abcdefgh12", want: pwdComplexityText},
		{name: "no upper", pwd: "abcdefg1!", want: pwdComplexityText},
		{name: "similar to username", pwd: "Abdullah1!", attrs: []string{"Abdullah", "abdullah1", ""}, want: pwdAttrSimText},
		{name: "ok", pwd: "Kr1tik@l-Pa55", attrs: []string{"Ahmad", "ahmad", "ahmad@test.ilm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword(tt.pwd, tt.attrs...))
		})
	}
}

func TestCheckPassword_common(t *testing.T) {
	LoadCommonPasswords()
	if len(commonPasswords) == 0 {
		t.Skip("common passwords list not embedded")
	}
	assert.Equal(t, pwdNoCommonText, CheckPassword("P@ssw0rd"))
}
