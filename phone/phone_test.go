package phone_test

import (
	"testing"

	"github.com/brightsms/momotracker/phone"
	"github.com/stretchr/testify/assert"
)

func Test_Normalize(t *testing.T) {
	type Test struct {
		Name   string
		Raw    string
		Expect string
		Err    error
	}
	tests := []Test{
		{Name: "AlreadyCanonical", Raw: "+256700000000", Expect: "+256700000000"},
		{Name: "DoubleZeroPrefix", Raw: "00256700000000", Expect: "+256700000000"},
		{Name: "BareWithCountryCode", Raw: "256700000000", Expect: "+256700000000"},
		{Name: "Spaces", Raw: "+256 700 000 000", Expect: "+256700000000"},
		{Name: "Punctuation", Raw: "+256-(700)-000.000", Expect: "+256700000000"},
		{Name: "Empty", Raw: "", Err: phone.ErrEmpty},
		{Name: "OnlyPlus", Raw: "+", Err: phone.ErrEmpty},
		{Name: "Letters", Raw: "+2567abc00000", Err: phone.ErrBadCharacter},
		{Name: "LocalFormat", Raw: "0700000000", Err: phone.ErrNotCanonical},
		{Name: "TooShort", Raw: "+25670", Err: phone.ErrBadLength},
		{Name: "TooLong", Raw: "+2567000000000000000", Err: phone.ErrBadLength},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			assertions := assert.New(t)

			normalized, err := phone.Normalize(test.Raw)
			if test.Err != nil {
				assertions.ErrorIs(err, test.Err)
				return
			}
			assertions.Nil(err, "failed to normalize")
			assertions.Equal(test.Expect, normalized)
		})
	}
}
