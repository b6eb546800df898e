package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	testCases := []struct {
		in   string
		want Address
		str  string
	}{
		{in: "osc", want: Address{Node: "osc"}, str: "osc"},
		{in: "split[1]", want: Address{Node: "split", Port: 1}, str: "split[1]"},
		{in: "split[0]", want: Address{Node: "split"}, str: "split"},
		{in: "amp.gain", want: Address{Node: "amp", Param: "gain"}, str: "amp.gain"},
		{in: "filter_2.Q", want: Address{Node: "filter_2", Param: "Q"}, str: "filter_2.Q"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAddress(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.str, got.String())
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, in := range []string{"", ".gain", "amp.", "1osc", "osc[", "osc[x]", "osc[-1]", "amp[1].gain", "a b"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAddress(in)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}
