package brcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRC16_KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: "FFFF"},
		{in: "123456789", want: "29B1"},
		{in: "A", want: "B915"},
		{in: "000201", want: "89B9"},
		{
			in:   "00020126420014br.gov.bcb.pix0120pai.joao@example.com5204000053039865406150.005802BR5918PAI JOAO DE OXOSSI6009SAO PAULO62280524PIX1718000000000ABCDEF126304",
			want: "D59D",
		},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CRC16(tc.in), "input %q", tc.in)
	}
}

func TestCRC16_IsZeroPadded(t *testing.T) {
	got := CRC16("6304")
	require.Len(t, got, 4)
	require.Equal(t, "6007", got)
}
