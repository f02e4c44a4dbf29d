package brcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	good := "00020126330014br.gov.bcb.pix011112345678900520400005303986540510.015802BR5925AGATA ICARO ONIX URSULA A6015FLORIANOPOLIS D62070503***63042626"
	require.NoError(t, Verify(good))

	tampered := strings.Replace(good, "10.01", "10.02", 1)
	require.ErrorIs(t, Verify(tampered), ErrChecksumMismatch)

	require.ErrorIs(t, Verify("6304"), ErrMalformedField)
	require.ErrorIs(t, Verify(good[:len(good)-8]+"ABCD"), ErrMalformedField)
}
