package brcode

import (
	"errors"
	"fmt"
	"strings"
)

var ErrChecksumMismatch = errors.New("brcode: checksum mismatch")

// Verify checks that payload ends with a CRC field whose value matches the
// checksum of everything before it, and that the payload decodes.
func Verify(payload string) error {
	if len(payload) < len(crcPrefix)+4 {
		return fmt.Errorf("%w: payload too short", ErrMalformedField)
	}
	body, sum := payload[:len(payload)-4], payload[len(payload)-4:]
	if !strings.HasSuffix(body, crcPrefix) {
		return fmt.Errorf("%w: missing checksum field", ErrMalformedField)
	}
	if want := CRC16(body); !strings.EqualFold(want, sum) {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, sum, want)
	}
	fields, err := Decode(payload)
	if err != nil {
		return err
	}
	if v, ok := Lookup(fields, TagPayloadFormat); !ok || v != payloadFormatVersion || fields[0].Tag != TagPayloadFormat {
		return fmt.Errorf("%w: payload format indicator", ErrMalformedField)
	}
	return nil
}
