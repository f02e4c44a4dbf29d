package brcode

import "fmt"

const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// CRC16 returns the CRC-16/CCITT-FALSE of s as four upper-case hex digits.
// It is the checksum carried by field 63 of a BR Code payload.
func CRC16(s string) string {
	crc := uint16(crcInitial)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
