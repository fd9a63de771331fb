package pid

import "fmt"

var dtcPrefixes = [4]string{"P", "C", "B", "U"}

// DecodeDTC expands raw mode 03 reply bytes into diagnostic trouble codes.
// Bytes are consumed in pairs; the top two bits of the first byte select
// the system letter and the remaining fourteen bits spell the code digits.
// All-zero pairs are padding and are skipped.
func DecodeDTC(data []byte) []string {
	var codes []string
	for i := 0; i+1 < len(data); i += 2 {
		a, b := data[i], data[i+1]
		if a == 0 && b == 0 {
			continue
		}
		codes = append(codes, fmt.Sprintf("%s%d%X%02X", dtcPrefixes[a>>6], (a>>4)&0x03, a&0x0F, b))
	}
	return codes
}
