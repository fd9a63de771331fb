package pid

import "encoding/binary"

// Default returns the built-in parameter table covering the commonly
// polled SAE J1979 mode 01 sensors plus the mode 03 stored-DTC request.
// Conversion formulas follow the standard A/B byte definitions.
func Default() Table {
	return Table{
		{Name: "mil_status", Mode: "01", PID: "01", Bytes: 4, Unit: "bitfield", Convert: func(d []byte) float64 {
			return float64(binary.BigEndian.Uint32(d))
		}},
		{Name: "load_pct", Mode: "01", PID: "04", Bytes: 1, Unit: "%", Convert: func(d []byte) float64 {
			return float64(d[0]) * 100 / 255
		}},
		{Name: "temp", Mode: "01", PID: "05", Bytes: 1, Unit: "°C", Convert: func(d []byte) float64 {
			return float64(d[0]) - 40
		}},
		{Name: "frp", Mode: "01", PID: "0A", Bytes: 1, Unit: "kPa", Convert: func(d []byte) float64 {
			return float64(d[0]) * 3
		}},
		{Name: "map", Mode: "01", PID: "0B", Bytes: 1, Unit: "kPa", Convert: func(d []byte) float64 {
			return float64(d[0])
		}},
		{Name: "rpm", Mode: "01", PID: "0C", Bytes: 2, Unit: "rev/min", Convert: func(d []byte) float64 {
			return (float64(d[0])*256 + float64(d[1])) / 4
		}},
		{Name: "vss", Mode: "01", PID: "0D", Bytes: 1, Unit: "km/h", Convert: func(d []byte) float64 {
			return float64(d[0])
		}},
		{Name: "sparkadv", Mode: "01", PID: "0E", Bytes: 1, Unit: "°", Convert: func(d []byte) float64 {
			return float64(d[0])/2 - 64
		}},
		{Name: "iat", Mode: "01", PID: "0F", Bytes: 1, Unit: "°C", Convert: func(d []byte) float64 {
			return float64(d[0]) - 40
		}},
		{Name: "maf", Mode: "01", PID: "10", Bytes: 2, Unit: "g/s", Convert: func(d []byte) float64 {
			return (float64(d[0])*256 + float64(d[1])) / 100
		}},
		{Name: "throttlepos", Mode: "01", PID: "11", Bytes: 1, Unit: "%", Convert: func(d []byte) float64 {
			return float64(d[0]) * 100 / 255
		}},
		{Name: "runtm", Mode: "01", PID: "1F", Bytes: 2, Unit: "s", Convert: func(d []byte) float64 {
			return float64(d[0])*256 + float64(d[1])
		}},
		{Name: "dist_mil", Mode: "01", PID: "21", Bytes: 2, Unit: "km", Convert: func(d []byte) float64 {
			return float64(d[0])*256 + float64(d[1])
		}},
		{Name: "fli", Mode: "01", PID: "2F", Bytes: 1, Unit: "%", Convert: func(d []byte) float64 {
			return float64(d[0]) * 100 / 255
		}},
		{Name: "dist_clr", Mode: "01", PID: "31", Bytes: 2, Unit: "km", Convert: func(d []byte) float64 {
			return float64(d[0])*256 + float64(d[1])
		}},
		{Name: "vpwr", Mode: "01", PID: "42", Bytes: 2, Unit: "V", Convert: func(d []byte) float64 {
			return (float64(d[0])*256 + float64(d[1])) / 1000
		}},

		// Stored trouble codes. Decoded through DecodeDTC rather than a
		// per-record formula; six data bytes carry up to three codes.
		{Name: "requestdtc", Mode: "03", Bytes: 6, Unit: "codes"},
	}
}
