package reader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openvehiclelab/elmlink/elm"
	"github.com/openvehiclelab/elmlink/pid"
)

// Kind tags which variant of Reply the dispatcher produced.
type Kind int

const (
	// KindUnparsed marks a frame whose first byte is not a recognized
	// response code. Not an error; the frame simply carries no reading.
	KindUnparsed Kind = iota
	// KindStatus marks a literal adapter status ("OK", "NO DATA", ...).
	KindStatus
	// KindSensor marks a decoded live-data reading for a known PID.
	KindSensor
	// KindUnknownPID marks a live-data reply for a PID absent from the
	// table; only Mode and PID are populated.
	KindUnknownPID
	// KindDTC marks a stored trouble code reply.
	KindDTC
)

// Reply is one decoded adapter frame.
type Reply struct {
	Kind   Kind     `json:"kind"`
	Status string   `json:"status,omitempty"` // KindStatus
	Mode   string   `json:"mode,omitempty"`
	PID    string   `json:"pid,omitempty"`
	Name   string   `json:"name,omitempty"`
	Unit   string   `json:"unit,omitempty"`
	Value  float64  `json:"value"`          // KindSensor: converted reading; KindDTC: code count
	DTCs   []string `json:"dtcs,omitempty"` // KindDTC
}

// Decode maps one framed reply to a structured result using the parameter
// table. It is a pure function: a malformed frame yields an error and no
// Reply, and never affects the decoding of subsequent frames.
func Decode(table pid.Table, frame string) (Reply, error) {
	if elm.IsStatus(frame) {
		return Reply{Kind: KindStatus, Status: frame}, nil
	}

	data, err := hexBytes(frame)
	if err != nil {
		return Reply{}, err
	}
	if len(data) == 0 {
		return Reply{Kind: KindUnparsed}, nil
	}

	switch fmt.Sprintf("%02X", data[0]) {
	case elm.LiveDataCode:
		return decodeLiveData(table, frame, data)
	case elm.DTCCode:
		return decodeDTC(table, frame, data)
	default:
		return Reply{Kind: KindUnparsed}, nil
	}
}

func decodeLiveData(table pid.Table, frame string, data []byte) (Reply, error) {
	if len(data) < 2 {
		return Reply{}, fmt.Errorf("%w: live-data frame %q has no PID byte", ErrMalformedFrame, frame)
	}

	code := fmt.Sprintf("%02X", data[1])
	rec, ok := table.ByPID("01", code)
	if !ok {
		return Reply{Kind: KindUnknownPID, Mode: elm.LiveDataCode, PID: code}, nil
	}

	switch rec.Bytes {
	case 1, 2, 4, 8:
	default:
		return Reply{}, fmt.Errorf("%w: %d bytes declared for %s", ErrUnsupportedWidth, rec.Bytes, rec.Name)
	}

	payload := data[2:]
	if len(payload) < rec.Bytes {
		return Reply{}, fmt.Errorf("%w: %q carries %d data bytes, %s needs %d",
			ErrMalformedFrame, frame, len(payload), rec.Name, rec.Bytes)
	}

	return Reply{
		Kind:  KindSensor,
		Mode:  elm.LiveDataCode,
		PID:   code,
		Name:  rec.Name,
		Unit:  rec.Unit,
		Value: rec.Convert(payload[:rec.Bytes]),
	}, nil
}

func decodeDTC(table pid.Table, frame string, data []byte) (Reply, error) {
	rec, ok := table.ByMode("03")
	if !ok {
		return Reply{Kind: KindUnparsed}, nil
	}

	payload := data[1:]
	if len(payload) < rec.Bytes {
		return Reply{}, fmt.Errorf("%w: %q carries %d DTC bytes, want %d",
			ErrMalformedFrame, frame, len(payload), rec.Bytes)
	}

	codes := pid.DecodeDTC(payload[:rec.Bytes])
	return Reply{
		Kind:  KindDTC,
		Mode:  elm.DTCCode,
		Name:  rec.Name,
		Value: float64(len(codes)),
		DTCs:  codes,
	}, nil
}

// hexBytes tokenizes a frame into bytes, two case-insensitive hex digits
// per token, ignoring interior whitespace.
func hexBytes(frame string) ([]byte, error) {
	s := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, frame)

	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd-length hex text %q", ErrMalformedFrame, frame)
	}

	data := make([]byte, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: non-hex token %q in %q", ErrMalformedFrame, s[i:i+2], frame)
		}
		data = append(data, byte(v))
	}
	return data, nil
}
