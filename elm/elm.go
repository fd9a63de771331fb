package elm

const (
	// Terminal Control
	Prompt = ">"
	CR     = "\r"

	// Literal Status Replies
	OK              = "OK"
	NoData          = "NO DATA"
	Unknown         = "?"
	UnableToConnect = "UNABLE TO CONNECT"
	Searching       = "SEARCHING..."

	// Response Codes (mode echoes on decoded replies)
	LiveDataCode = "41"
	DTCCode      = "43"

	// Adapter Configuration Commands
	CmdReset          = "ATZ"
	CmdEchoOff        = "ATE0"
	CmdLinefeedsOff   = "ATL0"
	CmdSpacesOff      = "ATS0"
	CmdHeadersOff     = "ATH0"
	CmdAdaptiveTiming = "ATAT2"
	CmdSelectProtocol = "ATSP" // followed by a single protocol digit
)

// IsStatus reports whether line is one of the adapter's literal status
// replies rather than a hex data frame.
func IsStatus(line string) bool {
	switch line {
	case OK, NoData, Unknown, UnableToConnect, Searching:
		return true
	}
	return false
}

// IsProtocol reports whether p is a valid protocol selector: a single
// digit '0' (automatic) through '9'.
func IsProtocol(p string) bool {
	return len(p) == 1 && p[0] >= '0' && p[0] <= '9'
}

// InitSequence returns the adapter configuration commands issued after a
// connection is established: reset, echo/linefeeds/spaces/headers off,
// adaptive timing, protocol selection. Echo and spaces must be disabled
// for the framer's "No Echo" assumption to hold.
func InitSequence(protocol string) []string {
	return []string{
		CmdReset,
		CmdEchoOff,
		CmdLinefeedsOff,
		CmdSpacesOff,
		CmdHeadersOff,
		CmdAdaptiveTiming,
		CmdSelectProtocol + protocol,
	}
}
