package command

// StatusRetries is the number of copies of a status reply.
const StatusRetries = 3

// StatusSize is the payload size of a status reply.
const StatusSize = 6

// StatusReport describes the controller state reported to the host.
type StatusReport struct {
	Profiles  uint8
	Current   uint8
	Enabled   bool
	Reactive  bool
	Intensity uint8
	Errors    uint8
}

// Bytes encodes the status reply payload.
func (s StatusReport) Bytes() []byte {
	return []byte{s.Profiles, s.Current, boolByte(s.Enabled), boolByte(s.Reactive), s.Intensity, s.Errors}
}

// ParseStatus decodes a status reply payload.
func ParseStatus(p []byte) (s StatusReport, err error) {
	if len(p) < StatusSize {
		return s, ErrShortPayload
	}
	s.Profiles, s.Current = p[0], p[1]
	s.Enabled, s.Reactive = p[2] != 0, p[3] != 0
	s.Intensity, s.Errors = p[4], p[5]
	return s, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
