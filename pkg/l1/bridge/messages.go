package bridge

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/keylight/pkg/command"
)

// StatusEvent is published whenever the controller sends a status reply.
type StatusEvent struct {
	ControllerID string `protobuf:"bytes,1,opt,name=controller_id,proto3" json:"controller_id,omitempty"`
	Profiles     uint32 `protobuf:"varint,2,opt,name=profiles,proto3" json:"profiles,omitempty"`
	Current      uint32 `protobuf:"varint,3,opt,name=current,proto3" json:"current,omitempty"`
	ProfileName  string `protobuf:"bytes,4,opt,name=profile_name,proto3" json:"profile_name,omitempty"`
	Enabled      bool   `protobuf:"varint,5,opt,name=enabled,proto3" json:"enabled,omitempty"`
	Reactive     bool   `protobuf:"varint,6,opt,name=reactive,proto3" json:"reactive,omitempty"`
	Intensity    uint32 `protobuf:"varint,7,opt,name=intensity,proto3" json:"intensity,omitempty"`
	Errors       uint32 `protobuf:"varint,8,opt,name=errors,proto3" json:"errors,omitempty"`
}

// NewStatusEvent creates a StatusEvent from a status reply.
func NewStatusEvent(id string, s command.StatusReport, names []string) *StatusEvent {
	ev := &StatusEvent{
		ControllerID: id,
		Profiles:     uint32(s.Profiles),
		Current:      uint32(s.Current),
		Enabled:      s.Enabled,
		Reactive:     s.Reactive,
		Intensity:    uint32(s.Intensity),
		Errors:       uint32(s.Errors),
	}
	if int(s.Current) < len(names) {
		ev.ProfileName = names[s.Current]
	}
	return ev
}

// Report converts the event back to a status reply.
func (m *StatusEvent) Report() command.StatusReport {
	return command.StatusReport{
		Profiles:  uint8(m.Profiles),
		Current:   uint8(m.Current),
		Enabled:   m.Enabled,
		Reactive:  m.Reactive,
		Intensity: uint8(m.Intensity),
		Errors:    uint8(m.Errors),
	}
}

// ProtoMessage implements proto.Message.
func (m *StatusEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusEvent) Reset() { *m = StatusEvent{} }

// String implements proto.Message.
func (m *StatusEvent) String() string { return proto.CompactTextString(m) }
