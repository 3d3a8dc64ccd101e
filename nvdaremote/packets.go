package nvdaremote

import (
	"encoding/json"
	"fmt"

	"github.com/denizsincar29/keyplayer/keys"
)

// Packet is one newline-delimited JSON message exchanged with the relay.
type Packet interface {
	Type() string
	String() string
}

type BasePacket struct {
	PacketType string `json:"type"`
}

func (b BasePacket) String() string {
	return fmt.Sprintf("type %s", b.PacketType)
}

func (b BasePacket) Type() string { return b.PacketType }

// HandShakePacket is the first packet a client sends after connecting.
type HandShakePacket struct {
	BasePacket
	ProtocolVersion int `json:"version"`
}

// SelfJoinPacket joins the client to a channel.
type SelfJoinPacket struct {
	BasePacket
	Channel        string `json:"channel"`
	ConnectionType string `json:"connection_type"`
}

// NewJoinPackets returns the handshake and join packets. Protocol version is always 2.
func NewJoinPackets(channel, connType string) (HandShakePacket, SelfJoinPacket) {
	handshake := HandShakePacket{
		BasePacket:      BasePacket{PacketType: "protocol_version"},
		ProtocolVersion: 2,
	}
	selfJoin := SelfJoinPacket{
		BasePacket:     BasePacket{PacketType: "join"},
		Channel:        channel,
		ConnectionType: connType,
	}
	return handshake, selfJoin
}

// KeyPacket presses or releases a key on the controlled machine.
type KeyPacket struct {
	BasePacket
	VKCode   int  `json:"vk_code"`
	ScanCode int  `json:"scan_code"`
	Extended bool `json:"extended"`
	Pressed  bool `json:"pressed"`
	Origin   *int `json:"origin,omitempty"`
}

func (k KeyPacket) String() string {
	action := "released"
	if k.Pressed {
		action = "pressed"
	}
	if name, err := keys.Name(uint16(k.VKCode)); err == nil {
		return fmt.Sprintf("Key %s was %s", name, action)
	}
	return fmt.Sprintf("Key with vk code 0x%X was %s", k.VKCode, action)
}

// NewKeyPacket builds a key packet from resolved key codes.
func NewKeyPacket(info keys.Info, pressed bool) KeyPacket {
	return KeyPacket{
		BasePacket: BasePacket{PacketType: "key"},
		VKCode:     int(info.VKCode),
		ScanCode:   int(info.ScanCode),
		Extended:   info.Extended,
		Pressed:    pressed,
	}
}

// MOTDPacket carries the relay's message of the day.
type MOTDPacket struct {
	BasePacket
	Motd string `json:"motd"`
}

func (m MOTDPacket) String() string {
	return fmt.Sprintf("Message of the day: %s", m.Motd)
}

// NVRClient describes a peer in a channel.
type NVRClient struct {
	ID             int    `json:"id"`
	ConnectionType string `json:"connection_type"`
}

// ChannelJoinedPacket confirms our own join and lists the peers already there.
type ChannelJoinedPacket struct {
	BasePacket
	Channel string      `json:"channel"`
	Clients []NVRClient `json:"clients"`
}

func (c ChannelJoinedPacket) String() string {
	return fmt.Sprintf("Channel joined: %s, clients: %v", c.Channel, c.Clients)
}

// ClientJoinedPacket announces a new peer.
type ClientJoinedPacket struct {
	BasePacket
	Client NVRClient `json:"client"`
}

func (c ClientJoinedPacket) String() string {
	return fmt.Sprintf("a %s client with ID %d joined", c.Client.ConnectionType, c.Client.ID)
}

// ClientLeftPacket announces that a peer went away.
type ClientLeftPacket struct {
	BasePacket
	Client NVRClient `json:"client"`
}

func (c ClientLeftPacket) String() string {
	return fmt.Sprintf("client with ID %d left", c.Client.ID)
}

// PingPacket is the relay's keepalive.
type PingPacket struct {
	BasePacket
}

// NvdaNotConnectedPacket means no NVDA is on the other side of the channel,
// so key packets go nowhere.
type NvdaNotConnectedPacket struct {
	BasePacket
}

func (n NvdaNotConnectedPacket) String() string {
	return "nvda_not_connected event"
}

// InvalidPacket is anything we do not understand.
type InvalidPacket struct {
	BasePacket
	RawData json.RawMessage
}

func (i InvalidPacket) String() string {
	return fmt.Sprintf("Invalid event: %s", i.RawData)
}

// ParsePacket decodes one line received from the relay.
func ParsePacket(data []byte) (Packet, error) {
	var base BasePacket
	if err := json.Unmarshal(data, &base); err != nil {
		return InvalidPacket{RawData: data}, err
	}

	switch base.PacketType {
	case "motd":
		var p MOTDPacket
		err := json.Unmarshal(data, &p)
		return p, err
	case "channel_joined":
		var p ChannelJoinedPacket
		err := json.Unmarshal(data, &p)
		return p, err
	case "client_joined":
		var p ClientJoinedPacket
		err := json.Unmarshal(data, &p)
		return p, err
	case "client_left":
		var p ClientLeftPacket
		err := json.Unmarshal(data, &p)
		return p, err
	case "key":
		var p KeyPacket
		err := json.Unmarshal(data, &p)
		return p, err
	case "ping":
		return PingPacket{BasePacket: base}, nil
	case "nvda_not_connected":
		return NvdaNotConnectedPacket{BasePacket: base}, nil
	default:
		return InvalidPacket{
			BasePacket: base,
			RawData:    data,
		}, fmt.Errorf("unknown packet type: %s", base.PacketType)
	}
}
