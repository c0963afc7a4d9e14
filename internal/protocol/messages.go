package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	Mode            string      `json:"mode"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz int     `json:"tick_rate_hz"`
	Seed       int64   `json:"seed"`
	RoomWidth  float64 `json:"room_width"`
	RoomDepth  float64 `json:"room_depth"`
	RoomOffset float64 `json:"room_offset"`
}

// OBS (server -> client), sent every tick to drivers.
type ObsMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Tick            uint64     `json:"tick"`
	SessionID       string     `json:"session_id"`
	Robot           RobotState `json:"robot"`
	DebrisRemaining int        `json:"debris_remaining"`
	Events          []string   `json:"events,omitempty"`
}

type RobotState struct {
	Pos         [3]float64  `json:"pos"`
	Vel         [3]float64  `json:"vel"`
	Bounds      Bounds      `json:"bounds"`
	Permissions Permissions `json:"permissions"`
	OnFloor     bool        `json:"on_floor"`
}

type Bounds struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Front  float64 `json:"front"`
	Back   float64 `json:"back"`
}

type Permissions struct {
	NegX bool `json:"neg_x"`
	PosX bool `json:"pos_x"`
	NegZ bool `json:"neg_z"`
	PosZ bool `json:"pos_z"`
}

// DRIVE (client -> server): desired horizontal velocity for the next tick.
type DriveMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	VX              float64 `json:"vx"`
	VZ              float64 `json:"vz"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
