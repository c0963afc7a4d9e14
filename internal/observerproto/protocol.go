package observerproto

// Version is the observer protocol version (separate from the driver WS protocol).
const Version = "1.0"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeTick      = "TICK"

	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// Encoding of TICK frames: "json" (text frames, default) or "msgpack" (binary frames).
	Encoding string `json:"encoding,omitempty"`
	// Every sends one TICK per N ticks. Events of skipped ticks are not replayed.
	Every int `json:"every,omitempty"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	Tick            uint64      `json:"tick"`
	Mode            string      `json:"mode"`
	WorldParams     WorldParams `json:"world_params"`
	Zones           []ZoneState `json:"zones"`
	Station         BoxState    `json:"station"`
	RobotDims       [3]float64  `json:"robot_dims"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	Seed       int64 `json:"seed"`
}

// Server -> Client. Sent every tick (or every N ticks, see SubscribeMsg.Every).
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Zones      []ZoneState     `json:"zones"`
	Robot      RobotState      `json:"robot"`
	Debris     []DebrisState   `json:"debris"`
	Controller ControllerState `json:"controller"`
	Events     []EventState    `json:"events,omitempty"`
}

type BoxState struct {
	Center [3]float64 `json:"center"`
	Dims   [3]float64 `json:"dims"`
}

type ZoneState struct {
	ID       string     `json:"id"`
	Center   [3]float64 `json:"center"`
	Dims     [3]float64 `json:"dims"`
	Occupied bool       `json:"occupied"`
	// Light is the RGB color of the occupancy indicator.
	Light uint32     `json:"light"`
	Entry [2]float64 `json:"entry"`
}

type RobotState struct {
	Pos     [3]float64 `json:"pos"`
	Vel     [3]float64 `json:"vel"`
	Dims    [3]float64 `json:"dims"`
	CanMove [4]bool    `json:"can_move"` // -x, +x, -z, +z
	OnFloor bool       `json:"on_floor"`
}

type DebrisState struct {
	ID      string     `json:"id"`
	Zone    string     `json:"zone"`
	Pos     [3]float64 `json:"pos"`
	Visible bool       `json:"visible"`
}

type ControllerState struct {
	Phase        string   `json:"phase"`
	Pass         string   `json:"pass"`
	Zone         string   `json:"zone,omitempty"`
	CurrentIndex int      `json:"current_index"`
	Pending      []string `json:"pending,omitempty"`
	PendingIndex int      `json:"pending_index"`
	Cleaned      []string `json:"cleaned,omitempty"`
	Progress     float64  `json:"progress"`
	Waiting      bool     `json:"waiting"`
	Charging     bool     `json:"charging"`
	AllCleaned   bool     `json:"all_cleaned"`
	Battery      float64  `json:"battery"`
}

type EventState struct {
	Kind     string `json:"kind"`
	Zone     string `json:"zone,omitempty"`
	DebrisID string `json:"debris_id,omitempty"`
}
