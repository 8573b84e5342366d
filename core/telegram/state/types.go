package state

// State identifies a conversation step.
type State string

const (
	// StateIdle indicates there is no active flow in the chat.
	StateIdle State = "idle"
)

// Session stores the conversation state and flow data for a chat.
type Session struct {
	State State
	Data  map[string]string
}

// Value returns a flow data entry.
func (s Session) Value(key string) (string, bool) {
	v, ok := s.Data[key]
	return v, ok
}

func (s Session) clone() Session {
	out := Session{State: s.State}
	if len(s.Data) > 0 {
		out.Data = make(map[string]string, len(s.Data))
		for k, v := range s.Data {
			out.Data[k] = v
		}
	}
	return out
}

// Manager stores sessions keyed by chat ID. Implementations are safe for
// concurrent use and never hand out their internal records.
type Manager interface {
	Get(chatID int64) Session
	Set(chatID int64, s Session)
	SetState(chatID int64, st State)
	GetState(chatID int64) State
	Clear(chatID int64)
	InProgress(chatID int64) bool
}
