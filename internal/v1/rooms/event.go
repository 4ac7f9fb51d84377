package rooms

// Kind discriminates the events flowing through a room's channel.
type Kind uint8

const (
	// KindJoined announces a handle entering the room.
	KindJoined Kind = iota
	// KindLeft announces a handle leaving the room.
	KindLeft
	// KindMsg carries a preformatted chat line.
	KindMsg
)

// String returns the metrics label for the kind.
func (k Kind) String() string {
	switch k {
	case KindJoined:
		return "joined"
	case KindLeft:
		return "left"
	case KindMsg:
		return "msg"
	default:
		return "unknown"
	}
}

// Event is a single item on a room's broadcast channel. Presence events
// carry the handle so each subscriber can personalize the line it prints
// ("You joined ..." vs "<handle> joined"); chat lines arrive preformatted
// and are written verbatim.
type Event struct {
	Kind   Kind
	Handle string // who joined or left; empty for chat lines
	Text   string // display line including any "sender:" prefix; only for KindMsg
}

// Joined builds a presence event for handle entering a room.
func Joined(handle string) Event {
	return Event{Kind: KindJoined, Handle: handle}
}

// Left builds a presence event for handle leaving a room.
func Left(handle string) Event {
	return Event{Kind: KindLeft, Handle: handle}
}

// Msg builds a chat event carrying the already-formatted display line.
func Msg(text string) Event {
	return Event{Kind: KindMsg, Text: text}
}
