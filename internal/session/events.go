package session

import "github.com/google/uuid"

// Audience selects which connections receive an event.
type Audience int

const (
	AudienceAll Audience = iota
	AudienceTeachers
	AudienceStudents
	AudienceClient // a single connection, identified by Event.ClientID
)

// Outbound event names, as they appear on the wire.
const (
	EventTeacherJoined = "teacher_joined"
	EventStudentJoined = "student_joined"
	EventCurrentPoll   = "current_poll"
	EventNewPoll       = "new_poll"
	EventPollCreated   = "poll_created"
	EventPollResults   = "poll_results"
	EventPollClosed    = "poll_closed"
	EventPollError     = "poll_error"
	EventStudentsList  = "students_list"
	EventPollHistory   = "poll_history"
	EventKicked        = "kicked"
	EventNewMessage    = "new_message"
	EventChatHistory   = "chat_history"
)

// Event is one outbound notification with its audience selector.
type Event struct {
	Name     string
	Audience Audience
	ClientID uuid.UUID // set when Audience == AudienceClient
	Payload  interface{}
}

// Emitter delivers events to connected participants. The hub implements it;
// tests substitute a recorder.
type Emitter interface {
	Emit(ev Event)
}

// ToAll builds an event addressed to every participant.
func ToAll(name string, payload interface{}) Event {
	return Event{Name: name, Audience: AudienceAll, Payload: payload}
}

// ToTeachers builds an event addressed to connected teachers.
func ToTeachers(name string, payload interface{}) Event {
	return Event{Name: name, Audience: AudienceTeachers, Payload: payload}
}

// ToStudents builds an event addressed to connected students.
func ToStudents(name string, payload interface{}) Event {
	return Event{Name: name, Audience: AudienceStudents, Payload: payload}
}

// ToClient builds an event addressed to a single connection.
func ToClient(id uuid.UUID, name string, payload interface{}) Event {
	return Event{Name: name, Audience: AudienceClient, ClientID: id, Payload: payload}
}
