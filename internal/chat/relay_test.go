package chat

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/session"
)

type stubResolver map[uuid.UUID][2]string // id -> {name, role}

func (r stubResolver) Resolve(id uuid.UUID) (string, string, bool) {
	v, ok := r[id]
	return v[0], v[1], ok
}

type recorder struct {
	mu     sync.Mutex
	events []session.Event
}

func (r *recorder) Emit(ev session.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []session.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.Event(nil), r.events...)
}

func newTestRelay(t *testing.T, maxLen int) (*Relay, stubResolver, *recorder) {
	t.Helper()
	resolver := stubResolver{}
	rec := &recorder{}
	return NewRelay(resolver, rec, zap.NewNop(), maxLen), resolver, rec
}

func TestPostBroadcastsToEveryone(t *testing.T) {
	relay, resolver, rec := newTestRelay(t, 0)
	sender := uuid.New()
	resolver[sender] = [2]string{"Asha", models.RoleStudent}

	relay.Post(sender, "hello class")

	events := rec.all()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Name != session.EventNewMessage || ev.Audience != session.AudienceAll {
		t.Errorf("got %s/%v, want new_message to everyone", ev.Name, ev.Audience)
	}
	msg, ok := ev.Payload.(models.ChatMessage)
	if !ok {
		t.Fatalf("payload type %T, want models.ChatMessage", ev.Payload)
	}
	if msg.Sender != "Asha" || msg.SenderRole != models.RoleStudent || msg.Text != "hello class" {
		t.Errorf("message = %+v", msg)
	}
	if msg.ID == uuid.Nil || msg.Timestamp.IsZero() {
		t.Error("message must carry an id and timestamp")
	}
}

func TestUnknownSenderDropped(t *testing.T) {
	relay, _, rec := newTestRelay(t, 0)

	relay.Post(uuid.New(), "should vanish")

	if len(rec.all()) != 0 {
		t.Error("unknown sender must not broadcast")
	}
	if len(relay.Messages()) != 0 {
		t.Error("unknown sender must not append to the log")
	}
}

func TestEmptyMessageDropped(t *testing.T) {
	relay, resolver, rec := newTestRelay(t, 0)
	sender := uuid.New()
	resolver[sender] = [2]string{"Asha", models.RoleStudent}

	relay.Post(sender, "   ")

	if len(rec.all()) != 0 || len(relay.Messages()) != 0 {
		t.Error("whitespace-only message must be dropped")
	}
}

func TestLongMessageTruncated(t *testing.T) {
	relay, resolver, _ := newTestRelay(t, 10)
	sender := uuid.New()
	resolver[sender] = [2]string{"Ms. Reyes", models.RoleTeacher}

	relay.Post(sender, strings.Repeat("x", 50))

	msgs := relay.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if len(msgs[0].Text) != 10 {
		t.Errorf("len(text) = %d, want 10", len(msgs[0].Text))
	}
}

func TestHistoryInPostOrder(t *testing.T) {
	relay, resolver, rec := newTestRelay(t, 0)
	teacher := uuid.New()
	student := uuid.New()
	resolver[teacher] = [2]string{"Ms. Reyes", models.RoleTeacher}
	resolver[student] = [2]string{"Asha", models.RoleStudent}

	relay.Post(teacher, "welcome")
	relay.Post(student, "hi")
	relay.Post(teacher, "let's begin")

	msgs := relay.Messages()
	want := []string{"welcome", "hi", "let's begin"}
	if len(msgs) != len(want) {
		t.Fatalf("messages = %d, want %d", len(msgs), len(want))
	}
	for i, text := range want {
		if msgs[i].Text != text {
			t.Errorf("message %d = %q, want %q", i, msgs[i].Text, text)
		}
	}

	relay.History(student)
	events := rec.all()
	last := events[len(events)-1]
	if last.Name != session.EventChatHistory || last.Audience != session.AudienceClient || last.ClientID != student {
		t.Error("chat_history must go to the requesting connection only")
	}
	payload, ok := last.Payload.([]models.ChatMessage)
	if !ok || len(payload) != 3 {
		t.Fatalf("chat_history payload = %#v, want 3 messages", last.Payload)
	}
}

func TestConcurrentPosts(t *testing.T) {
	relay, resolver, _ := newTestRelay(t, 0)
	sender := uuid.New()
	resolver[sender] = [2]string{"Asha", models.RoleStudent}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Post(sender, "msg")
		}()
	}
	wg.Wait()

	if got := len(relay.Messages()); got != n {
		t.Errorf("messages = %d, want %d", got, n)
	}
}
