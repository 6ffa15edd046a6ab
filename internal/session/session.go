// Package session owns the live classroom state: connected participants, the
// current poll with its tally and auto-close timer, and the closed-poll history.
// All mutations are serialized behind one lock so that concurrent submissions,
// poll creation and the close timer observe a consistent state, and so that
// result broadcasts go out in the order votes were accepted.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/history"
	"github.com/classpulse/backend/internal/models"
)

// Poll creation rejections, reported back to the calling teacher.
var (
	ErrPollInProgress = errors.New("wait for all students to answer the current question")
	ErrEmptyQuestion  = errors.New("question must not be empty")
	ErrTooFewOptions  = errors.New("poll needs at least 2 options")
	ErrEmptyOption    = errors.New("options must not be empty")
	ErrTooManyOptions = errors.New("too many options")
	ErrNotTeacher     = errors.New("only a teacher can do that")
)

// Config bounds poll parameters. Zero values fall back to defaults.
type Config struct {
	DefaultTimeLimit int // seconds, used when a request omits the limit
	MaxTimeLimit     int // seconds, upper clamp
	MaxOptions       int
}

const (
	defaultTimeLimit = 60
	defaultMaxLimit  = 300
	defaultMaxOpts   = 10
)

// Session is the single in-memory classroom session. It combines the
// participant registry, the poll lifecycle and the answer aggregation behind
// one RWMutex; the history log and chat relay keep their own locks.
type Session struct {
	mu      sync.RWMutex
	cfg     Config
	emitter Emitter
	hist    *history.Log
	logger  *zap.Logger

	teachers map[uuid.UUID]*models.Participant
	students map[uuid.UUID]*models.Participant
	order    []uuid.UUID // student join order

	current *models.Poll
	tally   models.Tally
	// roster is the set of students registered when the current poll started.
	// Only roster members vote and count toward the all-answered check.
	roster map[uuid.UUID]bool
	timer  *time.Timer
}

// New creates an empty session.
func New(cfg Config, hist *history.Log, emitter Emitter, logger *zap.Logger) *Session {
	if cfg.DefaultTimeLimit <= 0 {
		cfg.DefaultTimeLimit = defaultTimeLimit
	}
	if cfg.MaxTimeLimit <= 0 {
		cfg.MaxTimeLimit = defaultMaxLimit
	}
	if cfg.MaxOptions <= 0 {
		cfg.MaxOptions = defaultMaxOpts
	}
	return &Session{
		cfg:      cfg,
		emitter:  emitter,
		hist:     hist,
		logger:   logger,
		teachers: make(map[uuid.UUID]*models.Participant),
		students: make(map[uuid.UUID]*models.Participant),
	}
}

// RegisterTeacher adds or replaces the teacher record for a connection and
// delivers the current session state to it.
func (s *Session) RegisterTeacher(id uuid.UUID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teachers[id] = &models.Participant{
		ID:       id,
		Name:     name,
		Role:     models.RoleTeacher,
		JoinedAt: time.Now(),
	}

	s.emitter.Emit(ToClient(id, EventTeacherJoined, map[string]bool{"success": true}))
	if s.current != nil && s.current.IsActive {
		s.emitter.Emit(ToClient(id, EventCurrentPoll, *s.current))
		s.emitter.Emit(ToClient(id, EventPollResults, s.tally.Clone()))
	}
	s.emitter.Emit(ToClient(id, EventStudentsList, s.studentListLocked()))
	s.logger.Info("teacher joined", zap.String("name", name))
}

// RegisterStudent adds a student for a connection. If a poll is already
// running the student receives it for display but is not part of that poll's
// roster: the poll completes without them and their vote is not counted.
func (s *Session) RegisterStudent(id uuid.UUID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[id]; !ok {
		s.order = append(s.order, id)
	}
	s.students[id] = &models.Participant{
		ID:       id,
		Name:     name,
		Role:     models.RoleStudent,
		JoinedAt: time.Now(),
	}

	s.emitter.Emit(ToClient(id, EventStudentJoined, map[string]bool{"success": true}))
	s.emitter.Emit(ToTeachers(EventStudentsList, s.studentListLocked()))
	if s.current != nil && s.current.IsActive {
		s.emitter.Emit(ToClient(id, EventNewPoll, *s.current))
	}
	s.logger.Info("student joined", zap.String("name", name))
}

// Remove drops a participant on disconnect. Teachers are not notified when
// another teacher leaves, only when the student list changes.
func (s *Session) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.students[id]; ok {
		s.removeStudentLocked(id)
		s.emitter.Emit(ToTeachers(EventStudentsList, s.studentListLocked()))
		s.logger.Info("student disconnected", zap.String("name", st.Name))
		return
	}
	if t, ok := s.teachers[id]; ok {
		delete(s.teachers, id)
		s.logger.Info("teacher disconnected", zap.String("name", t.Name))
	}
}

// KickStudent removes the first student matching name, in join order.
// Non-teacher callers are ignored. The kicked connection id is returned so the
// gateway can force the disconnect after the kicked event is delivered.
func (s *Session) KickStudent(teacherID uuid.UUID, name string) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teachers[teacherID]; !ok {
		return uuid.Nil, false
	}
	for _, id := range s.order {
		st := s.students[id]
		if st == nil || st.Name != name {
			continue
		}
		s.emitter.Emit(ToClient(id, EventKicked, nil))
		s.removeStudentLocked(id)
		s.emitter.Emit(ToTeachers(EventStudentsList, s.studentListLocked()))
		s.logger.Info("student kicked", zap.String("name", name))
		return id, true
	}
	return uuid.Nil, false
}

// CreatePoll starts a new poll. Rejections are returned and also emitted as a
// poll_error to the calling connection; non-teacher callers are dropped
// silently. A previous poll that is still active (possible only when every
// registered student has answered it) is closed and archived first.
func (s *Session) CreatePoll(teacherID uuid.UUID, question string, options []string, timeLimitSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teachers[teacherID]; !ok {
		return ErrNotTeacher
	}
	if err := s.validatePoll(question, options); err != nil {
		s.emitter.Emit(ToClient(teacherID, EventPollError, map[string]string{"message": err.Error()}))
		return err
	}
	if s.current != nil && s.current.IsActive && !s.allStudentsAnsweredLocked() {
		s.emitter.Emit(ToClient(teacherID, EventPollError, map[string]string{"message": ErrPollInProgress.Error()}))
		return ErrPollInProgress
	}

	s.closeLocked()

	limit := timeLimitSeconds
	if limit <= 0 {
		limit = s.cfg.DefaultTimeLimit
	}
	if limit > s.cfg.MaxTimeLimit {
		limit = s.cfg.MaxTimeLimit
	}

	poll := &models.Poll{
		ID:        uuid.New(),
		Question:  question,
		Options:   append([]string(nil), options...),
		TimeLimit: limit,
		CreatedAt: time.Now(),
		IsActive:  true,
	}
	s.current = poll
	s.tally = models.NewTally(poll.Options)
	s.roster = make(map[uuid.UUID]bool, len(s.students))
	for id, st := range s.students {
		s.roster[id] = true
		st.HasAnswered = false
	}
	s.timer = time.AfterFunc(time.Duration(limit)*time.Second, func() {
		s.autoClose(poll.ID)
	})

	s.emitter.Emit(ToStudents(EventNewPoll, *poll))
	s.emitter.Emit(ToTeachers(EventPollCreated, *poll))
	s.logger.Info("poll created",
		zap.String("question", poll.Question),
		zap.Int("options", len(poll.Options)),
		zap.Int("time_limit_sec", limit),
	)
	return nil
}

func (s *Session) validatePoll(question string, options []string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	if len(options) < 2 {
		return ErrTooFewOptions
	}
	if len(options) > s.cfg.MaxOptions {
		return ErrTooManyOptions
	}
	for _, o := range options {
		if strings.TrimSpace(o) == "" {
			return ErrEmptyOption
		}
	}
	return nil
}

// SubmitAnswer records a student's single answer for the current poll.
// Unknown senders, inactive polls, late joiners outside the roster and repeat
// submissions are silently ignored. An answer naming an unknown option still
// consumes the student's submission but leaves the tally unchanged.
func (s *Session) SubmitAnswer(studentID uuid.UUID, optionLabel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[studentID]
	if !ok || s.current == nil || !s.current.IsActive {
		return
	}
	if !s.roster[studentID] || st.HasAnswered {
		return
	}

	st.HasAnswered = true
	if !s.tally.Increment(optionLabel) {
		s.logger.Debug("answer for unknown option", zap.String("option", optionLabel))
	}
	s.emitter.Emit(ToAll(EventPollResults, s.tally.Clone()))
	s.logger.Debug("answer submitted",
		zap.String("student", st.Name),
		zap.String("option", optionLabel),
	)

	if s.rosterAnsweredLocked() {
		s.closeLocked()
	}
}

// CloseCurrentPoll ends the active poll. Safe to call when no poll is active.
func (s *Session) CloseCurrentPoll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// autoClose is the timer callback. The poll id is checked under the lock so a
// stale timer from a superseded poll never closes its successor.
func (s *Session) autoClose(pollID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != pollID || !s.current.IsActive {
		s.logger.Debug("stale poll timer ignored", zap.String("poll_id", pollID.String()))
		return
	}
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.current == nil || !s.current.IsActive {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.current.IsActive = false

	frozen := s.tally.Clone()
	s.hist.Record(models.HistoryEntry{
		Poll:           *s.current,
		Results:        frozen,
		TotalResponses: frozen.Sum(),
		ClosedAt:       time.Now(),
	})
	s.emitter.Emit(ToAll(EventPollClosed, map[string]interface{}{"results": frozen}))
	s.logger.Info("poll closed",
		zap.String("question", s.current.Question),
		zap.Int("responses", frozen.Sum()),
	)
}

// History sends the closed-poll history to the calling teacher.
// Non-teacher callers are ignored.
func (s *Session) History(teacherID uuid.UUID) {
	s.mu.RLock()
	_, ok := s.teachers[teacherID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	s.emitter.Emit(ToClient(teacherID, EventPollHistory, s.hist.All()))
}

// Resolve looks up a participant's display name and role. Used by the chat
// relay to attribute messages.
func (s *Session) Resolve(id uuid.UUID) (name, role string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, found := s.students[id]; found {
		return st.Name, models.RoleStudent, true
	}
	if t, found := s.teachers[id]; found {
		return t.Name, models.RoleTeacher, true
	}
	return "", "", false
}

// Counts reports connected teacher and student totals.
func (s *Session) Counts() (teachers, students int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teachers), len(s.students)
}

// Students returns the student list in join order.
func (s *Session) Students() []models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.studentListLocked()
}

func (s *Session) studentListLocked() []models.Participant {
	out := make([]models.Participant, 0, len(s.students))
	for _, id := range s.order {
		if st, ok := s.students[id]; ok {
			out = append(out, *st)
		}
	}
	return out
}

func (s *Session) removeStudentLocked(id uuid.UUID) {
	delete(s.students, id)
	delete(s.roster, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// allStudentsAnsweredLocked gates poll creation: every currently registered
// student, late joiners included, must have answered.
func (s *Session) allStudentsAnsweredLocked() bool {
	for _, st := range s.students {
		if !st.HasAnswered {
			return false
		}
	}
	return true
}

// rosterAnsweredLocked gates auto-close: every roster member still registered
// must have answered. Kicked or disconnected members no longer count.
func (s *Session) rosterAnsweredLocked() bool {
	for id := range s.roster {
		if st, ok := s.students[id]; ok && !st.HasAnswered {
			return false
		}
	}
	return true
}
