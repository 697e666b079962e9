package store

import "time"

// Mode identifies a workflow.
type Mode string

const (
	ModeTransfer Mode = "transfer"
	ModeWork     Mode = "work"
	ModeUnfound  Mode = "unfound"

	// ModeSearch owns the slice of the idle employee search. It never starts a workflow.
	ModeSearch Mode = "search"
)

// State is the current position of a session inside its workflow.
// Workflow steps are encoded as "{mode}_{step}".
type State string

const (
	StateIdle      State = "idle"
	StateCommitted State = "committed"
	StateCancelled State = "cancelled"
)

// StepState returns the state for a step of mode.
func StepState(mode Mode, step string) State {
	return State(string(mode) + "_" + step)
}

// ConfirmState returns the confirmation state of mode.
func ConfirmState(mode Mode) State {
	return StepState(mode, "confirm")
}

// Terminal reports whether s ends a session.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateCancelled
}

// FieldValue is one collected answer. Source records which resolution layer produced it.
type FieldValue struct {
	Value    string `json:"value"`
	Verified bool   `json:"verified"`
	Source   string `json:"source,omitempty"`
}

// Slice is the part of a session owned by one mode: pagination cursors and candidate lists per feature.
type Slice struct {
	Cursors  map[string]int      `json:"cursors"`
	Lists    map[string][]string `json:"lists"`
	Universe map[string][]string `json:"universe"`
}

func newSlice() *Slice {
	return &Slice{
		Cursors:  make(map[string]int),
		Lists:    make(map[string][]string),
		Universe: make(map[string][]string),
	}
}

// Session represents the conversation state of one user in memory
type Session struct {
	UserID     string `json:"user_id"`
	State      State  `json:"state"`
	Mode       Mode   `json:"mode"`
	DatabaseID string `json:"database_id"`

	Fields map[string]FieldValue `json:"fields"`
	Items  []Equipment           `json:"items"`
	Slices map[Mode]*Slice       `json:"slices"`

	// AwaitingManual names the feature whose next text message is stored as typed.
	AwaitingManual string `json:"awaiting_manual,omitempty"`
	// Editing names the step being re-entered from confirmation.
	Editing string `json:"editing,omitempty"`
	// RecordID is assigned once when confirmation is first reached and reused on retries.
	RecordID string `json:"record_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(userID string) *Session {
	return &Session{
		UserID:    userID,
		State:     StateIdle,
		Fields:    make(map[string]FieldValue),
		Slices:    make(map[Mode]*Slice),
		UpdatedAt: time.Now(),
	}
}

// Active reports whether a workflow is in progress.
func (s *Session) Active() bool {
	return s.Mode != "" && s.State != StateIdle && !s.State.Terminal()
}

// Slice returns the slice owned by mode, creating it on first use.
func (s *Session) Slice(mode Mode) *Slice {
	if s.Slices == nil {
		s.Slices = make(map[Mode]*Slice)
	}
	sl, ok := s.Slices[mode]
	if !ok {
		sl = newSlice()
		s.Slices[mode] = sl
	}
	return sl
}

func (s *Session) SetField(name, value string, verified bool, source string) {
	if s.Fields == nil {
		s.Fields = make(map[string]FieldValue)
	}
	s.Fields[name] = FieldValue{Value: value, Verified: verified, Source: source}
}

func (s *Session) Field(name string) string {
	return s.Fields[name].Value
}

func (s *Session) HasField(name string) bool {
	_, ok := s.Fields[name]
	return ok
}

// Begin starts mode from a clean slate.
func (s *Session) Begin(mode Mode, databaseID string, first State) {
	s.Reset()
	s.Mode = mode
	s.DatabaseID = databaseID
	s.State = first
}

// Reset drops all workflow data and returns the session to idle.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Mode = ""
	s.DatabaseID = ""
	s.Fields = make(map[string]FieldValue)
	s.Items = nil
	s.Slices = make(map[Mode]*Slice)
	s.AwaitingManual = ""
	s.Editing = ""
	s.RecordID = ""
}
