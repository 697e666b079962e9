package render

// Kind tells the transport adapter how to present a Render.
type Kind string

const (
	KindPrompt       Kind = "prompt"
	KindList         Kind = "list"
	KindConfirmation Kind = "confirmation"
	KindTerminal     Kind = "terminal"
	KindResult       Kind = "result"
	KindClarify      Kind = "clarify"
	KindDenied       Kind = "denied"
	KindBusy         Kind = "busy"
	KindError        Kind = "error"
)

type Button struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Line is one row of a confirmation summary or a search result card.
type Line struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	Unverified bool   `json:"unverified,omitempty"`
}

// Render is the transport-neutral reply produced for every inbound event.
type Render struct {
	Kind       Kind     `json:"kind"`
	Text       string   `json:"text"`
	Buttons    []Button `json:"buttons,omitempty"`
	Navigation []Button `json:"navigation,omitempty"`
	Page       int      `json:"page,omitempty"`
	Pages      int      `json:"pages,omitempty"`
	Summary    []Line   `json:"summary,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	// File references a workbook the transport should attach to the reply.
	File string `json:"file,omitempty"`
}

func Prompt(text string, buttons ...Button) *Render {
	return &Render{Kind: KindPrompt, Text: text, Buttons: buttons}
}

func Clarify(text string, buttons ...Button) *Render {
	return &Render{Kind: KindClarify, Text: text, Buttons: buttons}
}

func Terminal(text string) *Render {
	return &Render{Kind: KindTerminal, Text: text}
}

func Denied(text string) *Render {
	return &Render{Kind: KindDenied, Text: text}
}

func Busy(text string) *Render {
	return &Render{Kind: KindBusy, Text: text}
}

// Failure reports a backend or collaborator error. Retryable failures keep the session where it was.
func Failure(text string, retryable bool, buttons ...Button) *Render {
	return &Render{Kind: KindError, Text: text, Retryable: retryable, Buttons: buttons}
}

func Confirmation(text string, summary []Line, buttons ...Button) *Render {
	return &Render{Kind: KindConfirmation, Text: text, Summary: summary, Buttons: buttons}
}

func Result(text string, summary []Line, buttons ...Button) *Render {
	return &Render{Kind: KindResult, Text: text, Summary: summary, Buttons: buttons}
}

// With appends buttons and returns r for chaining.
func (r *Render) With(buttons ...Button) *Render {
	r.Buttons = append(r.Buttons, buttons...)
	return r
}
