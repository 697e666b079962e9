package conversation

import (
	"context"

	"itinvent-bot/pkg/inventory"
	"itinvent-bot/pkg/store"
)

type StepKind int

const (
	// StepPhotos collects a batch of existing equipment by photo or typed serial until "done".
	StepPhotos StepKind = iota
	// StepSerial takes one serial by photo or text.
	StepSerial
	StepText
	// StepSuggest ranks typed text against a backend list.
	StepSuggest
	StepBranch
	StepLocation
	// StepList pages through a backend list.
	StepList
	StepChoice
)

type SerialPolicy int

const (
	// SerialExisting requires the serial to be present in the backend.
	SerialExisting SerialPolicy = iota
	// SerialUnknown requires the serial to be absent from the backend and from earlier records.
	SerialUnknown
)

type Choice struct {
	Key   string
	Label string
}

// Step is one data-collection state. Its Name doubles as field name and token feature.
type Step struct {
	Name     string
	Kind     StepKind
	Label    string
	Prompt   string
	Optional bool

	Choices  []Choice
	Serial   SerialPolicy
	Universe func(ctx context.Context, b inventory.Backend) ([]string, error)
	Validate func(string) (string, error)
	// When hides the step unless it returns true.
	When func(sess *store.Session) bool
	// After runs once the step has a value, before moving on.
	After func(ctx context.Context, sess *store.Session, b inventory.Backend)
}

func (s Step) applies(sess *store.Session) bool {
	return s.When == nil || s.When(sess)
}

func (s Step) choice(key string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.Key == key {
			return c, true
		}
	}
	return Choice{}, false
}

// Flow is the ordered step graph of one workflow mode.
type Flow struct {
	Mode  store.Mode
	Title string
	Steps []Step
	// Extra names fields set by hooks rather than by a step.
	Extra []string
	Done  string
}

func (f *Flow) index(name string) int {
	for i, s := range f.Steps {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (f *Flow) step(name string) (Step, bool) {
	if i := f.index(name); i >= 0 {
		return f.Steps[i], true
	}
	return Step{}, false
}

// current returns the step the session is in, if any.
func (f *Flow) current(sess *store.Session) (Step, int, bool) {
	for i, s := range f.Steps {
		if store.StepState(f.Mode, s.Name) == sess.State {
			return s, i, true
		}
	}
	return Step{}, -1, false
}

func (f *Flow) applicable(sess *store.Session) []Step {
	out := make([]Step, 0, len(f.Steps))
	for _, s := range f.Steps {
		if s.applies(sess) {
			out = append(out, s)
		}
	}
	return out
}

func filled(sess *store.Session, s Step) bool {
	if s.Kind == StepPhotos {
		return len(sess.Items) > 0
	}
	return sess.HasField(s.Name)
}

func fieldIs(name string, keys ...string) func(*store.Session) bool {
	return func(sess *store.Session) bool {
		v := sess.Field(name)
		for _, k := range keys {
			if v == k {
				return true
			}
		}
		return false
	}
}

func fieldIsNot(name string, keys ...string) func(*store.Session) bool {
	is := fieldIs(name, keys...)
	return func(sess *store.Session) bool { return !is(sess) }
}

func employees(ctx context.Context, b inventory.Backend) ([]string, error) {
	return b.Employees(ctx)
}

func models(ctx context.Context, b inventory.Backend) ([]string, error) {
	return b.Models(ctx)
}

func equipmentTypes(ctx context.Context, b inventory.Backend) ([]string, error) {
	return b.EquipmentTypes(ctx)
}

func statuses(ctx context.Context, b inventory.Backend) ([]string, error) {
	return b.Statuses(ctx)
}

func (e *Engine) transferFlow() *Flow {
	return &Flow{
		Mode:  store.ModeTransfer,
		Title: "Equipment transfer",
		Done:  "Transfer saved.",
		Extra: []string{"department"},
		Steps: []Step{
			{
				Name:   "photos",
				Kind:   StepPhotos,
				Label:  "Equipment",
				Prompt: "Send photos of the serial number labels or type the serial numbers. Press Done when every item is added.",
			},
			{
				Name:     "employee",
				Kind:     StepSuggest,
				Label:    "New owner",
				Prompt:   "Type the name of the employee receiving the equipment.",
				Universe: employees,
				Validate: e.validator.Person,
				After:    e.resolveDepartment,
			},
			{Name: "branch", Kind: StepBranch, Label: "Branch", Validate: e.validator.Name},
			{Name: "location", Kind: StepLocation, Label: "Location", Validate: e.validator.Name},
		},
	}
}

func (e *Engine) workFlow() *Flow {
	cartridge := fieldIs("type", "cartridge")
	return &Flow{
		Mode:  store.ModeWork,
		Title: "Maintenance work",
		Done:  "Work saved.",
		Steps: []Step{
			{
				Name:   "type",
				Kind:   StepChoice,
				Label:  "Work type",
				Prompt: "What work was done?",
				Choices: []Choice{
					{Key: "cartridge", Label: "Printer consumable replacement"},
					{Key: "battery", Label: "UPS battery replacement"},
					{Key: "component", Label: "PC component replacement"},
					{Key: "cleaning", Label: "Equipment cleaning"},
				},
			},
			{Name: "branch", Kind: StepBranch, Label: "Branch", When: cartridge, Validate: e.validator.Name},
			{Name: "location", Kind: StepLocation, Label: "Location", When: cartridge, Validate: e.validator.Name},
			{
				Name:     "model",
				Kind:     StepSuggest,
				Label:    "Printer model",
				Prompt:   "Type the printer model.",
				Universe: models,
				Validate: e.validator.Name,
				When:     cartridge,
			},
			{
				Name:   "component",
				Kind:   StepChoice,
				Label:  "Replaced part",
				Prompt: "Which part was replaced?",
				When:   cartridge,
				Choices: []Choice{
					{Key: "toner", Label: "Toner cartridge"},
					{Key: "drum", Label: "Drum unit"},
					{Key: "fuser", Label: "Fuser"},
					{Key: "waste", Label: "Waste toner container"},
					{Key: "belt", Label: "Transfer belt"},
				},
			},
			{
				Name:   "color",
				Kind:   StepChoice,
				Label:  "Color",
				Prompt: "Which color?",
				When: func(sess *store.Session) bool {
					return cartridge(sess) && sess.Field("component") == "toner"
				},
				Choices: []Choice{
					{Key: "black", Label: "Black"},
					{Key: "cyan", Label: "Cyan"},
					{Key: "magenta", Label: "Magenta"},
					{Key: "yellow", Label: "Yellow"},
				},
			},
			{
				Name:   "serial",
				Kind:   StepSerial,
				Label:  "Serial number",
				Prompt: "Send a photo of the serial number label or type the serial number.",
				Serial: SerialExisting,
				When:   fieldIsNot("type", "cartridge"),
			},
			{
				Name:   "pc_component",
				Kind:   StepChoice,
				Label:  "Component",
				Prompt: "Which component was replaced?",
				When:   fieldIs("type", "component"),
				Choices: []Choice{
					{Key: "storage", Label: "HDD / SSD"},
					{Key: "ram", Label: "Memory"},
					{Key: "psu", Label: "Power supply"},
					{Key: "gpu", Label: "Graphics card"},
					{Key: "cooler", Label: "Cooler"},
					{Key: "motherboard", Label: "Motherboard"},
					{Key: "other", Label: "Other"},
				},
			},
		},
	}
}

func (e *Engine) unfoundFlow() *Flow {
	return &Flow{
		Mode:  store.ModeUnfound,
		Title: "Unfound equipment",
		Done:  "Unfound equipment registered.",
		Steps: []Step{
			{
				Name:   "serial",
				Kind:   StepSerial,
				Label:  "Serial number",
				Prompt: "Send a photo of the serial number label or type the serial number of the equipment.",
				Serial: SerialUnknown,
			},
			{
				Name:     "employee",
				Kind:     StepSuggest,
				Label:    "Employee",
				Prompt:   "Type the name of the employee using the equipment.",
				Universe: employees,
				Validate: e.validator.Person,
			},
			{
				Name:     "type",
				Kind:     StepSuggest,
				Label:    "Equipment type",
				Prompt:   "Type the equipment type, for example \"Monitor\".",
				Universe: equipmentTypes,
				Validate: e.validator.Name,
			},
			{
				Name:     "model",
				Kind:     StepSuggest,
				Label:    "Model",
				Prompt:   "Type the model.",
				Universe: models,
				Validate: e.validator.Name,
			},
			{
				Name:     "description",
				Kind:     StepText,
				Label:    "Description",
				Prompt:   "Describe the equipment or press Skip.",
				Optional: true,
				Validate: e.validator.Text,
			},
			{
				Name:     "inventory",
				Kind:     StepText,
				Label:    "Inventory number",
				Prompt:   "Type the inventory number or press Skip.",
				Optional: true,
				Validate: e.validator.InventoryNumber,
			},
			{
				Name:     "ip",
				Kind:     StepText,
				Label:    "IP address",
				Prompt:   "Type the IP address or press Skip.",
				Optional: true,
				Validate: e.validator.IP,
			},
			{Name: "branch", Kind: StepBranch, Label: "Branch", Validate: e.validator.Name},
			{Name: "location", Kind: StepLocation, Label: "Location", Validate: e.validator.Name},
			{
				Name:     "status",
				Kind:     StepList,
				Label:    "Status",
				Prompt:   "Choose the equipment status or press Skip.",
				Optional: true,
				Universe: statuses,
				Validate: e.validator.Name,
			},
		},
	}
}
