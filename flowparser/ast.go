package flowparser

// Shape is the drawn outline of a state in the diagram.
type Shape string

const (
	ShapeRect    Shape = "rect"
	ShapeRound   Shape = "round"
	ShapeDiamond Shape = "diamond"
	ShapeCircle  Shape = "circle"
)

// StateType discriminates ordinary states from terminal ones.
type StateType string

const (
	StateNormal StateType = "normal"
	StateFinal  StateType = "final"
)

// TransitionType classifies what drives a transition.
type TransitionType string

const (
	TransitionUserInput TransitionType = "user_input"
	TransitionError     TransitionType = "error"
	TransitionTimeout   TransitionType = "timeout"
	TransitionExternal  TransitionType = "external"
	TransitionPlain     TransitionType = "plain"
)

// Category is the domain tag a machine belongs to, assigned via a
// style-class annotation in the diagram. Empty means unassigned.
type Category string

const (
	CategoryUser    Category = "user"
	CategoryAdmin   Category = "admin"
	CategoryPayment Category = "payment"
	CategorySystem  Category = "system"
)

// categoryTags is the fixed set of recognized category class names.
var categoryTags = map[string]Category{
	"user":    CategoryUser,
	"admin":   CategoryAdmin,
	"payment": CategoryPayment,
	"system":  CategorySystem,
}

// StateSpec is one parsed state.
type StateSpec struct {
	ID      string
	Shape   Shape
	Label   string
	Classes []string
	Type    StateType
	Line    int // source line of the first mention
}

// HasClass reports whether the state carries the given style class.
func (s *StateSpec) HasClass(name string) bool {
	for _, c := range s.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// TransitionSpec is one parsed transition between two states.
type TransitionSpec struct {
	From   string
	To     string
	Label  string // raw label text, empty for plain arrows
	Guard  string // extracted from "guard:Name" or "[Name]" labels
	Action string // extracted from "action:Name" labels
	Type   TransitionType
	Line   int
}

// MachineSpec is the parsed, structured representation of one diagram
// block as a state/transition graph plus metadata.
type MachineSpec struct {
	ID           string
	Name         string
	Category     Category
	InitialState string
	States       []*StateSpec
	Transitions  []*TransitionSpec
	StyleDefs    map[string]string // classDef name -> style text
	Source       string            // originating path or "inline"
}

// StateByID returns the state with the given id, or nil.
func (m *MachineSpec) StateByID(id string) *StateSpec {
	for _, s := range m.States {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// TransitionsFrom returns all transitions originating from the given state id.
func (m *MachineSpec) TransitionsFrom(id string) []*TransitionSpec {
	var out []*TransitionSpec
	for _, t := range m.Transitions {
		if t.From == id {
			out = append(out, t)
		}
	}
	return out
}

// TransitionsTo returns all transitions targeting the given state id.
func (m *MachineSpec) TransitionsTo(id string) []*TransitionSpec {
	var out []*TransitionSpec
	for _, t := range m.Transitions {
		if t.To == id {
			out = append(out, t)
		}
	}
	return out
}
