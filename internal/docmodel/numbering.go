package docmodel

// Number formats for numbering levels.
const (
	FormatBullet      = "bullet"
	FormatDecimal     = "decimal"
	FormatLowerLetter = "lowerLetter"
	FormatLowerRoman  = "lowerRoman"
)

// NumberingLevel defines how one list level is numbered and indented.
type NumberingLevel struct {
	Level  int
	Start  int
	Format string
	Text   string
	Indent Indent
	// Font is the symbol font for bullet glyphs; EastAsiaFont is optional.
	Font         string
	EastAsiaFont string
	ComplexFont  string
}

// AbstractNumbering is a multi-level numbering definition.
type AbstractNumbering struct {
	ID     int
	Levels []*NumberingLevel
}

// NumberingInstance binds a numbering id to an abstract definition.
type NumberingInstance struct {
	ID         int
	AbstractID int
}

// Numbering collects the list definitions created during one run. IDs
// continue from the highest ids already present in the output template.
type Numbering struct {
	Abstracts []*AbstractNumbering
	Instances []*NumberingInstance

	maxAbstract int
	maxInstance int
}

// Seed makes new ids start after the given existing maxima.
func (n *Numbering) Seed(maxAbstract, maxInstance int) {
	if maxAbstract > n.maxAbstract {
		n.maxAbstract = maxAbstract
	}
	if maxInstance > n.maxInstance {
		n.maxInstance = maxInstance
	}
}

// Add registers a new abstract definition plus one instance of it and
// returns the instance id.
func (n *Numbering) Add(levels []*NumberingLevel) int {
	n.maxAbstract++
	n.maxInstance++
	n.Abstracts = append(n.Abstracts, &AbstractNumbering{ID: n.maxAbstract, Levels: levels})
	n.Instances = append(n.Instances, &NumberingInstance{ID: n.maxInstance, AbstractID: n.maxAbstract})
	return n.maxInstance
}

// AbstractFor returns the abstract definition behind instance id, or nil.
func (n *Numbering) AbstractFor(id int) *AbstractNumbering {
	for _, inst := range n.Instances {
		if inst.ID != id {
			continue
		}
		for _, a := range n.Abstracts {
			if a.ID == inst.AbstractID {
				return a
			}
		}
	}
	return nil
}

// Empty reports whether nothing has been registered.
func (n *Numbering) Empty() bool {
	return len(n.Instances) == 0
}
