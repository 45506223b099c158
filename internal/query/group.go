package query

// Group is a composite filter: an ordered list of child nodes.
//
// Children are joined by their own conjunction (the first child's is
// ignored); the group's conjunction joins the group to its own preceding
// sibling. Inactive children and children that compile to nothing are
// skipped, and a group left with no children compiles to nothing.
type Group struct {
	conjunction string
	active      bool
	name        string
	filters     *Collection[Node]
}

func (*Group) filterNode() {}

// NewGroup creates an empty, active group joined with AND.
func NewGroup() *Group {
	return &Group{
		conjunction: DefaultConjunction,
		active:      true,
		filters:     NewFilterCollection(),
	}
}

// NewFilterCollection creates a collection of filter nodes. Data carrying
// a "filters" (or "conditions") key builds a Group; anything else a Filter.
func NewFilterCollection() *Collection[Node] {
	return NewCollection[Node](func(data Data) Node {
		if data != nil {
			if _, ok := data["filters"]; ok {
				return NewGroup()
			}
			if _, ok := data["conditions"]; ok {
				return NewGroup()
			}
		}
		return NewFilter()
	})
}

// Conjunction returns the upper-case conjunction.
func (g *Group) Conjunction() string {
	return g.conjunction
}

// SetConjunction sets how the group joins its preceding sibling.
func (g *Group) SetConjunction(conjunction string) error {
	c, err := normalizeConjunction(conjunction)
	if err != nil {
		return err
	}
	g.conjunction = c
	return nil
}

// Active reports whether the group takes part in compilation.
func (g *Group) Active() bool {
	return g.active
}

// SetActive toggles the group.
func (g *Group) SetActive(active bool) {
	g.active = active
}

// Name identifies the group inside a collection.
func (g *Group) Name() string {
	return g.name
}

// SetName sets the lookup name.
func (g *Group) SetName(name string) {
	g.name = name
}

// Filters returns the children in order.
func (g *Group) Filters() []Node {
	return g.filters.All()
}

// Collection exposes the children collection.
func (g *Group) Collection() *Collection[Node] {
	return g.filters
}

// AddFilter adds a child (see Collection.Process for accepted inputs).
func (g *Group) AddFilter(input any) error {
	return g.filters.Add(input)
}

// AddFilters adds several children (see Collection.AddMany).
func (g *Group) AddFilters(inputs any) error {
	return g.filters.AddMany(inputs)
}

// SetFilters replaces the children.
func (g *Group) SetFilters(inputs any) error {
	return g.filters.Set(inputs)
}

// Count returns the number of children.
func (g *Group) Count() int {
	return g.filters.Len()
}

// SetData applies recognised keys. Unknown keys are ignored.
//
// Keys: conjunction, active, name, filters (alias conditions).
// Deprecated: operand.
func (g *Group) SetData(data Data) error {
	for _, key := range data.sortedKeys() {
		v := data[key]
		key = canonicalKey(key)

		var err error
		switch key {
		case "conjunction":
			var s string
			if s, err = asString(key, v); err == nil {
				err = g.SetConjunction(s)
			}
		case "active":
			var active bool
			if active, err = asBool(key, v); err == nil {
				g.SetActive(active)
			}
		case "name":
			if v == nil {
				g.SetName("")
				continue
			}
			var s string
			if s, err = asString(key, v); err == nil {
				g.SetName(s)
			}
		case "filters", "conditions":
			err = g.filters.AddMany(v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Data exports the group state with canonical keys. Children are exported
// as their own Data, so the result shares nothing with the group.
func (g *Group) Data() Data {
	children := make([]any, 0, g.filters.Len())
	for _, child := range g.filters.All() {
		children = append(children, child.Data())
	}
	return Data{
		"conjunction": g.conjunction,
		"active":      g.active,
		"name":        nilIfEmpty(g.name),
		"filters":     children,
	}
}

// Clone returns a deep copy of the group and all of its descendants.
func (g *Group) Clone() Node {
	return &Group{
		conjunction: g.conjunction,
		active:      g.active,
		name:        g.name,
		filters:     g.filters.Clone(),
	}
}
