package world

// document mirrors the TOML layout of a world file.
type document struct {
	Package      string        `toml:"package"`
	LiteralClass string        `toml:"literal_class"`
	Classes      []classDoc    `toml:"class"`
	Funs         []funDoc      `toml:"fun"`
	Properties   []propertyDoc `toml:"property"`
	Locals       []localDoc    `toml:"local"`
	Contexts     []contextDoc  `toml:"context"`
	Calls        []callDoc     `toml:"call"`
}

type classDoc struct {
	Name       string   `toml:"name"`
	Package    string   `toml:"package"`
	Outer      string   `toml:"outer"`
	Kind       string   `toml:"kind"` // class, interface, object, companion
	Inner      bool     `toml:"inner"`
	Supertypes []string `toml:"supertypes"`
}

// ownerDoc places a declaration; at most one of Class and Local is set.
type ownerDoc struct {
	Package string `toml:"package"`
	Class   string `toml:"class"`
	Local   string `toml:"local"`
}

type funDoc struct {
	Name     string   `toml:"name"`
	Package  string   `toml:"package"`
	Class    string   `toml:"class"`
	Local    string   `toml:"local"`
	Receiver string   `toml:"receiver"`
	Params   []string `toml:"params"`
	Result   string   `toml:"result"`
	Flags    []string `toml:"flags"`
}

func (d funDoc) owner() ownerDoc { return ownerDoc{Package: d.Package, Class: d.Class, Local: d.Local} }

type propertyDoc struct {
	Name     string   `toml:"name"`
	Package  string   `toml:"package"`
	Class    string   `toml:"class"`
	Local    string   `toml:"local"`
	Receiver string   `toml:"receiver"`
	Type     string   `toml:"type"`
	Flags    []string `toml:"flags"`
}

func (d propertyDoc) owner() ownerDoc { return ownerDoc{Package: d.Package, Class: d.Class, Local: d.Local} }

type localDoc struct {
	Name string `toml:"name"`
}

type contextDoc struct {
	Name      string        `toml:"name"`
	Locals    []string      `toml:"locals"`
	Imports   []string      `toml:"imports"`
	Receivers []receiverDoc `toml:"receivers"`
}

// receiverDoc is either a dispatch receiver (a class) or an extension
// receiver (any type).
type receiverDoc struct {
	Dispatch  string `toml:"dispatch"`
	Extension string `toml:"extension"`
	Label     string `toml:"label"`
}

type callDoc struct {
	ID         string   `toml:"id"`
	Context    string   `toml:"context"`
	Kind       string   `toml:"kind"` // function, variable, reference
	Name       string   `toml:"name"`
	Receiver   string   `toml:"receiver"`  // "text: Type"
	Qualifier  string   `toml:"qualifier"` // package or class path
	Args       []string `toml:"args"`
	Safe       bool     `toml:"safe"`
	Stub       string   `toml:"stub"`
	Expect     string   `toml:"expect"`
	Outcome    string   `toml:"outcome"`
	Candidates []string `toml:"candidates"`
	Group      string   `toml:"group"`
}
