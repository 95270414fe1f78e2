package element

// Type classifies an element. The set is closed.
type Type string

const (
	TypePrimordial Type = "primordial"
	TypeMatter     Type = "matter"
	TypeEnergy     Type = "energy"
	TypeLife       Type = "life"
	TypeTechnology Type = "technology"
	TypeAbstract   Type = "abstract"
	TypeCosmic     Type = "cosmic"
)

var types = []Type{
	TypePrimordial,
	TypeMatter,
	TypeEnergy,
	TypeLife,
	TypeTechnology,
	TypeAbstract,
	TypeCosmic,
}

// Types returns the closed set of element types in declaration order.
func Types() []Type {
	out := make([]Type, len(types))
	copy(out, types)
	return out
}

// Valid reports whether t is one of the enumerated types.
func (t Type) Valid() bool {
	for _, known := range types {
		if t == known {
			return true
		}
	}
	return false
}

// Era is a stage of the progression tree. Eras are stored by display name
// so saves stay readable, and ordered by their position in Eras().
type Era string

const (
	EraGenesis       Era = "创世纪元"
	EraNature        Era = "自然纪元"
	EraLife          Era = "生命起源"
	EraPrimitive     Era = "原始部落"
	EraPreIndustrial Era = "启蒙时代"
	EraIndustrial    Era = "工业革命"
	EraElectric      Era = "电气时代"
	EraInformation   Era = "信息时代"
	EraFuture        Era = "未来科技"
	EraSingularity   Era = "奇点降临"
)

var eras = []Era{
	EraGenesis,
	EraNature,
	EraLife,
	EraPrimitive,
	EraPreIndustrial,
	EraIndustrial,
	EraElectric,
	EraInformation,
	EraFuture,
	EraSingularity,
}

// Eras returns all eras in progression order.
func Eras() []Era {
	out := make([]Era, len(eras))
	copy(out, eras)
	return out
}

// Rank is the zero-based position of e in the progression, or -1 if e is
// empty or unknown.
func (e Era) Rank() int {
	for i, known := range eras {
		if e == known {
			return i
		}
	}
	return -1
}

// Valid reports whether e is one of the ten eras.
func (e Era) Valid() bool {
	return e.Rank() >= 0
}

// Later returns whichever of a and b sits further along the progression.
// Unknown eras rank below Genesis, so Later(unknown, x) is x.
func Later(a, b Era) Era {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
