package model

// LayerName identifies one of the five canonical instruction layers.
// Values are ordered: the iota order is the canonical layer order.
type LayerName int

const (
	LayerImmutableContext LayerName = iota
	LayerCapabilityDeclaration
	LayerSessionState
	LayerTaskPayload
	LayerOutputContract
)

// LayerCount is the number of canonical layers in every instruction.
const LayerCount = 5

// CanonicalOrder lists the layer names in the only valid order.
var CanonicalOrder = [LayerCount]LayerName{
	LayerImmutableContext,
	LayerCapabilityDeclaration,
	LayerSessionState,
	LayerTaskPayload,
	LayerOutputContract,
}

func (n LayerName) String() string {
	switch n {
	case LayerImmutableContext:
		return "IMMUTABLE_CONTEXT"
	case LayerCapabilityDeclaration:
		return "CAPABILITY_DECLARATION"
	case LayerSessionState:
		return "SESSION_STATE"
	case LayerTaskPayload:
		return "TASK_PAYLOAD"
	case LayerOutputContract:
		return "OUTPUT_CONTRACT"
	default:
		return "UNKNOWN"
	}
}

// Lifetime returns the context lifetime the layer is declared with.
func (n LayerName) Lifetime() string {
	switch n {
	case LayerImmutableContext, LayerCapabilityDeclaration:
		return "permanent"
	case LayerSessionState:
		return "session"
	case LayerTaskPayload, LayerOutputContract:
		return "invocation"
	default:
		return "unknown"
	}
}

// Valid reports whether n is one of the five canonical names.
func (n LayerName) Valid() bool {
	return n >= LayerImmutableContext && n <= LayerOutputContract
}

// MarshalText renders the canonical label.
func (n LayerName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// ParseLayerName maps a canonical label to its LayerName.
// Matching is exact and case-sensitive.
func ParseLayerName(label string) (LayerName, bool) {
	for _, n := range CanonicalOrder {
		if n.String() == label {
			return n, true
		}
	}
	return 0, false
}

// Span is a half-open byte range into the instruction text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Layer is one delimited section of an instruction.
type Layer struct {
	Name    LayerName `json:"name"`
	Content string    `json:"content"`
	Span    Span      `json:"byte_range"`
	Line    int       `json:"line"` // 1-based line of the opening marker
}

// Layers holds exactly one layer per canonical name, indexed by LayerName.
// Only the segment package constructs a populated Layers value, after the
// presence and order checks have passed.
type Layers [LayerCount]Layer

// Get returns the layer with the given name.
func (ls *Layers) Get(name LayerName) Layer {
	return ls[name]
}

// Slice returns the layers in canonical order.
func (ls *Layers) Slice() []Layer {
	out := make([]Layer, 0, LayerCount)
	for _, n := range CanonicalOrder {
		out = append(out, ls[n])
	}
	return out
}
