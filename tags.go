package gdecs

import (
	"strings"
)

// Tag constants
const (
	tagName = "gdecs"
)

// Tag modifiers
const (
	modMut = "mut" // Mutable access
	modOpt = "opt" // Optional (nil if missing)
	modRes = "res" // Resource injection
	modInj = "inj" // Global injection
)

// FieldKind represents the type of field for injection.
type FieldKind int

const (
	// KindEntity indicates a *Entity field
	KindEntity FieldKind = iota
	// KindManager indicates a *Manager field
	KindManager
	// KindHandle indicates a NodeHandle field, filled with the entity's handle
	KindHandle
	// KindComponent indicates a component field
	KindComponent
	// KindResource indicates a shared resource field
	KindResource
	// KindInjection indicates a global injection field
	KindInjection
	// KindPhantomWith indicates a With[T] phantom type
	KindPhantomWith
	// KindPhantomWithout indicates a Without[T] phantom type
	KindPhantomWithout
	// KindPayload indicates a non-injected payload field
	KindPayload
)

// String returns the string representation of FieldKind.
func (k FieldKind) String() string {
	switch k {
	case KindEntity:
		return "Entity"
	case KindManager:
		return "Manager"
	case KindHandle:
		return "Handle"
	case KindComponent:
		return "Component"
	case KindResource:
		return "Resource"
	case KindInjection:
		return "Injection"
	case KindPhantomWith:
		return "PhantomWith"
	case KindPhantomWithout:
		return "PhantomWithout"
	case KindPayload:
		return "Payload"
	default:
		return "Unknown"
	}
}

// TagInfo holds parsed tag information.
type TagInfo struct {
	Mutable  bool // gdecs:"mut"
	Optional bool // gdecs:"opt"
	Resource bool // gdecs:"res"
	Inject   bool // gdecs:"inj"
}

// parseTag parses a gdecs struct tag.
func parseTag(tag string) TagInfo {
	info := TagInfo{}
	if tag == "" {
		return info
	}

	for part := range strings.SplitSeq(tag, ",") {
		switch strings.TrimSpace(part) {
		case modMut:
			info.Mutable = true
		case modOpt:
			info.Optional = true
		case modRes:
			info.Resource = true
		case modInj:
			info.Inject = true
		}
	}

	return info
}
