package domain

// MoveMethod determines how mod files travel between profile directories and the active area
type MoveMethod int

const (
	MoveRename MoveMethod = iota // Default: rename (falls back to copy across filesystems)
	MoveCopy                     // Copy then remove source (for mods roots spanning mounts)
)

func (m MoveMethod) String() string {
	switch m {
	case MoveRename:
		return "rename"
	case MoveCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// ParseMoveMethod converts a string to MoveMethod
func ParseMoveMethod(s string) MoveMethod {
	switch s {
	case "copy":
		return MoveCopy
	default:
		return MoveRename
	}
}
