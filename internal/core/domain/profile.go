package domain

import "strings"

// ProfileKeyField is the document field holding the owning user id.
const ProfileKeyField = "firebaseUserId"

// reservedProperties cannot be written through the field API: overwriting
// them would detach the document from its owner.
var reservedProperties = map[string]struct{}{
	ProfileKeyField: {},
	"_id":           {},
}

// ProfileDocument is a loosely typed per-user document.
type ProfileDocument map[string]any

// Field returns the named value and whether it is set.
func (d ProfileDocument) Field(name string) (any, bool) {
	v, ok := d[name]
	return v, ok
}

// IsReservedProperty reports whether name may not be written by callers.
func IsReservedProperty(name string) bool {
	_, ok := reservedProperties[name]
	return ok
}

// ValidatePropertyName reports whether name can be written as a top-level
// field. Dots address nested paths and a leading $ names an operator in the
// store's update language, so neither round-trips as a plain key.
func ValidatePropertyName(name string) error {
	if IsReservedProperty(name) {
		return ErrReservedProperty
	}
	if name == "" || strings.HasPrefix(name, "$") || strings.ContainsAny(name, ".\x00") {
		return ErrInvalidProperty
	}
	return nil
}
