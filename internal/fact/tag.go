package fact

// Datatype tags carried in the top byte of object identifiers. Subjects and
// predicates are always IRIs and carry no tag.
const (
	TagIRI    uint8 = 0x01
	TagString uint8 = 0x02
	TagInt    uint8 = 0x03
	TagBool   uint8 = 0x04
)

const tagShift = 56

// valueMask keeps the low 56 bits of a hash; the top byte belongs to the tag.
const valueMask = (uint64(1) << tagShift) - 1

// Tagged combines a datatype tag and a hash into one object identifier.
func Tagged(tag uint8, hash uint64) uint64 {
	return uint64(tag)<<tagShift | (hash & valueMask)
}

// TagOf extracts the datatype tag from an object identifier.
func TagOf(id uint64) uint8 {
	return uint8(id >> tagShift)
}

// TagByName resolves a datatype name to its tag.
func TagByName(name string) (uint8, bool) {
	switch name {
	case "iri":
		return TagIRI, true
	case "string":
		return TagString, true
	case "integer":
		return TagInt, true
	case "boolean":
		return TagBool, true
	default:
		return 0, false
	}
}

// TagName returns a human-readable name for a datatype tag.
func TagName(tag uint8) string {
	switch tag {
	case TagIRI:
		return "iri"
	case TagString:
		return "string"
	case TagInt:
		return "integer"
	case TagBool:
		return "boolean"
	default:
		return "unknown"
	}
}
