package models

// Kind names one of the resource kinds exposed by the API gateway.
type Kind string

const (
	KindStudent    Kind = "student"
	KindCourse     Kind = "course"
	KindUniversity Kind = "university"
)

// Plural returns the collection segment used in gateway routes.
func (k Kind) Plural() string {
	switch k {
	case KindStudent:
		return "students"
	case KindCourse:
		return "courses"
	case KindUniversity:
		return "universities"
	default:
		return string(k) + "s"
	}
}

// ParseKind accepts either the singular or plural form.
func ParseKind(raw string) (Kind, bool) {
	for _, k := range []Kind{KindStudent, KindCourse, KindUniversity} {
		if raw == string(k) || raw == k.Plural() {
			return k, true
		}
	}
	return "", false
}

// Entity is implemented by every record kept in an entity store.
type Entity interface {
	EntityID() int64
}
