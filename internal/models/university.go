package models

// University is an institution students are registered at.
type University struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EntityID implements Entity.
func (u University) EntityID() int64 { return u.ID }

// Input returns the editable fields of the university.
func (u University) Input() UniversityInput {
	return UniversityInput{Name: u.Name}
}

// UniversityInput holds the fields a user can set on a university.
type UniversityInput struct {
	Name string `json:"name" validate:"notblank"`
}

// Build returns the university persisted under id with these fields.
func (in UniversityInput) Build(id int64) University {
	return University{ID: id, Name: in.Name}
}
