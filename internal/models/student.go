package models

// Student represents a learner registered at a university.
//
// University is a denormalized snapshot taken by the gateway, not a live reference.
type Student struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	University University `json:"university"`
}

// EntityID implements Entity.
func (s Student) EntityID() int64 { return s.ID }

// Input returns the editable fields of the student.
func (s Student) Input() StudentInput {
	return StudentInput{Name: s.Name, Address: s.Address, University: s.University}
}

// StudentInput holds the fields a user can set on a student.
type StudentInput struct {
	Name       string     `json:"name" validate:"notblank"`
	Address    string     `json:"address" validate:"notblank"`
	University University `json:"university"`
}

// UniversityID exposes the referenced university id for validation.
func (in StudentInput) UniversityID() int64 { return in.University.ID }

// Build returns the student persisted under id with these fields.
func (in StudentInput) Build(id int64) Student {
	return Student{ID: id, Name: in.Name, Address: in.Address, University: in.University}
}

// StudentDetail is the student page payload with resolved relationships.
type StudentDetail struct {
	Student    Student     `json:"student"`
	University *University `json:"university,omitempty"`
	Courses    []Course    `json:"courses"`
}
