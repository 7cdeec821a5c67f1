package models

// Course is an offering students can enroll in.
type Course struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Schedule    string `json:"schedule"`
}

// EntityID implements Entity.
func (c Course) EntityID() int64 { return c.ID }

// Input returns the editable fields of the course.
func (c Course) Input() CourseInput {
	return CourseInput{Name: c.Name, Description: c.Description, Category: c.Category, Schedule: c.Schedule}
}

// CourseInput holds the fields a user can set on a course.
type CourseInput struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"notblank"`
	Schedule    string `json:"schedule" validate:"notblank"`
}

// Build returns the course persisted under id with these fields.
func (in CourseInput) Build(id int64) Course {
	return Course{ID: id, Name: in.Name, Description: in.Description, Category: in.Category, Schedule: in.Schedule}
}
