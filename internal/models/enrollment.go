package models

// StudentCourse links a student to a course.
type StudentCourse struct {
	StudentID int64 `json:"student_id"`
	CourseID  int64 `json:"course_id"`
}

// CourseWithStudents is a display-only pairing produced by the enrollment simulation.
type CourseWithStudents struct {
	Course
	Students []Student `json:"students"`
}
