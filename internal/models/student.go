package models

import "time"

// YearLevel identifies the grade a student is enrolled into.
type YearLevel string

const (
	YearLevel1     YearLevel = "year-1"
	YearLevel2     YearLevel = "year-2"
	YearLevel3     YearLevel = "year-3"
	YearLevel4     YearLevel = "year-4"
	YearLevel5     YearLevel = "year-5"
	YearLevel6     YearLevel = "year-6"
	YearLevel7     YearLevel = "year-7"
	YearLevel8     YearLevel = "year-8"
	YearLevel9     YearLevel = "year-9"
	YearLevelIGCSE YearLevel = "igcse"
)

// Campus identifies the campus a student attends.
type Campus string

const (
	CampusMain  Campus = "main-campus"
	CampusNorth Campus = "north-campus"
	CampusSouth Campus = "south-campus"
	CampusEast  Campus = "east-campus"
)

// Student represents a learner registered for fee tracking.
type Student struct {
	ID             int64     `db:"id" json:"id"`
	StudentName    string    `db:"student_name" json:"studentName"`
	DateOfBirth    time.Time `db:"date_of_birth" json:"dateOfBirth"`
	FatherName     *string   `db:"father_name" json:"fatherName,omitempty"`
	MotherName     *string   `db:"mother_name" json:"motherName,omitempty"`
	GuardianName   *string   `db:"guardian_name" json:"guardianName,omitempty"`
	ContactNumber  string    `db:"contact_number" json:"contactNumber"`
	AcademicYear   string    `db:"academic_year" json:"academicYear"`
	IsNewStudent   bool      `db:"is_new_student" json:"isNewStudent"`
	YearLevel      YearLevel `db:"year_level" json:"yearLevel"`
	SchoolLocation string    `db:"school_location" json:"schoolLocation"`
	Campus         Campus    `db:"campus" json:"campus"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
