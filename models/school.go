// Package models defines data structures for the scraper.
package models

import (
	"fmt"
	"time"
)

// NoInformation replaces empty sections in serialized records.
const NoInformation = "No information available"

// SchoolRecord is one school's extracted profile.
type SchoolRecord struct {
	Name             string
	Link             string
	SchoolFee        FeeInfo
	Programs         []Program
	Enrollment       EnrollmentInfo
	Events           []Event
	Scholarships     []Scholarship
	Facilities       []Facility
	Faculty          []FacultyInfo
	Achievements     []Achievement
	MarketingContent MarketingContent
	TechnicalData    TechnicalData
	StudentLife      StudentLife
	Contact          ContactInfo
	Notes            string
}

// NewSchoolRecord returns an empty record stamped with the creation time.
func NewSchoolRecord(name, link string) *SchoolRecord {
	return &SchoolRecord{
		Name:  name,
		Link:  link,
		Notes: ScrapedAtNote(time.Now()),
	}
}

// ErrorRecord returns a record that only carries identity and a failure note.
func ErrorRecord(name, link, note string) *SchoolRecord {
	r := NewSchoolRecord(name, link)
	r.Notes = note
	return r
}

// ScrapedAtNote is the default note attached to new records.
func ScrapedAtNote(t time.Time) string {
	return fmt.Sprintf("Scraped at %s", t.Format("2006-01-02 15:04:05"))
}

// FeeInfo holds tuition and fee information.
type FeeInfo struct {
	AcademicYear   string
	TuitionByLevel map[string]TuitionLevel
	OtherFees      []OtherFee
	DueDates       []DueDate
}

// IsEmpty reports whether no fee field is set. Due dates alone make the
// fee info non-empty.
func (f FeeInfo) IsEmpty() bool {
	return f.AcademicYear == "" && len(f.TuitionByLevel) == 0 && len(f.OtherFees) == 0 && len(f.DueDates) == 0
}

// TuitionLevel is the fee breakdown for one grade or program level.
type TuitionLevel struct {
	Annual      Amount
	Semester1   Amount
	Semester2   Amount
	Description string
}

// IsEmpty reports whether the level has no amounts and no description.
func (t TuitionLevel) IsEmpty() bool {
	return t.Annual.IsZero() && t.Semester1.IsZero() && t.Semester2.IsZero() && t.Description == ""
}

// OtherFee is a named charge outside tuition, such as a registration fee.
type OtherFee struct {
	Name        string
	Amount      Amount
	Description string
}

// DueDate is a payment deadline for one period.
type DueDate struct {
	Period string
	Date   string
}

// Program is an academic program offered at a grade level.
type Program struct {
	Name        string
	GradeLevel  string
	Description string
}

// EnrollmentInfo holds admission requirements and the application process.
type EnrollmentInfo struct {
	Requirements []string
	Documents    []string
	ProcessSteps []ProcessStep
}

// IsEmpty reports whether no requirement, document or step is listed.
func (e EnrollmentInfo) IsEmpty() bool {
	return len(e.Requirements) == 0 && len(e.Documents) == 0 && len(e.ProcessSteps) == 0
}

// ProcessStep is one numbered step of the application process.
type ProcessStep struct {
	Step        string
	Description string
}

// Event is an upcoming school event.
type Event struct {
	Name        string
	Date        string
	Description string
}

// Scholarship is a scholarship or discount with its eligibility rules.
type Scholarship struct {
	Name        string
	Eligibility string
	Amount      Amount
	Description string
}

// ContactInfo holds the school's contact channels.
type ContactInfo struct {
	Address      string
	PhoneNumbers []string
	Email        string
	Website      string
	SocialMedia  map[string]string
}

// IsEmpty reports whether no contact channel is set. Social media links
// alone make the contact info non-empty.
func (c ContactInfo) IsEmpty() bool {
	return c.Address == "" && len(c.PhoneNumbers) == 0 && c.Email == "" && c.Website == "" && len(c.SocialMedia) == 0
}

// Facility is a campus facility such as a library or laboratory.
type Facility struct {
	Name        string
	Type        string
	Description string
	Features    []string
}

// IsEmpty reports whether every facility field is empty.
func (f Facility) IsEmpty() bool {
	return f.Name == "" && f.Type == "" && f.Description == "" && len(f.Features) == 0
}

// FacultyMember is a notable member of a department.
type FacultyMember struct {
	Name     string
	Position string
	Bio      string
}

// FacultyInfo describes one department.
type FacultyInfo struct {
	Department     string
	StaffCount     string
	Qualifications string
	NotableMembers []FacultyMember
}

// IsEmpty reports whether every department field is empty.
func (f FacultyInfo) IsEmpty() bool {
	return f.Department == "" && f.StaffCount == "" && f.Qualifications == "" && len(f.NotableMembers) == 0
}

// Achievement is an award, accreditation or recognition.
type Achievement struct {
	Type        string
	Name        string
	Year        string
	Description string
	IssuingBody string
}

// IsEmpty reports whether every achievement field is empty.
func (a Achievement) IsEmpty() bool {
	return a.Type == "" && a.Name == "" && a.Year == "" && a.Description == "" && a.IssuingBody == ""
}

// MarketingContent holds the school's taglines and messaging.
type MarketingContent struct {
	Taglines          []string
	ValuePropositions []string
	KeyMessaging      []string
	ContentStrategy   string
}

// IsEmpty reports whether no marketing field is set.
func (m MarketingContent) IsEmpty() bool {
	return len(m.Taglines) == 0 && len(m.ValuePropositions) == 0 && len(m.KeyMessaging) == 0 && m.ContentStrategy == ""
}

// TechnicalData describes the school's technology and digital platforms.
type TechnicalData struct {
	TechnologyInfrastructure string
	DigitalPlatforms         []string
	LearningManagementSystem string
	TechInitiatives          []string
}

// IsEmpty reports whether no technical field is set.
func (t TechnicalData) IsEmpty() bool {
	return t.TechnologyInfrastructure == "" && len(t.DigitalPlatforms) == 0 && t.LearningManagementSystem == "" && len(t.TechInitiatives) == 0
}

// Club is a student club or organization.
type Club struct {
	Name        string
	Description string
}

// Testimonial is a quote attributed to a student, parent or alumnus.
type Testimonial struct {
	Quote  string
	Source string
}

// Partnership is an external partner and the nature of the partnership.
type Partnership struct {
	Partner string
	Nature  string
}

// StudentLife groups clubs, testimonials, partnerships and activities.
type StudentLife struct {
	ClubsOrganizations []Club
	Testimonials       []Testimonial
	Partnerships       []Partnership
	Activities         []string
	CampusLife         string
}

// IsEmpty reports whether no student-life field is set.
func (s StudentLife) IsEmpty() bool {
	return len(s.ClubsOrganizations) == 0 && len(s.Testimonials) == 0 && len(s.Partnerships) == 0 && len(s.Activities) == 0 && s.CampusLife == ""
}
