package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aluiziolira/school-scraper/models"
)

// RecordFromJSON maps decoded model output onto a record. Missing keys and
// placeholder values leave the field empty. Fees are read from "tuition" or
// "school_fee".
func RecordFromJSON(data map[string]any, name string) *models.SchoolRecord {
	r := models.NewSchoolRecord(name, "")
	if data == nil {
		return r
	}

	fee := data["tuition"]
	if asObject(fee) == nil {
		fee = data["school_fee"]
	}
	r.SchoolFee = feeFromJSON(asObject(fee))

	for _, item := range asList(data["programs"]) {
		if m := asObject(item); m != nil {
			r.Programs = append(r.Programs, models.Program{
				Name:        str(m["name"]),
				GradeLevel:  str(m["grade_level"]),
				Description: str(m["description"]),
			})
		} else if s := str(item); s != "" {
			r.Programs = append(r.Programs, models.Program{Name: s, GradeLevel: ExtractGradeLevel(s)})
		}
	}

	if m := asObject(data["enrollment"]); m != nil {
		r.Enrollment.Requirements = strList(m["requirements"])
		r.Enrollment.Documents = strList(m["documents"])
		for i, item := range asList(m["process_steps"]) {
			if sm := asObject(item); sm != nil {
				r.Enrollment.ProcessSteps = append(r.Enrollment.ProcessSteps, models.ProcessStep{
					Step:        str(sm["step"]),
					Description: str(sm["description"]),
				})
			} else if s := str(item); s != "" {
				r.Enrollment.ProcessSteps = append(r.Enrollment.ProcessSteps, models.ProcessStep{
					Step:        strconv.Itoa(i + 1),
					Description: s,
				})
			}
		}
	}

	for _, item := range asList(data["events"]) {
		if m := asObject(item); m != nil {
			r.Events = append(r.Events, models.Event{
				Name:        str(m["name"]),
				Date:        str(m["date"]),
				Description: str(m["description"]),
			})
		} else if s := str(item); s != "" {
			r.Events = append(r.Events, models.Event{Name: s})
		}
	}

	for _, item := range asList(data["scholarships"]) {
		if m := asObject(item); m != nil {
			r.Scholarships = append(r.Scholarships, models.Scholarship{
				Name:        str(m["name"]),
				Eligibility: str(m["eligibility"]),
				Amount:      AmountFromAny(m["amount"]),
				Description: str(m["description"]),
			})
		} else if s := str(item); s != "" {
			r.Scholarships = append(r.Scholarships, models.Scholarship{Name: s})
		}
	}

	for _, item := range asList(data["facilities"]) {
		if m := asObject(item); m != nil {
			r.Facilities = append(r.Facilities, models.Facility{
				Name:        str(m["name"]),
				Type:        str(m["type"]),
				Description: str(m["description"]),
				Features:    strList(m["features"]),
			})
		}
	}

	for _, item := range asList(data["faculty"]) {
		m := asObject(item)
		if m == nil {
			continue
		}
		info := models.FacultyInfo{
			Department:     str(m["department"]),
			StaffCount:     str(m["staff_count"]),
			Qualifications: str(m["qualifications"]),
		}
		for _, member := range asList(m["notable_members"]) {
			if mm := asObject(member); mm != nil {
				info.NotableMembers = append(info.NotableMembers, models.FacultyMember{
					Name:     str(mm["name"]),
					Position: str(mm["position"]),
					Bio:      str(mm["bio"]),
				})
			}
		}
		r.Faculty = append(r.Faculty, info)
	}

	for _, item := range asList(data["achievements"]) {
		if m := asObject(item); m != nil {
			r.Achievements = append(r.Achievements, models.Achievement{
				Type:        str(m["type"]),
				Name:        str(m["name"]),
				Year:        str(m["year"]),
				Description: str(m["description"]),
				IssuingBody: str(m["issuing_body"]),
			})
		}
	}

	if m := asObject(data["marketing_content"]); m != nil {
		r.MarketingContent = models.MarketingContent{
			Taglines:          strList(m["taglines"]),
			ValuePropositions: strList(m["value_propositions"]),
			KeyMessaging:      strList(m["key_messaging"]),
			ContentStrategy:   str(m["content_strategy"]),
		}
	}

	if m := asObject(data["technical_data"]); m != nil {
		r.TechnicalData = models.TechnicalData{
			TechnologyInfrastructure: str(m["technology_infrastructure"]),
			DigitalPlatforms:         strList(m["digital_platforms"]),
			LearningManagementSystem: str(m["learning_management_system"]),
			TechInitiatives:          strList(m["tech_initiatives"]),
		}
	}

	if m := asObject(data["student_life"]); m != nil {
		r.StudentLife = studentLifeFromJSON(m)
	}

	if m := asObject(data["contact"]); m != nil {
		r.Contact = models.ContactInfo{
			Address:      str(m["address"]),
			PhoneNumbers: strList(m["phone_numbers"]),
			Email:        str(m["email"]),
			Website:      str(m["website"]),
		}
		for network, v := range asObject(m["social_media"]) {
			if s := str(v); s != "" {
				if r.Contact.SocialMedia == nil {
					r.Contact.SocialMedia = make(map[string]string)
				}
				r.Contact.SocialMedia[network] = s
			}
		}
	}

	if notes := str(data["notes"]); notes != "" {
		r.Notes = notes
	}
	return r
}

func feeFromJSON(m map[string]any) models.FeeInfo {
	var f models.FeeInfo
	if m == nil {
		return f
	}
	f.AcademicYear = str(m["academic_year"])

	if levels := asObject(m["tuition_by_level"]); len(levels) > 0 {
		f.TuitionByLevel = make(map[string]models.TuitionLevel, len(levels))
		for level, v := range levels {
			if lm := asObject(v); lm != nil {
				f.TuitionByLevel[level] = models.TuitionLevel{
					Annual:      AmountFromAny(lm["annual"]),
					Semester1:   AmountFromAny(lm["semester1"]),
					Semester2:   AmountFromAny(lm["semester2"]),
					Description: str(lm["description"]),
				}
				continue
			}
			amount := AmountFromAny(v)
			if amount.IsZero() {
				continue
			}
			if _, numeric := amount.Float(); numeric {
				f.TuitionByLevel[level] = models.TuitionLevel{Annual: amount}
			} else {
				f.TuitionByLevel[level] = models.TuitionLevel{Description: amount.Text()}
			}
		}
		if len(f.TuitionByLevel) == 0 {
			f.TuitionByLevel = nil
		}
	}

	for _, item := range asList(m["other_fees"]) {
		if om := asObject(item); om != nil {
			f.OtherFees = append(f.OtherFees, models.OtherFee{
				Name:        str(om["name"]),
				Amount:      AmountFromAny(om["amount"]),
				Description: str(om["description"]),
			})
		}
	}

	for _, item := range asList(m["due_dates"]) {
		if dm := asObject(item); dm != nil {
			f.DueDates = append(f.DueDates, models.DueDate{
				Period: str(dm["period"]),
				Date:   str(dm["date"]),
			})
		}
	}
	return f
}

func studentLifeFromJSON(m map[string]any) models.StudentLife {
	s := models.StudentLife{
		Activities: strList(m["activities"]),
		CampusLife: str(m["campus_life"]),
	}
	for _, item := range asList(m["clubs_organizations"]) {
		if cm := asObject(item); cm != nil {
			s.ClubsOrganizations = append(s.ClubsOrganizations, models.Club{
				Name:        str(cm["name"]),
				Description: str(cm["description"]),
			})
		} else if name := str(item); name != "" {
			s.ClubsOrganizations = append(s.ClubsOrganizations, models.Club{Name: name})
		}
	}
	for _, item := range asList(m["testimonials"]) {
		if tm := asObject(item); tm != nil {
			s.Testimonials = append(s.Testimonials, models.Testimonial{
				Quote:  str(tm["quote"]),
				Source: str(tm["source"]),
			})
		}
	}
	for _, item := range asList(m["partnerships"]) {
		if pm := asObject(item); pm != nil {
			s.Partnerships = append(s.Partnerships, models.Partnership{
				Partner: str(pm["partner"]),
				Nature:  str(pm["nature"]),
			})
		} else if name := str(item); name != "" {
			s.Partnerships = append(s.Partnerships, models.Partnership{Partner: name})
		}
	}
	return s
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// str flattens a scalar JSON value. Placeholder phrases become "".
func str(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		s = strings.TrimSpace(fmt.Sprint(t))
	}
	if IsNoData(s) {
		return ""
	}
	return s
}

// strList accepts a list of scalars or a single string.
func strList(v any) []string {
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := str(t); s != "" {
			return []string{s}
		}
	}
	return nil
}
