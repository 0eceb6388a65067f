package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type dictEntry struct {
	key   string
	value any
}

// ToDict renders the record in its persisted shape. Empty sections become
// NoInformation, empty leaf fields are dropped from populated sections and
// list order is preserved.
func (r *SchoolRecord) ToDict() map[string]any {
	entries := r.entries()
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		out[e.key] = e.value
	}
	return out
}

// MarshalJSON writes the ToDict shape with a stable top-level key order.
func (r *SchoolRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(e.key)
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(e.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", e.key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *SchoolRecord) entries() []dictEntry {
	return []dictEntry{
		{"name", r.Name},
		{"link", r.Link},
		{"school_fee", r.SchoolFee.dict()},
		{"programs", listOrSentinel(len(r.Programs), func(i int) map[string]any {
			p := r.Programs[i]
			return map[string]any{"name": p.Name, "grade_level": p.GradeLevel, "description": p.Description}
		})},
		{"enrollment", r.Enrollment.dict()},
		{"events", listOrSentinel(len(r.Events), func(i int) map[string]any {
			e := r.Events[i]
			return map[string]any{"name": e.Name, "date": e.Date, "description": e.Description}
		})},
		{"scholarships", listOrSentinel(len(r.Scholarships), func(i int) map[string]any {
			s := r.Scholarships[i]
			return map[string]any{"name": s.Name, "eligibility": s.Eligibility, "amount": s.Amount.Value(), "description": s.Description}
		})},
		{"facilities", listOrSentinel(len(r.Facilities), func(i int) map[string]any {
			f := r.Facilities[i]
			return map[string]any{"name": f.Name, "type": f.Type, "description": f.Description, "features": copyStrings(f.Features)}
		})},
		{"faculty", listOrSentinel(len(r.Faculty), func(i int) map[string]any {
			f := r.Faculty[i]
			members := make([]map[string]any, 0, len(f.NotableMembers))
			for _, m := range f.NotableMembers {
				members = append(members, map[string]any{"name": m.Name, "position": m.Position, "bio": m.Bio})
			}
			return map[string]any{
				"department":      f.Department,
				"staff_count":     f.StaffCount,
				"qualifications":  f.Qualifications,
				"notable_members": members,
			}
		})},
		{"achievements", listOrSentinel(len(r.Achievements), func(i int) map[string]any {
			a := r.Achievements[i]
			return map[string]any{"type": a.Type, "name": a.Name, "year": a.Year, "description": a.Description, "issuing_body": a.IssuingBody}
		})},
		{"marketing_content", r.MarketingContent.dict()},
		{"technical_data", r.TechnicalData.dict()},
		{"student_life", r.StudentLife.dict()},
		{"contact", r.Contact.dict()},
		{"notes", r.Notes},
	}
}

func (f FeeInfo) dict() any {
	if f.IsEmpty() {
		return NoInformation
	}
	out := map[string]any{}
	if f.AcademicYear != "" {
		out["academic_year"] = f.AcademicYear
	}
	if len(f.TuitionByLevel) > 0 {
		levels := make(map[string]any, len(f.TuitionByLevel))
		for name, level := range f.TuitionByLevel {
			entry := map[string]any{}
			putAmount(entry, "annual", level.Annual)
			putAmount(entry, "semester1", level.Semester1)
			putAmount(entry, "semester2", level.Semester2)
			if level.Description != "" {
				entry["description"] = level.Description
			}
			levels[name] = entry
		}
		out["tuition_by_level"] = levels
	}
	if len(f.OtherFees) > 0 {
		fees := make([]map[string]any, 0, len(f.OtherFees))
		for _, fee := range f.OtherFees {
			fees = append(fees, map[string]any{"name": fee.Name, "amount": fee.Amount.Value(), "description": fee.Description})
		}
		out["other_fees"] = fees
	}
	if len(f.DueDates) > 0 {
		dates := make([]map[string]any, 0, len(f.DueDates))
		for _, d := range f.DueDates {
			dates = append(dates, map[string]any{"period": d.Period, "date": d.Date})
		}
		out["due_dates"] = dates
	}
	return out
}

func (e EnrollmentInfo) dict() any {
	if e.IsEmpty() {
		return NoInformation
	}
	out := map[string]any{}
	if len(e.Requirements) > 0 {
		out["requirements"] = copyStrings(e.Requirements)
	}
	if len(e.Documents) > 0 {
		out["documents"] = copyStrings(e.Documents)
	}
	if len(e.ProcessSteps) > 0 {
		steps := make([]map[string]any, 0, len(e.ProcessSteps))
		for _, s := range e.ProcessSteps {
			steps = append(steps, map[string]any{"step": s.Step, "description": s.Description})
		}
		out["process_steps"] = steps
	}
	return out
}

func (m MarketingContent) dict() any {
	if m.IsEmpty() {
		return NoInformation
	}
	out := map[string]any{}
	putList(out, "taglines", m.Taglines)
	putList(out, "value_propositions", m.ValuePropositions)
	putList(out, "key_messaging", m.KeyMessaging)
	if m.ContentStrategy != "" {
		out["content_strategy"] = m.ContentStrategy
	}
	return out
}

func (t TechnicalData) dict() any {
	if t.IsEmpty() {
		return NoInformation
	}
	out := map[string]any{}
	if t.TechnologyInfrastructure != "" {
		out["technology_infrastructure"] = t.TechnologyInfrastructure
	}
	putList(out, "digital_platforms", t.DigitalPlatforms)
	if t.LearningManagementSystem != "" {
		out["learning_management_system"] = t.LearningManagementSystem
	}
	putList(out, "tech_initiatives", t.TechInitiatives)
	return out
}

func (s StudentLife) dict() any {
	if s.IsEmpty() {
		return NoInformation
	}
	out := map[string]any{}
	if len(s.ClubsOrganizations) > 0 {
		clubs := make([]map[string]any, 0, len(s.ClubsOrganizations))
		for _, c := range s.ClubsOrganizations {
			clubs = append(clubs, map[string]any{"name": c.Name, "description": c.Description})
		}
		out["clubs_organizations"] = clubs
	}
	if len(s.Testimonials) > 0 {
		quotes := make([]map[string]any, 0, len(s.Testimonials))
		for _, t := range s.Testimonials {
			quotes = append(quotes, map[string]any{"quote": t.Quote, "source": t.Source})
		}
		out["testimonials"] = quotes
	}
	if len(s.Partnerships) > 0 {
		partners := make([]map[string]any, 0, len(s.Partnerships))
		for _, p := range s.Partnerships {
			partners = append(partners, map[string]any{"partner": p.Partner, "nature": p.Nature})
		}
		out["partnerships"] = partners
	}
	putList(out, "activities", s.Activities)
	if s.CampusLife != "" {
		out["campus_life"] = s.CampusLife
	}
	return out
}

func (c ContactInfo) dict() any {
	if c.IsEmpty() {
		return NoInformation
	}
	out := map[string]any{}
	if c.Address != "" {
		out["address"] = c.Address
	}
	putList(out, "phone_numbers", c.PhoneNumbers)
	if c.Email != "" {
		out["email"] = c.Email
	}
	if c.Website != "" {
		out["website"] = c.Website
	}
	if len(c.SocialMedia) > 0 {
		social := make(map[string]any, len(c.SocialMedia))
		for k, v := range c.SocialMedia {
			social[k] = v
		}
		out["social_media"] = social
	}
	return out
}

func listOrSentinel(n int, item func(i int) map[string]any) any {
	if n == 0 {
		return NoInformation
	}
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, item(i))
	}
	return out
}

func putAmount(m map[string]any, key string, a Amount) {
	if !a.IsZero() {
		m[key] = a.Value()
	}
}

func putList(m map[string]any, key string, values []string) {
	if len(values) > 0 {
		m[key] = copyStrings(values)
	}
}

// copyStrings copies values into a non-nil slice so empty lists encode as [].
func copyStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
