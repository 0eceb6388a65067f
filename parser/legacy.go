package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aluiziolira/school-scraper/models"
)

var (
	academicYearRe = regexp.MustCompile(`(\d{4})\s*[-–]\s*(\d{4})`)
	gradeLevelRes  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Grades?\s+(\d+)(?:\s*-\s*(\d+))?`),
		regexp.MustCompile(`(\d+)(?:th|st|nd|rd)?\s*-\s*(\d+)(?:th|st|nd|rd)?\s+Grade`),
		regexp.MustCompile(`\b(\d{1,2})\b`),
	}

	otherFeeRe    = regexp.MustCompile(`([A-Za-z ]+Fee):\s+((?:[$₱]|PHP)\s?[0-9][0-9,.]*)`)
	dueDateRe     = regexp.MustCompile(`(\w+\s+\w+)\s+[Dd]ue:?\s+(\d{1,2}\s+\w+\s+\d{4})`)
	currencyAmtRe = regexp.MustCompile(`(?:[$₱]|\bPHP|\bP)\s?\d[\d,]*(?:\.\d+)?`)
	dayMonthYear  = regexp.MustCompile(`\d{1,2}\s+\w+\s+\d{4}`)
	stepRe        = regexp.MustCompile(`(?im)^\s*(?:step\s*)?(\d+)[.:)]\s*(.+)$`)
	percentOrAmt  = regexp.MustCompile(`\d+%|(?:[$₱]|PHP)\s*[\d,.]*\d`)
	yearParenRe   = regexp.MustCompile(`\((\d{4})\)`)

	departmentRe    = regexp.MustCompile(`(?im)^Departments?:\s*(.*)$`)
	staffCountRe    = regexp.MustCompile(`(?i)(?:Staff count|Number of staff|Faculty size):\s*(\d+)`)
	qualificationRe = regexp.MustCompile(`(?im)^Qualifications?:\s*(.*)$`)
	memberRe        = regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\s*[-:]\s*(.+)$`)

	taglineRe  = regexp.MustCompile(`(?im)^(?:Tagline|Slogan)s?:\s*(.*)$`)
	valueRe    = regexp.MustCompile(`(?im)^Value Propositions?:\s*(.*)$`)
	messageRe  = regexp.MustCompile(`(?im)^Key Messag(?:e|es|ing):\s*(.*)$`)
	strategyRe = regexp.MustCompile(`(?im)^(?:Content Strategy|Marketing Approach):\s*(.*)$`)

	infraRe       = regexp.MustCompile(`(?im)^(?:Technology Infrastructure|IT Infrastructure):\s*(.*)$`)
	platformsRe   = regexp.MustCompile(`(?im)^Digital Platforms?:\s*(.*)$`)
	lmsRe         = regexp.MustCompile(`(?im)^(?:Learning Management System|LMS):\s*(.*)$`)
	initiativesRe = regexp.MustCompile(`(?im)^(?:Technology Initiatives|Tech Initiatives):\s*(.*)$`)

	clubsRe        = regexp.MustCompile(`(?i)^Clubs(?:\s+and\s+Organizations)?:\s*(.*)$`)
	partnershipRe  = regexp.MustCompile(`(?i)^Partnerships?:\s*(.*)$`)
	campusLifeRe   = regexp.MustCompile(`(?i)^Campus Life:\s*(.*)$`)
	activitiesRe   = regexp.MustCompile(`(?i)^Activities:\s*(.*)$`)
	testimonialRe  = regexp.MustCompile(`"([^"]+)"\s*[-—]\s*([^,\n]+)`)
	studentLabelRe = regexp.MustCompile(`(?i)^(?:Clubs(?:\s+and\s+Organizations)?|Partnerships?|Campus Life|Activities|Testimonials?):`)

	emailRe        = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	labeledPhoneRe = regexp.MustCompile(`(?i)(?:Phone|Tel|Telephone|Contact)[:\s]*([0-9+\-()\s./]+)`)
	phoneRe        = regexp.MustCompile(`(?:\+\d{1,3}[-\s]*)?\(?\d{3}\)?[-\s]*\d{3}[-\s]*\d{4}`)
	websiteRe      = regexp.MustCompile(`https?://\S+`)
	addressRe      = regexp.MustCompile(`(?im)^\s*(?:Address|Location)\s*:\s*(.+)$`)
)

var socialHosts = []struct {
	network string
	host    string
}{
	{"facebook", "facebook.com"},
	{"instagram", "instagram.com"},
	{"twitter", "twitter.com"},
	{"x", "x.com"},
	{"linkedin", "linkedin.com"},
	{"youtube", "youtube.com"},
	{"tiktok", "tiktok.com"},
}

// ExtractAcademicYear returns "AY YYYY-YYYY" for the first year range in
// text, or "".
func ExtractAcademicYear(text string) string {
	m := academicYearRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return "AY " + m[1] + "-" + m[2]
}

// ExtractGradeLevel returns "Grade X to Grade Y" or "Grade X" for the first
// grade mention in text, or "".
func ExtractGradeLevel(text string) string {
	for _, re := range gradeLevelRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 2 && m[2] != "" {
			return "Grade " + m[1] + " to Grade " + m[2]
		}
		return "Grade " + m[1]
	}
	return ""
}

// RecordFromLegacy builds a record from a section-header text response.
func RecordFromLegacy(text, name string) *models.SchoolRecord {
	r := models.NewSchoolRecord(name, "")

	if s := ExtractSection(text, "Tuition Fees:"); s != "" {
		r.SchoolFee = parseLegacyFees(s)
	}
	if s := ExtractSection(text, "Programs Offered:"); s != "" {
		r.Programs = parseLegacyPrograms(s)
	}
	if s := ExtractSection(text, "Enrollment Requirements:"); s != "" {
		r.Enrollment.Requirements = Lines(s)
	}
	if s := ExtractSection(text, "Enrollment Process:"); s != "" {
		r.Enrollment.ProcessSteps = parseLegacySteps(s)
	}
	if s := ExtractSection(text, "Upcoming Events:"); s != "" {
		r.Events = parseLegacyEvents(s)
	}
	if s := ExtractSection(text, "Scholarships/Discounts:"); s != "" {
		r.Scholarships = parseLegacyScholarships(s)
	}
	if s := ExtractSection(text, "Facilities:"); s != "" {
		r.Facilities = parseLegacyFacilities(s)
	}
	if s := firstSection(text, "Faculty and Staff:", "Faculty Information:"); s != "" {
		if f := parseLegacyFaculty(s); !f.IsEmpty() {
			r.Faculty = []models.FacultyInfo{f}
		}
	}
	if s := firstSection(text, "Achievements and Accreditations:", "Achievements:"); s != "" {
		r.Achievements = parseLegacyAchievements(s)
	}
	if s := firstSection(text, "Marketing and Branding:", "Marketing Content:"); s != "" {
		r.MarketingContent = parseLegacyMarketing(s)
	}
	if s := firstSection(text, "Technical Infrastructure:", "Technical Data:"); s != "" {
		r.TechnicalData = parseLegacyTechnical(s)
	}
	if s := ExtractSection(text, "Student Life:"); s != "" {
		r.StudentLife = parseLegacyStudentLife(s)
	}
	if s := ExtractSection(text, "Contact Information:"); s != "" {
		r.Contact = parseLegacyContact(s)
	}
	if s := ExtractSection(text, "Notes:"); s != "" {
		r.Notes = s
	}
	return r
}

func firstSection(text string, headers ...string) string {
	for _, h := range headers {
		if s := ExtractSection(text, h); s != "" {
			return s
		}
	}
	return ""
}

func parseLegacyFees(text string) models.FeeInfo {
	fees := models.FeeInfo{AcademicYear: ExtractAcademicYear(text)}
	levels := make(map[string]models.TuitionLevel)

	current := "General"
	var desc []string
	flush := func() {
		if len(desc) == 0 {
			return
		}
		d := strings.Join(desc, " ")
		level := models.TuitionLevel{Description: d}
		if amounts := currencyAmtRe.FindAllString(d, -1); len(amounts) == 1 {
			level.Annual = NormalizeAmount(amounts[0])
		}
		levels[current] = level
		desc = nil
	}

	for _, line := range Lines(text) {
		if ms := otherFeeRe.FindAllStringSubmatch(line, -1); ms != nil {
			for _, m := range ms {
				fees.OtherFees = append(fees.OtherFees, models.OtherFee{
					Name:   strings.TrimSpace(m[1]),
					Amount: NormalizeAmount(m[2]),
				})
			}
			continue
		}
		if ms := dueDateRe.FindAllStringSubmatch(line, -1); ms != nil {
			for _, m := range ms {
				fees.DueDates = append(fees.DueDates, models.DueDate{Period: m[1], Date: m[2]})
			}
			continue
		}

		if academicYearRe.MatchString(line) && currencyAmtRe.FindString(line) == "" {
			continue
		}

		lower := strings.ToLower(line)
		if key, rest, ok := strings.Cut(line, ":"); ok &&
			!strings.HasPrefix(lower, "due") && !strings.HasPrefix(lower, "payment") {
			if key = strings.TrimSpace(key); key != "" {
				flush()
				current = key
				if rest = strings.TrimSpace(rest); rest != "" {
					desc = append(desc, rest)
				}
				continue
			}
		}
		desc = append(desc, line)
	}
	flush()

	if len(levels) > 0 {
		fees.TuitionByLevel = levels
	}
	return fees
}

func parseLegacyPrograms(text string) []models.Program {
	var programs []models.Program
	for _, p := range Paragraphs(text) {
		lines := Lines(p)
		name := lines[0]
		programs = append(programs, models.Program{
			Name:        name,
			GradeLevel:  ExtractGradeLevel(name),
			Description: strings.Join(lines[1:], " "),
		})
	}
	return programs
}

func parseLegacySteps(text string) []models.ProcessStep {
	var steps []models.ProcessStep
	for _, m := range stepRe.FindAllStringSubmatch(text, -1) {
		steps = append(steps, models.ProcessStep{Step: m[1], Description: strings.TrimSpace(m[2])})
	}
	if len(steps) > 0 {
		return steps
	}
	for i, line := range Lines(text) {
		steps = append(steps, models.ProcessStep{Step: strconv.Itoa(i + 1), Description: line})
	}
	return steps
}

func parseLegacyEvents(text string) []models.Event {
	var events []models.Event
	for _, line := range Lines(text) {
		name, details, ok := strings.Cut(line, ":")
		if !ok {
			events = append(events, models.Event{Name: line, Date: dayMonthYear.FindString(line)})
			continue
		}
		details = strings.TrimSuffix(strings.TrimSpace(details), ".")
		events = append(events, models.Event{
			Name:        strings.TrimSpace(name),
			Date:        dayMonthYear.FindString(details),
			Description: details,
		})
	}
	return events
}

func itemsOf(text string) []string {
	if items := Paragraphs(text); len(items) > 1 {
		return items
	}
	return Lines(text)
}

func parseLegacyScholarships(text string) []models.Scholarship {
	var out []models.Scholarship
	for _, item := range itemsOf(text) {
		lines := Lines(item)
		s := models.Scholarship{Name: lines[0]}
		if name, rest, ok := strings.Cut(lines[0], ":"); ok && len(lines) == 1 {
			s.Name = strings.TrimSpace(name)
			s.Description = strings.TrimSpace(rest)
		} else if len(lines) > 1 {
			s.Description = strings.Join(lines[1:], " ")
		}
		if amt := percentOrAmt.FindString(item); amt != "" {
			s.Amount = NormalizeAmount(amt)
		}
		out = append(out, s)
	}
	return out
}

// FacilityType infers a facility category from its name.
func FacilityType(name string) string {
	lower := strings.ToLower(name)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	switch {
	case containsAny("lab", "laboratory", "science"):
		return "Laboratory"
	case containsAny("library", "books", "reading"):
		return "Library"
	case containsAny("gym", "sport", "field", "court", "swimming", "pool"):
		return "Sports"
	case containsAny("art", "music", "theater", "drama", "auditorium"):
		return "Arts"
	case containsAny("cafeteria", "canteen", "dining"):
		return "Dining"
	default:
		return "Other"
	}
}

func parseLegacyFacilities(text string) []models.Facility {
	var out []models.Facility
	for _, item := range itemsOf(text) {
		lines := Lines(item)
		f := models.Facility{Name: lines[0], Description: strings.Join(lines[1:], " ")}
		if name, rest, ok := strings.Cut(lines[0], ":"); ok && len(lines) == 1 {
			f.Name = strings.TrimSpace(name)
			f.Description = strings.TrimSpace(rest)
		}
		f.Type = FacilityType(f.Name)
		out = append(out, f)
	}
	return out
}

func parseLegacyFaculty(text string) models.FacultyInfo {
	var f models.FacultyInfo
	if m := departmentRe.FindStringSubmatch(text); m != nil {
		f.Department = strings.TrimSpace(m[1])
	}
	if m := staffCountRe.FindStringSubmatch(text); m != nil {
		f.StaffCount = m[1]
	}
	if m := qualificationRe.FindStringSubmatch(text); m != nil {
		f.Qualifications = strings.TrimSpace(m[1])
	}
	for _, line := range Lines(text) {
		m := memberRe.FindStringSubmatch(line)
		if m == nil || isFacultyLabel(m[1]) {
			continue
		}
		member := models.FacultyMember{Name: m[1], Position: strings.TrimSpace(m[2])}
		if pos, bio, ok := strings.Cut(member.Position, ":"); ok {
			member.Position = strings.TrimSpace(pos)
			member.Bio = strings.TrimSpace(bio)
		}
		f.NotableMembers = append(f.NotableMembers, member)
	}
	return f
}

func isFacultyLabel(s string) bool {
	switch strings.ToLower(s) {
	case "staff count", "number of staff", "faculty size":
		return true
	}
	return false
}

func parseLegacyAchievements(text string) []models.Achievement {
	var out []models.Achievement
	for _, line := range Lines(text) {
		a := models.Achievement{Name: line}
		if name, desc, ok := strings.Cut(line, ":"); ok {
			a.Name = strings.TrimSpace(name)
			a.Description = strings.TrimSpace(desc)
		}
		if m := yearParenRe.FindStringSubmatch(a.Name); m != nil {
			a.Year = m[1]
			a.Name = strings.TrimSpace(yearParenRe.ReplaceAllString(a.Name, ""))
		}
		a.Type = achievementType(a.Name)
		out = append(out, a)
	}
	return out
}

func achievementType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "accreditation"), strings.Contains(lower, "accredited"):
		return "Accreditation"
	case strings.Contains(lower, "award"), strings.Contains(lower, "prize"), strings.Contains(lower, "medal"):
		return "Award"
	case strings.Contains(lower, "recognition"), strings.Contains(lower, "recognized"):
		return "Recognition"
	default:
		return "Achievement"
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func submatch(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func parseLegacyMarketing(text string) models.MarketingContent {
	m := models.MarketingContent{
		Taglines:          splitList(submatch(taglineRe, text)),
		ValuePropositions: splitList(submatch(valueRe, text)),
		KeyMessaging:      splitList(submatch(messageRe, text)),
		ContentStrategy:   submatch(strategyRe, text),
	}
	if m.IsEmpty() {
		lines := Lines(text)
		if len(lines) > 0 {
			m.Taglines = []string{lines[0]}
		}
		if len(lines) > 1 {
			m.KeyMessaging = []string{lines[1]}
		}
	}
	return m
}

func parseLegacyTechnical(text string) models.TechnicalData {
	return models.TechnicalData{
		TechnologyInfrastructure: submatch(infraRe, text),
		DigitalPlatforms:         splitList(submatch(platformsRe, text)),
		LearningManagementSystem: submatch(lmsRe, text),
		TechInitiatives:          splitList(submatch(initiativesRe, text)),
	}
}

// parseLegacyStudentLife reads labelled blocks. A label's value continues on
// following lines until the next label.
func parseLegacyStudentLife(text string) models.StudentLife {
	var s models.StudentLife
	for _, m := range testimonialRe.FindAllStringSubmatch(text, -1) {
		s.Testimonials = append(s.Testimonials, models.Testimonial{
			Quote:  strings.TrimSpace(m[1]),
			Source: strings.TrimSpace(m[2]),
		})
	}

	var label string
	add := func(value string) {
		if value == "" {
			return
		}
		switch label {
		case "clubs":
			for _, c := range splitList(value) {
				club := models.Club{Name: c}
				if name, desc, ok := strings.Cut(c, " - "); ok {
					club = models.Club{Name: strings.TrimSpace(name), Description: strings.TrimSpace(desc)}
				}
				s.ClubsOrganizations = append(s.ClubsOrganizations, club)
			}
		case "partnerships":
			p := models.Partnership{Partner: value}
			if name, nature, ok := strings.Cut(value, " - "); ok {
				p = models.Partnership{Partner: strings.TrimSpace(name), Nature: strings.TrimSpace(nature)}
			}
			s.Partnerships = append(s.Partnerships, p)
		case "activities":
			s.Activities = append(s.Activities, splitList(value)...)
		case "campus":
			if s.CampusLife != "" {
				s.CampusLife += " "
			}
			s.CampusLife += value
		}
	}

	for _, line := range Lines(text) {
		switch {
		case clubsRe.MatchString(line):
			label = "clubs"
			add(submatch(clubsRe, line))
		case partnershipRe.MatchString(line):
			label = "partnerships"
			add(submatch(partnershipRe, line))
		case activitiesRe.MatchString(line):
			label = "activities"
			add(submatch(activitiesRe, line))
		case campusLifeRe.MatchString(line):
			label = "campus"
			add(submatch(campusLifeRe, line))
		case studentLabelRe.MatchString(line), testimonialRe.MatchString(line):
			label = ""
		default:
			add(line)
		}
	}

	if s.IsEmpty() {
		s.CampusLife = strings.Join(Lines(text), " ")
	}
	return s
}

func parseLegacyContact(text string) models.ContactInfo {
	var c models.ContactInfo
	c.Email = emailRe.FindString(text)

	for _, m := range labeledPhoneRe.FindAllStringSubmatch(text, -1) {
		phone := strings.TrimSpace(m[1])
		if countDigits(phone) >= 7 {
			c.PhoneNumbers = append(c.PhoneNumbers, phone)
		}
	}
	if len(c.PhoneNumbers) == 0 {
		for _, phone := range phoneRe.FindAllString(text, -1) {
			c.PhoneNumbers = append(c.PhoneNumbers, strings.TrimSpace(phone))
		}
	}

	for _, u := range websiteRe.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;)")
		if network := socialNetwork(u); network != "" {
			if c.SocialMedia == nil {
				c.SocialMedia = make(map[string]string)
			}
			if _, seen := c.SocialMedia[network]; !seen {
				c.SocialMedia[network] = u
			}
			continue
		}
		if c.Website == "" {
			c.Website = u
		}
	}

	if m := addressRe.FindStringSubmatch(text); m != nil {
		c.Address = strings.TrimSpace(m[1])
	} else {
		for _, line := range Lines(text) {
			if strings.Count(line, ",") >= 2 && len(line) > 20 {
				c.Address = line
				break
			}
		}
	}
	return c
}

func socialNetwork(u string) string {
	lower := strings.ToLower(u)
	for _, s := range socialHosts {
		if strings.Contains(lower, "://"+s.host) || strings.Contains(lower, "."+s.host) {
			return s.network
		}
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
