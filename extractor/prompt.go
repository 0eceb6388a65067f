package extractor

import "fmt"

const recordSchema = `{
  "tuition": {
    "academic_year": "[ACADEMIC YEAR]",
    "tuition_by_level": {
      "[GRADE/LEVEL NAME]": {
        "annual": "[ANNUAL FEE]",
        "semester1": "[SEMESTER 1 FEE]",
        "semester2": "[SEMESTER 2 FEE]"
      }
      // Additional grade levels as needed
    },
    "other_fees": [
      {"name": "[FEE NAME]", "amount": "[AMOUNT]", "description": "[DESCRIPTION]"}
    ],
    "due_dates": [
      {"period": "[PERIOD NAME]", "date": "[DUE DATE]"}
    ]
  },
  "facilities": [
    {
      "name": "[FACILITY NAME]",
      "type": "[TYPE: lab, library, sports, arts, etc.]",
      "description": "[DESCRIPTION]",
      "features": ["[FEATURE 1]", "[FEATURE 2]"]
    }
  ],
  "faculty": [
    {
      "department": "[DEPARTMENT NAME]",
      "staff_count": "[NUMBER OF STAFF]",
      "qualifications": "[GENERAL QUALIFICATIONS]",
      "notable_members": [
        {"name": "[NAME]", "position": "[POSITION]", "bio": "[BRIEF BIO]"}
      ]
    }
  ],
  "achievements": [
    {
      "type": "[TYPE: Award, Accreditation, Recognition, etc.]",
      "name": "[NAME OF ACHIEVEMENT]",
      "year": "[YEAR RECEIVED]",
      "description": "[DESCRIPTION]",
      "issuing_body": "[ORGANIZATION THAT ISSUED IT]"
    }
  ],
  "marketing_content": {
    "taglines": ["[TAGLINE OR SLOGAN]"],
    "value_propositions": ["[VALUE PROPOSITION]"],
    "key_messaging": ["[KEY MESSAGE]"],
    "content_strategy": "[OVERALL CONTENT APPROACH]"
  },
  "technical_data": {
    "technology_infrastructure": "[DESCRIPTION OF TECH INFRASTRUCTURE]",
    "digital_platforms": ["[PLATFORM NAME AND PURPOSE]"],
    "learning_management_system": "[LMS NAME IF ANY]",
    "tech_initiatives": ["[TECH INITIATIVE DESCRIPTION]"]
  },
  "student_life": {
    "clubs_organizations": [{"name": "[CLUB/ORGANIZATION NAME]", "description": "[DESCRIPTION]"}],
    "testimonials": [{"quote": "[TESTIMONIAL QUOTE]", "source": "[SOURCE: Student, Parent, Alumni, etc.]"}],
    "partnerships": [{"partner": "[PARTNER NAME]", "nature": "[NATURE OF PARTNERSHIP]"}],
    "activities": ["[ACTIVITY DESCRIPTION]"],
    "campus_life": "[DESCRIPTION OF CAMPUS LIFE]"
  },
  "programs": [
    {"name": "[PROGRAM NAME]", "grade_level": "[GRADE LEVEL]", "description": "[DESCRIPTION]"}
  ],
  "enrollment": {
    "requirements": ["[REQUIREMENT 1]", "[REQUIREMENT 2]"],
    "documents": ["[DOCUMENT 1]", "[DOCUMENT 2]"],
    "process_steps": [{"step": "[STEP NUMBER]", "description": "[STEP DESCRIPTION]"}]
  },
  "events": [
    {"name": "[EVENT NAME]", "date": "[EVENT DATE]", "description": "[EVENT DESCRIPTION]"}
  ],
  "scholarships": [
    {
      "name": "[SCHOLARSHIP NAME]",
      "eligibility": "[ELIGIBILITY CRITERIA]",
      "amount": "[AMOUNT OR PERCENTAGE]",
      "description": "[DESCRIPTION]"
    }
  ],
  "contact": {
    "address": "[FULL ADDRESS]",
    "phone_numbers": ["[PHONE NUMBER 1]", "[PHONE NUMBER 2]"],
    "email": "[EMAIL ADDRESS]",
    "website": "[WEBSITE URL]",
    "social_media": {
      "facebook": "[FACEBOOK URL]",
      "twitter": "[TWITTER URL]",
      "instagram": "[INSTAGRAM URL]"
    }
  },
  "notes": "[ANY ADDITIONAL RELEVANT INFORMATION]"
}`

const structuredPrompt = `You are a data extraction expert. Extract structured information from school website content.

School Name: %s

FORMAT YOUR RESPONSE EXACTLY IN JSON FORMAT:

` + "```json\n" + recordSchema + "\n```" + `

IMPORTANT INSTRUCTIONS:
1. Return ONLY valid JSON - no explanations or text outside the JSON structure
2. If information for a section is truly not available, provide empty arrays or empty strings as appropriate
3. Include specific details, dates, amounts, and requirements when available
4. For tuition, separate by grade levels and include pricing details for different payment periods
5. For enrollment, separate requirements from required documents and provide a step-by-step process
6. Remove any JSON comments (lines with //) in your final output
7. Pay special attention to PDF content sections marked with [PDF CONTENT FROM: url] as these may contain important structured information
8. For facilities, be as detailed as possible about each type of facility and its features
9. For faculty, extract qualifications, departments and any notable staff members
10. For achievements, capture all awards, accreditations and recognitions with dates when available
11. For marketing content, focus on the key messaging, taglines and value propositions used by the school
12. For technical data, include the school's technology infrastructure and digital platforms
13. For student life, include clubs, organizations, testimonials, partnerships and campus activities

Here's the content to analyze:

%s`

const sectionPrompt = `You are a data extraction expert. Your task is to extract structured information from school website content.

School Name: %s

FORMAT YOUR RESPONSE EXACTLY AS BELOW WITH CLEAR SECTION HEADERS:

Tuition Fees: [Extract all details about tuition costs, payment schedules, and fees]

Programs Offered: [Extract all academic programs, curriculum details, and grade levels]

Enrollment Requirements: [Extract all admission requirements and eligibility criteria]

Enrollment Process: [Extract the step-by-step application procedures]

Upcoming Events: [Extract information about school events and dates]

Scholarships/Discounts: [Extract details about scholarships and financial aid]

Facilities: [Extract information about labs, libraries, sports facilities, arts centers, etc.]

Faculty and Staff: [Extract faculty qualifications, departments, notable members and staff information]

Achievements and Accreditations: [Extract awards, recognitions, accreditations and notable achievements]

Marketing and Branding: [Extract taglines, value propositions and key messaging themes]

Technical Infrastructure: [Extract technology used, digital platforms, learning management systems]

Student Life: [Extract clubs, organizations, testimonials, campus activities and partnerships]

Contact Information: [Extract all contact details including address, phone, email]

Notes: [Any additional relevant information]

IMPORTANT INSTRUCTIONS:
1. Always include the section headers exactly as shown above
2. If information for a section is truly not available, write only 'No information available'
3. Format content in plain text without markdown formatting
4. Keep your response focused on extracting facts
5. Include specific details, dates, amounts, and requirements when available

Here's the content to analyze:

%s`

const summaryPrompt = `You are an educational consultant tasked with summarizing information about %s.
Please provide a concise, informative summary of the school based on the following raw data.

Focus on these key aspects:
1. School overview and educational philosophy
2. Academic programs and curriculum
3. Tuition fees and financial information
4. Enrollment requirements and process
5. What makes this school unique or distinctive

Format your response with clear sections and bullet points where appropriate.
Maintain a professional, informative tone throughout.

Raw data:
%s`

const analysisPrompt = `You are an educational consultant tasked with creating a comprehensive market analysis of multiple schools.
You have been provided with data about several different schools that has been scraped and processed.
Analyze this data holistically and create a comparative summary that highlights similarities, differences and key insights across all schools.

FORMAT YOUR RESPONSE WITH THE FOLLOWING SECTIONS:

## MARKET OVERVIEW
- Provide a high-level summary of the school landscape represented in the data
- Identify common themes, educational philosophies, or positioning across schools

## TUITION ANALYSIS
- Compare tuition ranges across all schools
- Identify pricing tiers and what differentiates schools in different price brackets
- Note any unusual or distinctive fee structures

## ACADEMIC PROGRAMS
- Identify common academic programs and curricula
- Highlight unique or specialized programs offered by specific schools
- Compare grade level offerings and educational approaches

## ADMISSIONS LANDSCAPE
- Summarize typical admission requirements and processes
- Note differences in selectivity or admission criteria

## SCHOLARSHIP OPPORTUNITIES
- Compare financial aid and scholarship availability
- Identify which schools offer the most generous or accessible scholarships

## COMPARATIVE STRENGTHS
- For each school, identify its distinctive features or competitive advantages
- Suggest which types of students might be best suited for each school

## RECOMMENDATIONS
- Provide specific recommendations for different types of families and students

IMPORTANT GUIDELINES:
1. Focus on factual analysis based on the provided data
2. Make direct comparisons between schools where appropriate
3. If information for certain schools is limited, acknowledge this rather than making assumptions
4. Format with clear section headings, bullet points, and tables where appropriate

SCHOOLS DATA TO ANALYZE:
%s`

const integrationPrompt = `You are an educational consultant creating a final, integrated report on schools.
You have processed multiple data chunks and now need to integrate the separate summaries into a single coherent report.

The summaries may contain redundant information. Your task is to:
1. Remove redundancies
2. Resolve any contradictions
3. Create a unified, well-structured report
4. Ensure all schools mentioned are included
5. Keep the section structure: Market Overview, Tuition Analysis, Academic Programs, Admissions Landscape, Scholarship Opportunities, Comparative Strengths, and Recommendations

Here are the separate summaries to integrate:

%s`

// StructuredPrompt asks for a fenced JSON document shaped like a record.
func StructuredPrompt(school, content string) string {
	return fmt.Sprintf(structuredPrompt, school, content)
}

// SectionPrompt asks for plain text under the known section headers.
func SectionPrompt(school, content string) string {
	return fmt.Sprintf(sectionPrompt, school, content)
}

func SummaryPrompt(school, content string) string {
	return fmt.Sprintf(summaryPrompt, school, content)
}

func AnalysisPrompt(data string) string {
	return fmt.Sprintf(analysisPrompt, data)
}

func IntegrationPrompt(summaries string) string {
	return fmt.Sprintf(integrationPrompt, summaries)
}
