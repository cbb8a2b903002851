package extraction

import (
	"strings"

	"github.com/jonathan/talent-matcher/internal/types"
)

// skillRule selects a skill bundle when keyword appears in a description.
type skillRule struct {
	keyword string
	bundle  []string
}

// jobSkillRules are evaluated in order; the first matching rule wins.
var jobSkillRules = []skillRule{
	{keyword: "react", bundle: []string{"React.js", "JavaScript", "HTML", "CSS", "Redux"}},
}

// defaultSkillBundle applies when no rule matches.
var defaultSkillBundle = []string{"JavaScript", "Node.js", "Express", "MongoDB"}

var (
	experiencedProfile = []string{"3+ years of experience", "Bachelor's degree"}
	entryLevelProfile  = []string{"Entry level", "Some experience required"}
)

// standardResponsibilities are attached to every summary.
var standardResponsibilities = []string{
	"Develop user interfaces",
	"Write clean code",
	"Collaborate with team members",
}

// SummarizeJob derives the structured summary of a normalized job description.
// The result depends only on the text.
func SummarizeJob(description string) *types.JobSummary {
	lower := strings.ToLower(description)

	skills := defaultSkillBundle
	for _, rule := range jobSkillRules {
		if strings.Contains(lower, rule.keyword) {
			skills = rule.bundle
			break
		}
	}

	experience := entryLevelProfile
	if strings.Contains(lower, "years") {
		experience = experiencedProfile
	}

	return &types.JobSummary{
		Skills:           types.UniqueFold(skills),
		Experience:       copyStrings(experience),
		Responsibilities: copyStrings(standardResponsibilities),
	}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
