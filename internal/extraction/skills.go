package extraction

import (
	"regexp"
	"strings"
)

// skillAliases maps lowercase spellings to the canonical skill name.
var skillAliases = map[string]string{
	"react":       "React.js",
	"reactjs":     "React.js",
	"react.js":    "React.js",
	"redux":       "Redux",
	"javascript":  "JavaScript",
	"js":          "JavaScript",
	"es6":         "JavaScript",
	"typescript":  "TypeScript",
	"ts":          "TypeScript",
	"html":        "HTML",
	"html5":       "HTML",
	"css":         "CSS",
	"css3":        "CSS",
	"sass":        "Sass",
	"scss":        "Sass",
	"tailwind":    "Tailwind CSS",
	"git":         "Git",
	"github":      "Git",
	"node":        "Node.js",
	"nodejs":      "Node.js",
	"node.js":     "Node.js",
	"express":     "Express",
	"expressjs":   "Express",
	"express.js":  "Express",
	"mongodb":     "MongoDB",
	"mongo":       "MongoDB",
	"vue":         "Vue",
	"vuejs":       "Vue",
	"vue.js":      "Vue",
	"angular":     "Angular",
	"next.js":     "Next.js",
	"nextjs":      "Next.js",
	"graphql":     "GraphQL",
	"golang":      "Go",
	"python":      "Python",
	"java":        "Java",
	"c#":          "C#",
	"sql":         "SQL",
	"postgres":    "PostgreSQL",
	"postgresql":  "PostgreSQL",
	"mysql":       "MySQL",
	"redis":       "Redis",
	"docker":      "Docker",
	"kubernetes":  "Kubernetes",
	"k8s":         "Kubernetes",
	"aws":         "AWS",
	"gcp":         "GCP",
	"azure":       "Azure",
	"jest":        "Jest",
	"webpack":     "Webpack",
	"figma":       "Figma",
	"rest":        "REST",
	"restful":     "REST",
	"agile":       "Agile",
	"scrum":       "Agile",
	"ci/cd":       "CI/CD",
	"linux":       "Linux",
	"rabbitmq":    "RabbitMQ",
	"kafka":       "Kafka",
	"terraform":   "Terraform",
	"jquery":      "jQuery",
	"bootstrap":   "Bootstrap",
	"material-ui": "Material UI",
	"mui":         "Material UI",
}

var skillTokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9.+#/-]*`)

// NormalizeSkillName returns the canonical spelling for a known skill, or the
// trimmed input when the skill is not in the vocabulary.
func NormalizeSkillName(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := skillAliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// findSkills returns the canonical names of every vocabulary skill mentioned
// in text, in order of first appearance.
func findSkills(text string) []string {
	var found []string
	for _, token := range skillTokenPattern.FindAllString(strings.ToLower(text), -1) {
		token = strings.TrimRight(token, ".-/")
		if canonical, ok := skillAliases[token]; ok {
			found = append(found, canonical)
		}
	}
	return found
}

// splitSkillList splits a line such as "Skills: Go, React; SQL | Docker".
func splitSkillList(line string) []string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		line = line[idx+1:]
	}
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '•' || r == '·'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, NormalizeSkillName(p))
		}
	}
	return out
}
