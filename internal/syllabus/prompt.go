package syllabus

import (
	"fmt"
	"strings"
)

func syllabusPrompt(r Request) string {
	contentTypes := r.ContentTypes
	if contentTypes == "" {
		contentTypes = "Not specified"
	}

	var assessmentLine string
	if r.AssessmentType != "" {
		assessmentLine = fmt.Sprintf(" Assessment type: %s.", r.AssessmentType)
		if r.Attempts > 0 {
			assessmentLine += fmt.Sprintf(" Number of attempts allowed: %d.", r.Attempts)
		}
	}

	return fmt.Sprintf(`Create a course syllabus for the topic '%s' for %s learners.
Total duration: %s (hours:minutes).
Number of modules required: %d.
Preferred content types: %s.%s
Write the syllabus in a %s tone.

Return structured module-wise syllabus:
- Each module must have a title
- Modules should have short description`,
		r.Topic, r.Audience, r.Duration, r.Modules, contentTypes, assessmentLine, strings.ToLower(r.AITone))
}

func detailedContentPrompt(syllabusText, tone string) string {
	if tone == "" {
		tone = DefaultTone
	}
	return fmt.Sprintf(`Here is a course syllabus:

%s

Generate detailed module content in a %s tone.
Each module should contain:
- Clear explanation
- Bullet points
- Example scenarios
- Summary at module end`, strings.TrimSpace(syllabusText), strings.ToLower(tone))
}
