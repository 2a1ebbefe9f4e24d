package llm

import (
	"fmt"
	"strings"
)

// NewOfflineProvider returns a MockProvider that answers every purpose with
// a fixed, well-formed reply. It backs the "mock" provider setting so the
// whole pipeline can run without credentials.
func NewOfflineProvider() *MockProvider {
	p := NewMockProvider().WithResponder(offlineReply)
	p.model = "offline"
	return p
}

func offlineReply(purpose string, req Request) MockResponse {
	subject := firstLine(lastUserMessage(req))
	switch purpose {
	case PurposeIntent:
		return MockText("conversation")
	case PurposeFilter:
		return MockText(`{"username":"","course":"","status":"","start_date":"","end_date":""}`)
	case PurposeSyllabus:
		return MockText(fmt.Sprintf("Syllabus for %s\n\nModule 1: Foundations\n- Key terms\n- Core ideas\n\nModule 2: Practice\n- Worked examples\n- Exercises\n", subject))
	case PurposeCourseContent:
		return MockText(fmt.Sprintf("%s\n\nModule 1: Foundations\nThis module introduces the key terms and core ideas.\n\nModule 2: Practice\nThis module works through examples and exercises.\n", subject))
	case PurposeConversation:
		return MockText("The assistant is running offline. Ask about learner progress, for example: who completed Python Basics?")
	case PurposeCareerPath:
		return MockText(offlineCareerPath)
	}
	// Anything else, assessment questions included, gets a reply the
	// consumer rejects so its own fallback runs.
	return MockText("offline")
}

func lastUserMessage(req Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "the course"
	}
	return s
}

const offlineCareerPath = `{"courses":[
{"course_name":"Foundations","description":"Core concepts of the target role.","category":"Fundamentals","level":"Beginner","estimated_hours":8,"mandatory":true,"thumbnail_url":"https://images.unsplash.com/photo-1515879218367-8466d910aaa4"},
{"course_name":"Tools and Workflow","description":"Day-to-day tooling.","category":"Tooling","level":"Beginner","estimated_hours":10,"mandatory":true,"thumbnail_url":"https://images.unsplash.com/photo-1498050108023-c5249f4df085"},
{"course_name":"Applied Projects","description":"Hands-on projects.","category":"Practice","level":"Intermediate","estimated_hours":16,"mandatory":false,"thumbnail_url":"https://images.unsplash.com/photo-1461749280684-dccba630e2f6"},
{"course_name":"Advanced Topics","description":"Depth for senior work.","category":"Advanced","level":"Advanced","estimated_hours":12,"mandatory":false,"thumbnail_url":"https://images.unsplash.com/photo-1504639725590-34d0984388bd"}
]}`
