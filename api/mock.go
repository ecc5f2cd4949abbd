package api

import (
	"strings"

	"github.com/teranos/cashngo/gig"
)

// MockGigs is the catalog served when the API is unavailable
func MockGigs() []gig.CatalogGig {
	return []gig.CatalogGig{
		{ID: "c1", Title: "Social Media Poster Design", Company: "Campus Cafe", Category: "Design", Payout: 500, SkillTag: "design", IsLocked: true},
		{ID: "c2", Title: "Python Data Cleanup Script", Company: "Research Lab", Category: "Development", Payout: 1200, SkillTag: "python", IsLocked: true},
		{ID: "c3", Title: "Event Blog Write-up", Company: "Student Council", Category: "Writing", Payout: 350, SkillTag: "writing", IsLocked: true},
		{ID: "c4", Title: "Landing Page Fixes", Company: "Startup Incubator", Category: "Development", Payout: 900, SkillTag: "web", IsLocked: true},
	}
}

// MockUserProfile is the profile served when the API is unavailable
func MockUserProfile() gig.UserProfile {
	return gig.UserProfile{
		ID:            "u1",
		Name:          "Demo Student",
		Email:         "student@example.edu",
		University:    "State University",
		Skills:        []string{"design", "writing"},
		WalletBalance: 2450,
		GigsCompleted: 7,
		Rating:        4.6,
	}
}

var mockQuestions = map[string][]gig.Question{
	"design": {
		{Prompt: "Which colour model is used for print?", Options: []string{"RGB", "CMYK", "HSL", "LAB"}, CorrectIndex: 1},
		{Prompt: "Which file format keeps vector shapes?", Options: []string{"JPEG", "PNG", "SVG", "GIF"}, CorrectIndex: 2},
		{Prompt: "Kerning adjusts the space between...", Options: []string{"Lines", "Paragraphs", "Letter pairs", "Columns"}, CorrectIndex: 2},
	},
	"python": {
		{Prompt: "Which type is immutable?", Options: []string{"list", "dict", "tuple", "set"}, CorrectIndex: 2},
		{Prompt: "What does len({}) return?", Options: []string{"0", "1", "None", "error"}, CorrectIndex: 0},
		{Prompt: "Which keyword defines a generator?", Options: []string{"return", "yield", "async", "lambda"}, CorrectIndex: 1},
	},
	"writing": {
		{Prompt: "An inverted pyramid puts what first?", Options: []string{"Background", "Quotes", "Key facts", "Conclusion"}, CorrectIndex: 2},
		{Prompt: "Active voice example?", Options: []string{"The ball was kicked", "She kicked the ball", "Kicked was the ball", "The ball got kicked"}, CorrectIndex: 1},
		{Prompt: "A lede is...", Options: []string{"The headline", "The opening sentence", "A footnote", "The byline"}, CorrectIndex: 1},
	},
	"web": {
		{Prompt: "Which tag links a stylesheet?", Options: []string{"<style>", "<link>", "<script>", "<meta>"}, CorrectIndex: 1},
		{Prompt: "HTTP status for Not Found?", Options: []string{"200", "301", "404", "500"}, CorrectIndex: 2},
		{Prompt: "Flexbox main axis is set by?", Options: []string{"align-items", "flex-direction", "order", "gap"}, CorrectIndex: 1},
	},
}

// MockQuiz returns a built-in quiz for skill, or a general one
func MockQuiz(skill string) gig.Quiz {
	key := strings.ToLower(strings.TrimSpace(skill))
	questions, ok := mockQuestions[key]
	if !ok {
		key = "general"
		questions = []gig.Question{
			{Prompt: "What should you do before starting a gig?", Options: []string{"Read the brief", "Ask for payment", "Skip requirements", "Nothing"}, CorrectIndex: 0},
			{Prompt: "Missed a deadline. Best move?", Options: []string{"Go silent", "Tell the employer early", "Blame others", "Submit nothing"}, CorrectIndex: 1},
			{Prompt: "Good portfolio links are...", Options: []string{"Private", "Broken", "Public and relevant", "Unrelated"}, CorrectIndex: 2},
		}
	}
	out := make([]gig.Question, len(questions))
	copy(out, questions)
	return gig.Quiz{ID: "mock-" + key, Title: strings.ToUpper(key[:1]) + key[1:] + " skills check", SkillTag: key, Questions: out}
}
