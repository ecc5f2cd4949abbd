package gig

// CatalogGig is a worker-facing marketplace listing. Its lock state is
// ephemeral and overlaid from the unlock gate at read time.
type CatalogGig struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Company  string  `json:"company"`
	Category string  `json:"category"`
	Payout   float64 `json:"payout"`
	SkillTag string  `json:"skillTag"`
	IsLocked bool    `json:"isLocked"`
}

// Question is one multiple-choice quiz question
type Question struct {
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctAnswer"`
}

// Quiz is a fixed, ordered sequence of questions
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	SkillTag  string     `json:"skillTag,omitempty"`
	Questions []Question `json:"questions"`
}

// UserProfile is the worker profile and wallet view
type UserProfile struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	University    string   `json:"university,omitempty"`
	Skills        []string `json:"skills"`
	WalletBalance float64  `json:"walletBalance"`
	GigsCompleted int      `json:"gigsCompleted"`
	Rating        float64  `json:"rating"`
}
