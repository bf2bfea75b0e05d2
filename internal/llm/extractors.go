package llm

import "context"

// storyPrompt asks the model to retell a resume as a first-person career
// narrative. Searching against these narratives surfaces candidates whose
// trajectory matches a role description rather than just keyword overlap.
const storyPrompt = "Rewrite this candidate's resume as a coherent first-person story. " +
	"Cover how their career developed, what problems they chose to work on, " +
	"and what they accomplished at each step. Write flowing prose, no headings or bullet points."

// personalityPrompt asks the model to read between the lines of a resume
// and describe the candidate's working style and temperament.
const personalityPrompt = "Read between the lines of this candidate's resume and describe their personality: " +
	"how they approach work, what motivates them, how they likely collaborate with others. " +
	"Base every observation on evidence from the resume itself. Write flowing prose, no headings or bullet points."

// StoryExtractor turns raw resume text into a first-person story narrative.
type StoryExtractor struct {
	generator *Generator
}

// NewStoryExtractor creates a StoryExtractor backed by the given Generator.
func NewStoryExtractor(g *Generator) *StoryExtractor {
	return &StoryExtractor{generator: g}
}

// Extract generates the story narrative for the given resume text.
func (e *StoryExtractor) Extract(ctx context.Context, resumeText string) (string, error) {
	return e.generator.Generate(ctx, storyPrompt, resumeText)
}

// PersonalityExtractor turns raw resume text into a personality analysis.
type PersonalityExtractor struct {
	generator *Generator
}

// NewPersonalityExtractor creates a PersonalityExtractor backed by the given Generator.
func NewPersonalityExtractor(g *Generator) *PersonalityExtractor {
	return &PersonalityExtractor{generator: g}
}

// Extract generates the personality analysis for the given resume text.
func (e *PersonalityExtractor) Extract(ctx context.Context, resumeText string) (string, error) {
	return e.generator.Generate(ctx, personalityPrompt, resumeText)
}
