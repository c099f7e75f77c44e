package services

import (
	"fmt"
	"strings"

	"talentmatch/cv-matcher/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// dimensionContracts holds the comparison semantics of each scored dimension.
// The four dimensions share one orchestration path and differ only by this
// contract text.
var dimensionContracts = map[models.Dimension]string{
	models.DimensionEducation: `You are an assistant that calculates how well a candidate's education matches a job's required education.
Return a JSON with a single numeric score between 0 and 1.

Rules:
- The job may require multiple degrees. Treat each required degree as a separate condition.
- For each required degree, check BOTH:
    1. Degree level (PhD > Master's > Bachelor's > Associate > High School).
    2. Field of study (must be the same or semantically close).
- Subscore rules:
    * If the candidate has a degree in the same/close field AND level >= required -> 1
    * If the candidate has the right field but a lower degree level -> proportional score (e.g., Bachelor's vs Master's = 0.5)
    * If the candidate has the right level but wrong field -> 0
    * If the candidate has no relevant degree -> 0
- When multiple required degrees exist, average the subscores.
- Always return the SAME score for the same input (no randomness).

Return JSON only, no markdown fences, no extra text.
Format:
{ "score": 0.xx, "justification": string }`,

	models.DimensionExperience: `You are an assistant that calculates how well a candidate's experiences match a job's required experiences.
Return a JSON with a single numeric score between 0 and 1.

Rules:
- Treat each required experience as a separate condition.
- Compare both the years of experience and the domain/role.
- If candidate years >= years required -> full credit for years.
- If candidate years < required years -> proportional credit (candidate years / required years).
- Role match: if the candidate role matches or is semantically close -> credit, else 0.
- Combine years (70%) and role match (30%) to produce each subscore.
- Average across all job requirements.
- Always return the SAME score for the same input (no randomness).

Return JSON only, no markdown fences, no extra text.
Format:
{ "score": 0.xx, "justification": string }`,

	models.DimensionTechSkills: `You are an assistant that calculates how well a candidate's technical skills match a job's required technical skills.
Return a JSON with a single numeric score between 0 and 1.

Rules:
- The job may list multiple required technical skills. Treat each as a separate condition.
- Subscore rules:
    * If the candidate lists the exact skill -> 1
    * If the candidate lists a related/close skill (e.g., TensorFlow vs PyTorch, Java vs Kotlin) -> 0.5
    * If the candidate does not list the skill at all -> 0
- Average across all required skills.
- Always return the SAME score for the same input (no randomness).

Return JSON only, no markdown fences, no extra text.
Format:
{ "score": 0.xx, "justification": string }`,

	models.DimensionSoftSkills: `You are an assistant that calculates how well a candidate's soft skills match a job's required soft skills.
Return a JSON with a single numeric score between 0 and 1.

Rules:
- The job may list multiple required soft skills. Treat each as a separate condition.
- Subscore rules:
    * If the candidate lists the exact skill -> 1
    * If the candidate lists a related/close skill (e.g., communication vs team player) -> 0.5
    * If the candidate does not list the skill at all -> 0
- Average across all required skills.
- Always return the SAME score for the same input (no randomness).

Return JSON only, no markdown fences, no extra text.
Format:
{ "score": 0.xx, "justification": string }`,
}

// BuildDimensionInstruction returns the system instruction carrying one
// dimension's comparison contract.
func (pb *PromptBuilder) BuildDimensionInstruction(dim models.Dimension) string {
	return dimensionContracts[dim]
}

// BuildDimensionPrompt renders the two attribute lists of one dimension.
func (pb *PromptBuilder) BuildDimensionPrompt(dim models.Dimension, jobItems, candidateItems []string) string {
	return fmt.Sprintf(`Job required %s:
%s

Candidate %s:
%s`,
		dim, formatItems(jobItems),
		dim, formatItems(candidateItems),
	)
}

// BuildJobExtractionPrompt creates the prompt that extracts structured
// requirements from a job description.
func (pb *PromptBuilder) BuildJobExtractionPrompt(description string) string {
	return fmt.Sprintf(`You are an assistant that extracts structured job requirements.

Given the following job description, return a JSON object with exactly these keys:
- education: list of strings
- experiences: list of strings
- responsibilities: list of strings
- tech_skills: list of strings
- soft_skills: list of strings

Only return valid JSON, no markdown fences, no extra text.

Job description:
"""%s"""`, description)
}

// BuildCVExtractionPrompt creates the prompt that extracts candidate details
// from resume text.
func (pb *PromptBuilder) BuildCVExtractionPrompt(cvText string) string {
	return fmt.Sprintf(`You are an assistant that extracts structured candidate information from resumes.

Return a JSON object with these keys:
- name: string
- email: string
- summary: string
- education: list of strings
- experiences: list of strings
- responsibilities: list of strings
- tech_skills: list of strings
- soft_skills: list of strings

Only return valid JSON, no markdown fences, no extra text.

CV text:
"""%s"""`, cvText)
}

func formatItems(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
