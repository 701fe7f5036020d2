package services

import (
	"fmt"
	"strings"

	"github.com/rcdinesh/kidcastdailyapp/internal/models"
)

// ---------------------------------------------------------------------------
// Prompt templates
// One template per podcast type and audience. Every template demands a
// continuous plain-text narrative sized to the token budget, because the
// output goes straight to a TTS engine after cleaning.
// ---------------------------------------------------------------------------

const kidcastOpening = `Start with "Welcome to Kidcast Daily, where we bring news, trivia, fun-facts and more - just for curious kids like you".`

const plainTextRule = `The script should be a continuous, flowing narrative, strictly plain text. Do not include any markdown formatting (like #, *, etc.), notes, or bracketed text (like [host], [music]).`

// estimateWords converts a token budget to an approximate word count
// (roughly 0.75 words per token).
func estimateWords(tokens int) int {
	return tokens * 3 / 4
}

// wordRange renders the 80-100% band of the token budget as a word-count
// guidance string.
func wordRange(maxTokens int) string {
	return fmt.Sprintf("%d-%d words", estimateWords(maxTokens*8/10), estimateWords(maxTokens))
}

func kidsTemplate(podcastType models.PodcastType, maxTokens int) string {
	switch podcastType {
	case models.PodcastTypeNews:
		return fmt.Sprintf(`Create a fun and educational podcast news script for kids aged 7-10 about recent news related to {topic}. The script should be around %s.

%s

The podcast should:
1. %s
2. Include 2-3 interesting recent news items about {topic} and provide details.
3. End with a brief conclusion that summarizes what was learned.`, wordRange(maxTokens), plainTextRule, kidcastOpening)

	case models.PodcastTypeExplanatory:
		return fmt.Sprintf(`Create an explanatory podcast script for kids aged 7-10 that teaches them about {topic} in a fun and engaging way. The script should be around %s.

%s

The podcast should:
1. %s
2. Break down complex concepts about {topic} into simple, easy-to-understand explanations.
3. Use analogies, metaphors, and examples that kids can relate to.
4. Include interesting facts and "did you know" moments throughout.
5. End with a recap of the main points learned.`, wordRange(maxTokens), plainTextRule, kidcastOpening)

	case models.PodcastTypeTrivia:
		return fmt.Sprintf(`Create a fun trivia podcast script for kids aged 7-10 about {topic}. The script should be around %s.

%s

The podcast should:
1. %s
2. Include 10-15 interesting trivia facts about {topic} that kids would find fascinating.
3. Structure the trivia as questions followed by detailed answers.
4. Include a mix of easy, medium, and challenging questions.
5. End with a fun "super challenge" question.`, wordRange(maxTokens), plainTextRule, kidcastOpening)

	default: // story
		return fmt.Sprintf(`Create an entertaining story podcast script for kids aged 7-10 featuring {topic} as the main theme or character. The script should be around %s.

%s

The podcast should:
1. %s
2. Tell a complete, original story with a beginning, middle, and end.
3. Include interesting characters, dialogue, and a clear plot.
4. Incorporate educational elements about {topic} within the story.
5. End with a positive message or lesson learned.`, wordRange(maxTokens), plainTextRule, kidcastOpening)
	}
}

func generalTemplate(podcastType models.PodcastType, maxTokens int) string {
	switch podcastType {
	case models.PodcastTypeNews:
		return fmt.Sprintf(`Create an informative podcast news script about recent news related to {topic}. The script should be around %s.

%s

The podcast should:
1. %s
2. Include 3-5 interesting and relevant facts or news items about {topic}.
3. Explain current events in detail with context and background information.
4. End with a summary of the key points.`, wordRange(maxTokens), plainTextRule, kidcastOpening)

	case models.PodcastTypeExplanatory:
		return fmt.Sprintf(`Create an explanatory podcast script that teaches listeners about {topic} in a clear and engaging way. The script should be around %s.

%s

The podcast should:
1. %s
2. Break down complex concepts about {topic} into accessible explanations.
3. Cover the fundamental aspects of {topic} in a logical progression.
4. Support explanations with concrete examples and comparisons.
5. End with a recap of the main points covered.`, wordRange(maxTokens), plainTextRule, kidcastOpening)

	case models.PodcastTypeTrivia:
		return fmt.Sprintf(`Create an engaging trivia podcast script about {topic}. The script should be around %s.

%s

The podcast should:
1. %s
2. Include 10-15 notable trivia facts about {topic}.
3. Structure the trivia as questions followed by detailed answers.
4. Range from well-known facts to genuinely surprising ones.
5. End with a challenging final question.`, wordRange(maxTokens), plainTextRule, kidcastOpening)

	default: // story
		return fmt.Sprintf(`Create an entertaining story podcast script featuring {topic} as the main theme. The script should be around %s.

%s

The podcast should:
1. %s
2. Tell a complete, original story with a beginning, middle, and end.
3. Include interesting characters, dialogue, and a clear plot.
4. Weave factual elements about {topic} into the narrative.
5. End with a satisfying conclusion.`, wordRange(maxTokens), plainTextRule, kidcastOpening)
	}
}

// BuildPrompt selects the template for the parameter set and substitutes the
// topic into every {topic} placeholder.
func BuildPrompt(params models.GenerationParameters) string {
	var template string
	if params.Audience == models.AudienceGeneral {
		template = generalTemplate(params.PodcastType, params.MaxTokens)
	} else {
		template = kidsTemplate(params.PodcastType, params.MaxTokens)
	}
	return strings.ReplaceAll(template, "{topic}", params.Topic)
}
