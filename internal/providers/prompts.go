package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/codescout/internal/research"
)

// systemPrompt frames every call. The date keeps the model from hedging
// about its knowledge cutoff when reasoning about "current" code.
func systemPrompt() string {
	return fmt.Sprintf(`You are an expert code researcher and analyst. Today is %s. Follow these instructions when responding:
- You are analyzing code repositories to answer specific technical questions.
- The user is a highly experienced developer; no need to simplify, be as detailed as possible.
- Be highly organized and systematic in your research approach.
- Provide detailed explanations with code references (file paths, function names, types).
- Value good architectural patterns and call out design decisions.
- Consider edge cases and potential issues in the code.
- You may speculate when code is unclear, but flag it clearly.`, time.Now().Format(time.RFC3339))
}

func queryPrompt(question string, learnings []string, max int) string {
	var prior string
	if len(learnings) > 0 {
		var sb strings.Builder
		sb.WriteString("\n\nHere are learnings from previous research rounds; use them to generate more specific queries:\n")
		for _, l := range learnings {
			sb.WriteString("- ")
			sb.WriteString(l)
			sb.WriteString("\n")
		}
		prior = sb.String()
	}

	return fmt.Sprintf(`Given the following question about a code repository, generate a list of specific search queries to investigate the codebase.
Return a maximum of %d queries, but return fewer if the question is straightforward.
Make sure each query is unique and targets a different aspect of the codebase.

<question>%s</question>%s

For each query provide:
1. The search query string (keywords or phrases to search in the code)
2. A research goal explaining what we are trying to learn and how to advance the investigation

Respond in JSON format with the following structure:
{
    "queries": [
        {
            "query": "search terms for the codebase",
            "research_goal": "what we are investigating and why, with follow-up directions"
        }
    ]
}`, max, question, prior)
}

func extractionPrompt(query string, docs []research.Document, maxLearnings, maxFollowUps int) string {
	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		path := doc.Path
		if path == "" {
			path = "unknown"
		}
		contents = append(contents, fmt.Sprintf("File: %s\n\n%s", path, doc.Content))
	}

	return fmt.Sprintf(`Given the following code snippets retrieved for the query %q, analyze the code and extract key learnings.

Return a maximum of %d learnings and %d follow-up questions.

Make sure each learning is:
- Concise but information-dense
- Specific to the code shown (include file paths, function names, type names)
- Focused on important technical details, patterns, or architectural decisions

<code_snippets>
%s
</code_snippets>

Respond in JSON format:
{
    "learnings": [
        "specific learning with technical details from the code"
    ],
    "follow_up_questions": [
        "follow-up question to investigate further"
    ]
}`, query, maxLearnings, maxFollowUps, strings.Join(contents, "\n\n---\n\n"))
}

func reportPrompt(question string, learnings []string) string {
	var sb strings.Builder
	for i, l := range learnings {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, l)
	}

	return fmt.Sprintf(`Based on the following research question and all the learnings gathered from analyzing the codebase, write a comprehensive final report.

<question>
%s
</question>

<learnings>
%s</learnings>

Write a detailed technical report that:
1. Directly answers the original question
2. Incorporates ALL the learnings from the research
3. Includes specific code references (file paths, function names, types)
4. Explains architectural patterns and design decisions
5. Provides code examples where relevant
6. Is formatted in clean Markdown

Write the report in Markdown format.`, question, sb.String())
}

// withSystem prepends the system prompt. The providers behind langchaingo
// differ in how they treat system roles, so the frame travels in the user
// message for identical behavior everywhere.
func withSystem(prompt string) string {
	return systemPrompt() + "\n\n" + prompt
}
