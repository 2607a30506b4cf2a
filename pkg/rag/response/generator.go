package response

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"casechat-be/internal/constant"
	"casechat-be/internal/pkg/logger"
	"casechat-be/pkg/llm"
	"casechat-be/pkg/store"
)

// Generator creates answers grounded on retrieved passages.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Generate produces an answer for query using ONLY the supplied passages plus
// bounded conversation history. Passages are numbered in order so the model
// can reference them as [1], [2], ... matching the citation ordinals handed
// to the client.
func (g *Generator) Generate(
	ctx context.Context,
	query string,
	passages []store.Passage,
	history []llm.Message,
) (string, error) {
	promptText := g.buildGroundedPrompt(query, passages)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: constant.GenerationSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: promptText})

	answer, err := g.llmProvider.Chat(ctx, messages)
	if err != nil {
		g.logger.Error("generation", "LLM generation failed", map[string]interface{}{"error": err.Error()})
		return "", err
	}

	g.logger.Info("generation", "Answer generated", map[string]interface{}{
		"passages": len(passages),
	})
	return answer, nil
}

// GenerateUngrounded answers from conversation history alone. Used in
// degraded mode when retrieval is unavailable; the caller is responsible for
// flagging the answer as ungrounded.
func (g *Generator) GenerateUngrounded(
	ctx context.Context,
	query string,
	history []llm.Message,
) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: constant.GenerationSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: query})

	answer, err := g.llmProvider.Chat(ctx, messages)
	if err != nil {
		g.logger.Error("generation", "Ungrounded generation failed", map[string]interface{}{"error": err.Error()})
		return "", err
	}
	return answer, nil
}

func (g *Generator) buildGroundedPrompt(query string, passages []store.Passage) string {
	var prompt strings.Builder

	prompt.WriteString("<context>\n")
	if len(passages) == 0 {
		prompt.WriteString(constant.NoContextNotice + "\n")
	}
	used := 0
	for i, passage := range passages {
		block := fmt.Sprintf("[%d] (Source: %s)\n%s\n\n", i+1, passage.SourceLocator, passage.Text)
		if used+len(block) > constant.GenerationContextMaxChars {
			// Truncate the final block to the remaining budget instead of dropping it.
			if remaining := constant.GenerationContextMaxChars - used; remaining > 0 {
				prompt.WriteString(truncateUTF8(block, remaining))
				prompt.WriteString("\n\n")
			}
			break
		}
		prompt.WriteString(block)
		used += len(block)
	}
	prompt.WriteString("</context>\n\n")

	prompt.WriteString("<task>\nAnswer the question using ONLY the context above.\n")
	prompt.WriteString("Cite the passages you rely on by their number, e.g. [1].\n")
	prompt.WriteString("If the context does not contain the answer, say so.\n</task>\n\n")
	prompt.WriteString(fmt.Sprintf("Question: %s", query))

	return prompt.String()
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
