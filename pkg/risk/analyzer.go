package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"casechat-be/internal/constant"
	"casechat-be/internal/pkg/logger"
	"casechat-be/pkg/llm"
)

// Assessment is the outcome of a document risk scan.
type Assessment struct {
	Level string   `json:"score"` // "low" | "medium" | "high"
	Flags []string `json:"flags"`
}

// Analyzer scans document text for high-risk clauses using the LLM.
// It is a collaborator of the ingestion pipeline: the registry itself never
// computes risk, it only stores what the analyzer hands to MarkIndexed.
type Analyzer struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewAnalyzer(provider llm.LLMProvider, log logger.ILogger) *Analyzer {
	return &Analyzer{
		provider: provider,
		logger:   log,
	}
}

const scanPromptTemplate = `Instruction: Act as a Senior Legal Risk Officer.
Analyze the following legal document text for critical risks.
Focus on:
1. Unlimited Liability (High Risk)
2. Missing Termination for Convenience (Medium Risk)
3. Unilateral Indemnification (High Risk)
4. Non-Compete Clauses > 2 Years (Medium Risk)

Return ONLY a JSON object in this format:
{
    "score": "high" or "medium" or "low",
    "flags": ["Brief description of risk 1", "Brief description of risk 2"]
}

Document Text (Truncated):
%s

JSON Response:`

// scanTextMaxChars bounds how much document text is sent to the model.
const scanTextMaxChars = 12000

// Scan assesses the given document text. A scan that cannot be parsed is
// reported as low risk with an explanatory flag rather than failing
// ingestion: risk scoring is advisory, indexing is not.
func (a *Analyzer) Scan(ctx context.Context, text string) Assessment {
	if runes := []rune(text); len(runes) > scanTextMaxChars {
		text = string(runes[:scanTextMaxChars])
	}

	prompt := fmt.Sprintf(scanPromptTemplate, text)

	raw, err := a.provider.Generate(ctx, prompt, llm.WithTemperature(0.1), llm.WithMaxTokens(512))
	if err != nil {
		a.logger.Warn("risk", "Risk scan failed", map[string]interface{}{"error": err.Error()})
		return Assessment{Level: constant.RiskLevelLow, Flags: []string{}}
	}

	assessment, err := parseAssessment(raw)
	if err != nil {
		a.logger.Warn("risk", "Risk scan output unparseable", map[string]interface{}{"error": err.Error()})
		return Assessment{Level: constant.RiskLevelLow, Flags: []string{"Analysis Inconclusive"}}
	}
	return assessment
}

// parseAssessment extracts the first JSON object from the model output.
func parseAssessment(raw string) (Assessment, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return Assessment{}, fmt.Errorf("no JSON object in risk response")
	}

	var assessment Assessment
	if err := json.Unmarshal([]byte(raw[start:end+1]), &assessment); err != nil {
		return Assessment{}, err
	}

	assessment.Level = strings.ToLower(assessment.Level)
	switch assessment.Level {
	case constant.RiskLevelLow, constant.RiskLevelMedium, constant.RiskLevelHigh:
	default:
		return Assessment{}, fmt.Errorf("unknown risk level %q", assessment.Level)
	}
	if assessment.Flags == nil {
		assessment.Flags = []string{}
	}
	return assessment, nil
}
