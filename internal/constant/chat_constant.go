package constant

const (
	// Document processing statuses. Transitions are monotone:
	// pending -> indexed | failed, no way back out of a terminal state.
	DocumentStatusPending = "pending"
	DocumentStatusIndexed = "indexed"
	DocumentStatusFailed  = "failed"

	// Risk levels produced by the ingestion risk scan
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"

	// Audit ledger actions
	AuditActionSearchQuery      = "SEARCH_QUERY"
	AuditActionDocumentRegister = "DOCUMENT_REGISTER"
	AuditActionDocumentIndexed  = "DOCUMENT_INDEXED"
	AuditActionDocumentFailed   = "DOCUMENT_FAILED"

	// Resource labels recorded in audit entries
	AuditResourceQueryEngine  = "query_engine"
	AuditResourceDocumentRepo = "document_registry"

	// Audit entries record the truncated query only, to bound ledger size
	AuditQueryMaxLen = 50
)

// GenerationSystemPrompt frames the model as a careful researcher that only
// answers from the provided passages.
const GenerationSystemPrompt = `You are an expert legal researcher.
Your goal is to answer the user's question based on the provided Context.
1. Read the Context carefully.
2. If the context contains the answer, provide it in detail.
3. If the context contains relevant clauses but not a direct answer, INFER the answer from those clauses.
4. Do NOT refuse to answer unless the context is completely irrelevant.
5. Do NOT use knowledge from outside the Context.`

const (
	// UngroundedAnswerNotice is prepended when retrieval was unavailable and
	// the answer was produced without document grounding.
	UngroundedAnswerNotice = "Note: document retrieval is currently unavailable, so this answer is not grounded in your uploaded documents.\n\n"

	// GenerationTimeoutReply is returned when the generation model does not
	// answer within the configured deadline.
	GenerationTimeoutReply = "I was unable to produce an answer in time. Please try again."

	// NoContextNotice is the context block used when no passages were found.
	NoContextNotice = "(no matching passages found)"
)

// GenerationContextMaxChars caps the fused passage context handed to the
// model, guarding the provider's input limit.
const GenerationContextMaxChars = 35000
