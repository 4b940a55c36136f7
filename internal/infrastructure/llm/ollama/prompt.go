package ollama

const (
	analysisSnippetRunes = 8000
	timelineSnippetRunes = 3000
	tipsSnippetRunes     = 2000
)

func buildAnalysisPrompt(text string) string {
	return `You are an expert at analyzing Italian bureaucratic and immigration documents.
Analyze the document text and provide:
1. A category (e.g. "Residence Permit", "Tax Document", "Health Card", "Work Contract", "Visa", "Identity Document", "Bank Document", "Utility Bill", "Legal Notice", "Other")
2. A plain English summary (2-3 sentences explaining what this document is and its purpose)
3. Key dates or deadlines mentioned, as structured objects with label, ISO date (YYYY-MM-DD) and type
4. Important action items if any

Return strict JSON only:
{"category": "string", "summary": "string", "keyDates": [{"label": "string", "date": "YYYY-MM-DD", "type": "deadline|appointment|expiry"}], "actionItems": ["string"]}

Always convert dates to ISO format. "scade il 15 marzo 2025" becomes {"label": "Scadenza permesso", "date": "2025-03-15", "type": "expiry"}.
Types: "deadline" for action deadlines, "appointment" for scheduled meetings, "expiry" for document expirations.

Document:
` + snippet(text, analysisSnippetRunes)
}

func buildTimelinePrompt(text string) string {
	return `You are an expert in Italian immigration bureaucracy.
Extract the timeline of procedures from this document. If dates are not specific, estimate them from
the usual Italian processing delays. Add a practical tip for each step.

Return strict JSON only:
{"steps": [{"stage": "Step name", "estimatedDate": "Timing or date", "status": "done|pending|urgent", "tip": "Practical tip"}]}

Document:
` + snippet(text, timelineSnippetRunes)
}

func buildTipsPrompt(text string) string {
	return `You are a street-smart advisor for immigrants navigating Italian bureaucracy.
Ignore the official procedure and share the practical knowledge:
- What are the common loopholes?
- What usually goes wrong?
- What is the actual way to solve this in Italy?

Format as short bullet points. Be practical and direct.

Document:
` + snippet(text, tipsSnippetRunes)
}

func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
