package models

// Prompt templates rendered with langchaingo go-template prompts.

const (
	// LectureSummaryPrompt drives the creative summary pass over a freshly
	// indexed lecture.
	LectureSummaryPrompt = `You are an assistant that summarizes university lecture recordings.
Use only the lecture transcript excerpts below. Write a structured summary
covering the main topics, key definitions, and any announcements made by
the lecturer. Answer in the same language as the transcript.

Transcript excerpts:
{{.context}}

Request:
{{.question}}

Summary:`

	// LectureQAPrompt answers a question about a single lecture.
	LectureQAPrompt = `You are an assistant answering questions about a recorded lecture.
Base your answer strictly on the transcript excerpts below. If the excerpts
do not contain the answer, say that the lecture does not cover it. Answer
in the same language as the question.

Transcript excerpts:
{{.context}}

Question:
{{.question}}

Answer:`

	// AnnounceQAPrompt answers a question over the crawled school
	// announcements corpus.
	AnnounceQAPrompt = `Context: {{.context}}

Question: {{.question}}

Answer: `
)

// Temperatures per prompt variant: the summary is biased toward
// creativity, lecture QA sits in the middle, announcement QA is
// deterministic.
const (
	SummaryTemperature    = 1.0
	LectureQATemperature  = 0.7
	AnnounceQATemperature = 0.0
)

// SummaryQuery is the fixed request used for the one-time summary pass.
const SummaryQuery = "Summarize the lecture content."
