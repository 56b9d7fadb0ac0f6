package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/prompts"

	"lecture-rag/internal/chromemdb"
	"lecture-rag/internal/embedding"
	"lecture-rag/internal/models"
)

// ErrNoRelevantContent means retrieval produced no chunks for the query;
// callers surface it as a not-found condition rather than a generic failure.
var ErrNoRelevantContent = errors.New("rag: no relevant content")

// Retriever fetches the contents of the k nearest chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}

// Generator produces a completion for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
	Stream(ctx context.Context, prompt string, temperature float64, fn func(ctx context.Context, chunk []byte) error) error
}

// Engine renders a prompt template over retrieved chunks and asks the
// hosted chat model for an answer.
type Engine struct {
	generator Generator
	topK      int
}

func NewEngine(generator Generator, topK int) *Engine {
	if topK <= 0 {
		topK = 5
	}
	return &Engine{generator: generator, topK: topK}
}

// Summarize runs the creative summary variant over a freshly indexed
// lecture collection.
func (e *Engine) Summarize(ctx context.Context, r Retriever) (string, error) {
	return e.answer(ctx, r, models.SummaryQuery, models.LectureSummaryPrompt, models.SummaryTemperature)
}

// AnswerLecture answers a question about one lecture.
func (e *Engine) AnswerLecture(ctx context.Context, r Retriever, question string) (string, error) {
	return e.answer(ctx, r, question, models.LectureQAPrompt, models.LectureQATemperature)
}

// AnswerAnnouncements answers a question over the announcements corpus
// with the deterministic prompt variant.
func (e *Engine) AnswerAnnouncements(ctx context.Context, r Retriever, question string) (string, error) {
	return e.answer(ctx, r, question, models.AnnounceQAPrompt, models.AnnounceQATemperature)
}

// StreamAnnouncements is the server-sent-event variant: chunks of the
// model output are forwarded to fn as they arrive.
func (e *Engine) StreamAnnouncements(ctx context.Context, r Retriever, question string, fn func(ctx context.Context, chunk []byte) error) error {
	prompt, err := e.renderPrompt(ctx, r, question, models.AnnounceQAPrompt)
	if err != nil {
		return err
	}
	return e.generator.Stream(ctx, prompt, models.AnnounceQATemperature, fn)
}

func (e *Engine) answer(ctx context.Context, r Retriever, question, template string, temperature float64) (string, error) {
	prompt, err := e.renderPrompt(ctx, r, question, template)
	if err != nil {
		return "", err
	}
	return e.generator.Generate(ctx, prompt, temperature)
}

func (e *Engine) renderPrompt(ctx context.Context, r Retriever, question, template string) (string, error) {
	docs, err := r.Retrieve(ctx, question, e.topK)
	if err != nil {
		return "", fmt.Errorf("rag: retrieve: %w", err)
	}
	if len(docs) == 0 {
		return "", ErrNoRelevantContent
	}

	tmpl := prompts.NewPromptTemplate(template, []string{"context", "question"})
	prompt, err := tmpl.Format(map[string]any{
		"context":  strings.Join(docs, "\n\n"),
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("rag: render prompt: %w", err)
	}
	return prompt, nil
}

// CollectionRetriever retrieves from one persisted chromem collection,
// embedding the query with the shared embedder.
type CollectionRetriever struct {
	store    *chromemdb.Store
	embedder *embeddings.EmbedderImpl
}

// OpenCollection opens the persisted collection at storagePath and wraps
// it as a Retriever.
func OpenCollection(storagePath, collectionName string, embedder *embeddings.EmbedderImpl) (*CollectionRetriever, error) {
	store, err := chromemdb.NewStore(storagePath)
	if err != nil {
		return nil, err
	}
	if err := store.GetOrCreateCollection(collectionName); err != nil {
		return nil, err
	}
	return &CollectionRetriever{store: store, embedder: embedder}, nil
}

func (r *CollectionRetriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	if r.store.Count() == 0 {
		return nil, nil
	}
	vec, err := embedding.EmbedQuery(ctx, r.embedder, query)
	if err != nil {
		return nil, err
	}
	results, err := r.store.Query(ctx, vec, k)
	if err != nil {
		return nil, err
	}
	docs := make([]string, 0, len(results))
	for _, res := range results {
		docs = append(docs, res.Content)
	}
	return docs, nil
}
