package lecture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"lecture-rag/internal/db"
	"lecture-rag/internal/helper"
	"lecture-rag/internal/rag"
)

var (
	// ErrLectureNotFound means no ledger entry exists for the unique name.
	ErrLectureNotFound = errors.New("lecture: not found")
	// ErrNoSource means the request carried neither a URL nor an upload.
	ErrNoSource = errors.New("lecture: video_url or video_file required")
)

// Source is either a remote video URL or an uploaded file stream.
type Source struct {
	VideoURL   string
	Upload     io.Reader
	UploadName string
}

// Ledger is the memoization record for processed media.
type Ledger interface {
	FindLecture(ctx context.Context, uniqueName string) (*db.LectureRecord, error)
	CreateLecture(ctx context.Context, rec *db.LectureRecord) error
}

type Acquirer interface {
	Fetch(ctx context.Context, videoURL, collectionName string) (string, error)
	SaveUpload(src io.Reader, originalName, collectionName string) (string, error)
}

type Transcoder interface {
	Run(ctx context.Context, inputPath, collectionName string) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Indexer interface {
	Index(ctx context.Context, transcript, storagePath, collectionName string) error
}

// Engine is the slice of the RAG engine the pipeline uses.
type Engine interface {
	Summarize(ctx context.Context, r rag.Retriever) (string, error)
	AnswerLecture(ctx context.Context, r rag.Retriever, question string) (string, error)
}

// OpenRetriever opens the persisted collection backing a ledger entry.
type OpenRetriever func(storagePath, collectionName string) (rag.Retriever, error)

// Service wires the ingestion pipeline: acquire, transcode, transcribe,
// index, summarize, record. Ingestion runs once per unique name; every
// later request is served from the ledger.
type Service struct {
	ledger        Ledger
	acquirer      Acquirer
	transcoder    Transcoder
	transcriber   Transcriber
	indexer       Indexer
	engine        Engine
	openRetriever OpenRetriever
	vectorRoot    string
	logger        zerolog.Logger
}

func NewService(
	ledger Ledger,
	acquirer Acquirer,
	transcoder Transcoder,
	transcriber Transcriber,
	indexer Indexer,
	engine Engine,
	openRetriever OpenRetriever,
	vectorRoot string,
	logger zerolog.Logger,
) *Service {
	return &Service{
		ledger:        ledger,
		acquirer:      acquirer,
		transcoder:    transcoder,
		transcriber:   transcriber,
		indexer:       indexer,
		engine:        engine,
		openRetriever: openRetriever,
		vectorRoot:    vectorRoot,
		logger:        logger,
	}
}

// SummaryResult is what /lecture/summary returns.
type SummaryResult struct {
	UniqueName string `json:"unique_name"`
	Summary    string `json:"summary"`
}

// Summarize returns the cached summary when the unique name is already in
// the ledger; otherwise it runs the full ingestion pipeline. A failed
// ingestion writes no ledger row and leaves any partial files behind, so a
// retried request reprocesses from scratch. Two concurrent ingestions of
// the same unique name race on the ledger unique constraint; the loser
// fails instead of deduplicating.
func (s *Service) Summarize(ctx context.Context, uniqueName string, src Source) (*SummaryResult, error) {
	rec, err := s.ledger.FindLecture(ctx, uniqueName)
	if err == nil {
		s.logger.Info().Str("unique_name", uniqueName).Msg("serving cached summary")
		return &SummaryResult{UniqueName: rec.UniqueName, Summary: rec.Summary}, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	collectionName := helper.GenerateUniqueName("collection")
	storagePath := filepath.Join(s.vectorRoot, collectionName)

	var videoPath string
	switch {
	case src.VideoURL != "":
		videoPath, err = s.acquirer.Fetch(ctx, src.VideoURL, collectionName)
	case src.Upload != nil:
		videoPath, err = s.acquirer.SaveUpload(src.Upload, src.UploadName, collectionName)
	default:
		return nil, ErrNoSource
	}
	if err != nil {
		return nil, err
	}

	audioPath, err := s.transcoder.Run(ctx, videoPath, collectionName)
	if err != nil {
		return nil, err
	}

	transcript, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	if err := s.indexer.Index(ctx, transcript, storagePath, collectionName); err != nil {
		return nil, err
	}

	retriever, err := s.openRetriever(storagePath, collectionName)
	if err != nil {
		return nil, err
	}
	summary, err := s.engine.Summarize(ctx, retriever)
	if err != nil {
		return nil, err
	}

	record := &db.LectureRecord{
		UniqueName:     uniqueName,
		CollectionName: collectionName,
		StoragePath:    storagePath,
		Summary:        summary,
	}
	if err := s.ledger.CreateLecture(ctx, record); err != nil {
		return nil, fmt.Errorf("lecture: record ingestion: %w", err)
	}

	s.logger.Info().
		Str("unique_name", uniqueName).
		Str("collection", collectionName).
		Msg("lecture ingested")
	return &SummaryResult{UniqueName: uniqueName, Summary: summary}, nil
}

// Answer answers a question about an already ingested lecture.
func (s *Service) Answer(ctx context.Context, uniqueName, question string) (string, error) {
	rec, err := s.ledger.FindLecture(ctx, uniqueName)
	if errors.Is(err, db.ErrNotFound) {
		return "", ErrLectureNotFound
	}
	if err != nil {
		return "", err
	}

	retriever, err := s.openRetriever(rec.StoragePath, rec.CollectionName)
	if err != nil {
		return "", err
	}
	return s.engine.AnswerLecture(ctx, retriever, question)
}
