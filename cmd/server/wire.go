package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/config"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/diarization"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/llm"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/media"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/pipeline"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/summarizer"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/transcription"
	"github.com/codebuildervaibhav/meeting-summarizer/pkg/executor"
)

func newLogger(cfg *config.Config, out io.Writer) logger.Logger {
	return logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
}

// newCompleter builds the chat-completion client for the configured provider
func newCompleter(ctx context.Context, cfg *config.Config) (llm.Completer, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	default:
		return llm.NewOpenAIClient(cfg.LLM.APIURL, cfg.LLM.Model, cfg.LLM.APIKey), nil
	}
}

func newTranscriber(cfg *config.Config, exec executor.Executor, log logger.Logger) transcription.Transcriber {
	if cfg.Whisper.Backend == "http" {
		return transcription.NewHTTPTranscriber(cfg.Whisper.URL, cfg.WhisperTimeout(), log)
	}
	return transcription.NewWhisperTranscriber(transcription.WhisperOptions{
		Binary:   cfg.Whisper.Binary,
		Model:    cfg.Whisper.Model,
		Device:   cfg.Whisper.Device,
		Language: cfg.Whisper.Language,
		BeamSize: cfg.Whisper.BeamSize,
		Threads:  cfg.Whisper.Threads,
		TempDir:  cfg.Storage.TempDir,
	}, exec, log)
}

// newDiarizer returns nil when diarization is disabled
func newDiarizer(cfg *config.Config, log logger.Logger) (pipeline.Diarizer, error) {
	if !cfg.Diarization.Enabled {
		return nil, nil
	}

	var enc diarization.Encoder = diarization.NewFeatureEncoder()
	if cfg.Diarization.Encoder == "http" {
		enc = diarization.NewHTTPEncoder(cfg.Diarization.EncoderURL, cfg.DiarizationTimeout())
	}

	linkage, err := diarization.ParseLinkage(cfg.Diarization.Linkage)
	if err != nil {
		return nil, err
	}

	extractor := diarization.NewExtractor(enc, cfg.Diarization.Rate, cfg.Diarization.MinCoverage, log)
	clusterer := diarization.NewClusterer(linkage, cfg.Diarization.MaxPoints, log)
	return diarization.New(extractor, clusterer, log), nil
}

// newPipeline wires the recording pipeline and returns the completer it summarizes with
func newPipeline(ctx context.Context, cfg *config.Config, exec executor.Executor, log logger.Logger) (*pipeline.Pipeline, llm.Completer, error) {
	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("llm client: %w", err)
	}

	diarizer, err := newDiarizer(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("diarizer: %w", err)
	}

	summ := summarizer.New(completer, summarizer.Options{
		MaxWords:    cfg.LLM.Summary.MaxWords,
		Temperature: cfg.LLM.Summary.Temperature,
		MaxTokens:   cfg.LLM.Summary.MaxTokens,
		Timeout:     cfg.LLMTimeout(),
	}, log)

	p := pipeline.New(
		media.NewNormalizer(exec, cfg.Storage.TempDir, log),
		newTranscriber(cfg, exec, log),
		diarizer,
		summ,
		pipeline.Options{
			TranscribeTimeout: cfg.WhisperTimeout(),
			DiarizeTimeout:    cfg.DiarizationTimeout(),
			MaxDuration:       time.Duration(cfg.Limits.MaxDurationMinutes) * time.Minute,
		},
		log,
	)
	return p, completer, nil
}
