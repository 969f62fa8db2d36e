package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/cleanup"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/config"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/media"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/pipeline"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/storage"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/summarizer"
	"github.com/codebuildervaibhav/meeting-summarizer/pkg/executor"
)

type processFlags struct {
	title     string
	speakers  int
	noDiarize bool
	docx      string
	save      bool
}

func newProcessCmd(configPath *string) *cobra.Command {
	var f processFlags

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Run one recording through the pipeline and print the transcript and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return process(cmd, cfg, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.title, "title", "", "meeting title (defaults to the file name)")
	cmd.Flags().IntVar(&f.speakers, "speakers", 0, "number of speakers (defaults to diarization.speakers)")
	cmd.Flags().BoolVar(&f.noDiarize, "no-diarize", false, "skip speaker attribution")
	cmd.Flags().StringVar(&f.docx, "docx", "", "also write a Word document to this path")
	cmd.Flags().BoolVar(&f.save, "save", false, "also save txt/md/json under storage.output_dir")
	return cmd
}

func process(cmd *cobra.Command, cfg *config.Config, path string, f processFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	// keep stdout for the result
	log := newLogger(cfg, cmd.ErrOrStderr())

	if !media.ValidateFormat(path) {
		return fmt.Errorf("unsupported format %q, expected one of %s",
			filepath.Ext(path), strings.Join(media.SupportedFormats(), ", "))
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if err := cleanup.EnsureDirs(cfg.Storage.TempDir); err != nil {
		return err
	}

	pipe, _, err := newPipeline(ctx, cfg, executor.New(), log)
	if err != nil {
		return err
	}

	title := f.title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	speakers := f.speakers
	if speakers == 0 {
		speakers = cfg.Diarization.Speakers
	}

	meeting, err := pipe.Run(ctx, pipeline.Input{
		Path:     path,
		Title:    title,
		Speakers: speakers,
		Diarize:  !f.noDiarize,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "# %s\n\n## Transcript\n\n%s\n\n## Summary\n\n%s\n",
		meeting.Title, strings.TrimSpace(storage.TranscriptText(meeting)), meeting.Summary)
	if meeting.FailedChunks > 0 {
		fmt.Fprintf(out, "\n(%d of %d summary chunks failed)\n", meeting.FailedChunks, meeting.ChunkCount)
	}

	if f.save {
		if err := cleanup.EnsureDirs(cfg.Storage.OutputDir); err != nil {
			return err
		}
		p, err := storage.NewLocalStorage(cfg.Storage.OutputDir).SaveMeeting(meeting)
		if err != nil {
			return err
		}
		log.Info(ctx, "Saved to %s", p)
	}

	if f.docx != "" {
		doc := summarizer.Document{
			Title:      meeting.Title,
			Summary:    meeting.Summary,
			Lines:      meeting.Attributed,
			Transcript: meeting.Transcript,
		}
		if err := summarizer.WriteDocx(doc, f.docx); err != nil {
			return err
		}
		log.Info(ctx, "Wrote %s", f.docx)
	}
	return nil
}
