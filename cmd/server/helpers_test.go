package main

import (
	"context"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/chat"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/llm"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/logger"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/session"
)

type nopLLM struct{}

func (nopLLM) Complete(context.Context, llm.Request) (string, error) { return "", nil }

func newTestSessions() *session.Manager {
	return session.NewManager(nopLLM{}, chat.Options{}, logger.Discard())
}

func sessionRecord() session.Record {
	return session.Record{Summary: "- notes"}
}
