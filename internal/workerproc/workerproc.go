package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/queue"
)

// Analyzer runs one document analysis.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, documentID string, force bool) (analyses.Analysis, bool, error)
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingDocumentID indicates a message without a document id.
type ErrMissingDocumentID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingDocumentID) Error() string { return "missing document id" }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	DocumentID string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process document"
	}
	return "process document: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.DocumentID) == "" {
		return msg, meta, ErrMissingDocumentID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// Unrecoverable reports parse failures that retrying cannot fix.
func Unrecoverable(err error) bool {
	var empty ErrEmptyBody
	var decode ErrDecode
	var missing ErrMissingDocumentID
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &missing)
}

// HandleMessage analyses the message's document under the message's request id.
func HandleMessage(ctx context.Context, analyzer Analyzer, msg queue.Message) (analyses.Analysis, bool, error) {
	if analyzer == nil {
		return analyses.Analysis{}, false, errors.New("analysis service not configured")
	}
	if strings.TrimSpace(msg.DocumentID) == "" {
		return analyses.Analysis{}, false, ErrMissingDocumentID{RequestID: msg.RequestID}
	}

	ctx = queue.WithRequestID(ctx, msg.RequestID)
	a, reused, err := analyzer.AnalyzeDocument(ctx, msg.DocumentID, msg.Force)
	if err != nil {
		return analyses.Analysis{}, false, ErrProcess{DocumentID: msg.DocumentID, RequestID: msg.RequestID, Err: err}
	}
	return a, reused, nil
}
