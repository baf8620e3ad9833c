package homework

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hagwonhq/academy_backend_v1/internal/grader"
	"github.com/hagwonhq/academy_backend_v1/internal/models"
	"github.com/hagwonhq/academy_backend_v1/internal/queue"
)

// Processor drains the grading queue: it loads pending submissions, calls
// the AI grader and writes the outcome back through the service. It runs in
// the standalone worker, or embedded in the server when the in-memory queue
// backend is selected.
type Processor struct {
	svc     *Service
	client  *grader.Client
	log     zerolog.Logger
	timeout time.Duration
}

func NewProcessor(svc *Service, client *grader.Client, log zerolog.Logger, timeout time.Duration) *Processor {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Processor{svc: svc, client: client, log: log, timeout: timeout}
}

// Run consumes grade messages until the context is cancelled.
func (p *Processor) Run(ctx context.Context, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	p.log.Info().Msg("grading processor started")
	for msg := range messages {
		if msg.Type != "grade" {
			continue
		}
		p.Process(ctx, string(msg.Body))
	}
	p.log.Info().Msg("grading processor stopped")
	return nil
}

// Process grades one submission. A grader error or timeout marks the
// submission failed and leaves the assignment target pending; it never
// fabricates a score.
func (p *Processor) Process(ctx context.Context, submissionID string) {
	sub, err := p.svc.Submission(ctx, submissionID)
	if err != nil {
		p.log.Error().Err(err).Str("submission_id", submissionID).Msg("fetch submission failed")
		return
	}
	if sub.Status != models.SubmissionPending {
		p.log.Debug().Str("submission_id", submissionID).Str("status", sub.Status).Msg("skipping non-pending submission")
		return
	}

	images, err := p.svc.Images(ctx, submissionID)
	if err != nil {
		p.log.Error().Err(err).Str("submission_id", submissionID).Msg("load images failed")
		return
	}
	payloads := make([][]byte, 0, len(images))
	for _, img := range images {
		payloads = append(payloads, img.Data)
	}

	gctx, cancel := context.WithTimeout(ctx, p.timeout)
	res, err := p.client.Grade(gctx, submissionID, payloads)
	cancel()
	if err != nil {
		p.log.Warn().Err(err).Str("submission_id", submissionID).Msg("grading failed")
		if err := p.svc.MarkGradingFailed(ctx, submissionID); err != nil {
			p.log.Error().Err(err).Str("submission_id", submissionID).Msg("mark failed errored")
		}
		return
	}

	if _, err := p.svc.ApplyGrade(ctx, submissionID, *res); err != nil {
		p.log.Error().Err(err).Str("submission_id", submissionID).Msg("apply grade failed")
		return
	}
	p.log.Info().Str("submission_id", submissionID).Float64("overall", res.OverallScore).Msg("submission graded")
}
