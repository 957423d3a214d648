// Package scan orchestrates a repository vulnerability scan session: clone
// into an ephemeral workspace, analyze each candidate file sequentially,
// emit the ordered event stream, and guarantee workspace cleanup on every
// exit path.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/repoguard/api/internal/config"
	"github.com/repoguard/api/internal/infra/git"
	"github.com/repoguard/api/internal/infra/llm"
	"github.com/repoguard/api/internal/infra/scm"
	"github.com/repoguard/api/internal/metrics"
	"github.com/repoguard/api/pkg/domain/scan"
	"github.com/repoguard/api/pkg/logger"
)

// EmitFunc delivers one event to the caller's transport. A non-nil return
// means the transport is gone; the pipeline stops analyzing further files
// but still runs cleanup.
type EmitFunc func(scan.Event) error

// errStreamClosed marks a dead transport or a cancelled request. It is not
// reported as a critical_error: there is nobody left to read it.
var errStreamClosed = errors.New("event stream closed")

// Service runs scan sessions. The cloner and provider are process-wide and
// read-only; all per-session state lives in the session value.
type Service struct {
	cloner   git.Cloner
	provider llm.Provider
	cfg      config.ScanConfig
	logger   *logger.Logger
}

// NewService creates a scan service.
func NewService(cloner git.Cloner, provider llm.Provider, cfg config.ScanConfig, log *logger.Logger) *Service {
	return &Service{
		cloner:   cloner,
		provider: provider,
		cfg:      cfg,
		logger:   log.With("service", "scan"),
	}
}

// session holds the state exclusively owned by one scan request.
type session struct {
	emit      EmitFunc
	workspace *git.Workspace
	summary   scan.Summary
}

// send forwards an event to the transport, converting transport failure
// into errStreamClosed.
func (s *session) send(ev scan.Event) error {
	if err := s.emit(ev); err != nil {
		return fmt.Errorf("%w: %v", errStreamClosed, err)
	}
	return nil
}

// Run executes one scan session and returns its summary. It always
// terminates the stream with exactly one done event, removes the workspace
// if one was created, and never panics across the API boundary.
func (s *Service) Run(ctx context.Context, req scan.Request, emit EmitFunc) scan.Summary {
	start := time.Now()
	metrics.ScansInProgress.Inc()
	defer metrics.ScansInProgress.Dec()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	sess := &session{emit: emit}
	defer s.finish(sess)

	outcome := metrics.OutcomeClean

	err := s.runPipeline(ctx, req, sess)
	switch {
	case err == nil:
		if sess.summary.FilesScanned == 0 {
			outcome = metrics.OutcomeNoFiles
		} else if sess.summary.VulnerabilitiesFound {
			outcome = metrics.OutcomeFindings
		}
	case errors.Is(err, errStreamClosed), errors.Is(err, context.Canceled):
		s.logger.Info("scan aborted: caller went away",
			"files_scanned", sess.summary.FilesScanned,
		)
		outcome = metrics.OutcomeCancelled
	default:
		s.logger.Error("scan failed", "error", err)
		_ = sess.send(scan.Critical(err))
		outcome = metrics.OutcomeFailed
	}

	metrics.ScansTotal.WithLabelValues(outcome).Inc()
	return sess.summary
}

// runPipeline is the fallible body of a session: authenticate, acquire,
// traverse, analyze. Fatal errors are returned to Run for classification;
// per-file failures are absorbed here and reported as error events.
func (s *Service) runPipeline(ctx context.Context, req scan.Request, sess *session) (err error) {
	// An unexpected panic anywhere below must not unwind past the session:
	// it becomes a critical_error and cleanup still runs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in scan pipeline: %v", r)
		}
	}()

	authURL := scm.AuthenticateURL(req.RepositoryURL, req.AccessToken)
	display := scm.DisplayURL(req.RepositoryURL, req.AccessToken)

	if err := sess.send(scan.Cloning(display)); err != nil {
		return err
	}

	ws, wsErr := git.NewWorkspace()
	if wsErr != nil {
		return wsErr
	}
	sess.workspace = ws

	cloneCtx := ctx
	if s.cfg.CloneTimeout > 0 {
		var cancel context.CancelFunc
		cloneCtx, cancel = context.WithTimeout(ctx, s.cfg.CloneTimeout)
		defer cancel()
	}
	if cloneErr := s.cloner.Clone(cloneCtx, authURL, ws.Path()); cloneErr != nil {
		metrics.CloneFailuresTotal.Inc()
		return cloneErr
	}

	if err := sess.send(scan.Cloned()); err != nil {
		return err
	}

	walkErr := walkFiles(ws.Path(), s.cfg.FileExtensions, s.cfg.ExcludeVCSDirs, func(relPath, absPath string) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", errStreamClosed, ctxErr)
		}
		return s.scanFile(ctx, sess, relPath, absPath)
	})
	if walkErr != nil {
		return walkErr
	}

	return sess.send(scan.SummaryEvent(sess.summary))
}

// scanFile emits the progress event for one candidate and exactly one
// terminal event among {info, vulnerability, error}.
func (s *Service) scanFile(ctx context.Context, sess *session, relPath, absPath string) error {
	if err := sess.send(scan.Scanning(relPath)); err != nil {
		return err
	}
	sess.summary.FilesScanned++

	start := time.Now()
	result := s.analyzeFile(ctx, relPath, absPath)
	metrics.FileAnalysisDuration.Observe(time.Since(start).Seconds())

	var ev scan.Event
	switch result.kind {
	case outcomeEmpty:
		metrics.FilesAnalyzedTotal.WithLabelValues(metrics.FileResultSkippedEmpty).Inc()
		ev = scan.SkippedEmpty(relPath)
	case outcomeClean:
		metrics.FilesAnalyzedTotal.WithLabelValues(metrics.FileResultClean).Inc()
		ev = scan.Clean(relPath)
	case outcomeVulnerable:
		metrics.FilesAnalyzedTotal.WithLabelValues(metrics.FileResultVulnerability).Inc()
		metrics.VulnerabilitiesFoundTotal.Inc()
		sess.summary.VulnerabilitiesFound = true
		ev = scan.Vulnerable(relPath, result.analysis)
	default:
		metrics.FilesAnalyzedTotal.WithLabelValues(metrics.FileResultError).Inc()
		s.logger.Warn("file analysis failed", "file", relPath, "error", result.err)
		ev = scan.FileError(relPath, result.err)
	}

	return sess.send(ev)
}

// finish is the cleanup manager: it removes the workspace at most once,
// confirms removal to the caller, and always emits the terminal done event
// last. Emit failures here are ignored; the session is over either way.
func (s *Service) finish(sess *session) {
	if sess.workspace != nil {
		removed, err := sess.workspace.Remove()
		switch {
		case err != nil:
			s.logger.Error("workspace cleanup failed",
				"workspace", sess.workspace.Path(),
				"error", err,
			)
		case removed:
			_ = sess.send(scan.CleanedUp())
		}
	}

	_ = sess.send(scan.Done())
}
