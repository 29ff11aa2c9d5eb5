package verification

import (
	"context"
	"log/slog"

	"github.com/peachlease/edu-verify/internal/domain"
	"github.com/peachlease/edu-verify/internal/pkg/emailaddr"
)

// LogNotifier stands in for a mail transport: it writes the message to the
// log. Outside Development only the subject and a fingerprint of the
// recipient are written, never the body.
type LogNotifier struct {
	logger *slog.Logger
	mode   domain.DeploymentMode
}

func NewLogNotifier(logger *slog.Logger, mode domain.DeploymentMode) *LogNotifier {
	return &LogNotifier{logger: logger, mode: mode}
}

func (n *LogNotifier) Deliver(ctx context.Context, msg domain.Message) error {
	if n.mode == domain.Development {
		n.logger.InfoContext(ctx, "verification email (log delivery)",
			"to", msg.To,
			"subject", msg.Subject,
			"body", msg.Body,
		)
		return nil
	}
	n.logger.InfoContext(ctx, "verification email (log delivery)",
		"to_fp", emailaddr.Fingerprint(msg.To),
		"subject", msg.Subject,
	)
	return nil
}
