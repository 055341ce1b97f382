package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/repo"
)

// ConversationRetentionJob drops conversation state that has been idle
// longer than the configured number of days.
type ConversationRetentionJob struct {
	repo        *repo.ConversationRepo
	maxIdleDays int
}

func NewConversationRetentionJob(repo *repo.ConversationRepo, maxIdleDays int) *ConversationRetentionJob {
	return &ConversationRetentionJob{repo: repo, maxIdleDays: maxIdleDays}
}

func (j *ConversationRetentionJob) Name() string {
	return "conversation_retention"
}

func (j *ConversationRetentionJob) Run(ctx context.Context) error {
	if j.repo == nil {
		return nil
	}
	maxIdleDays := j.maxIdleDays
	if maxIdleDays <= 0 {
		maxIdleDays = 90
	}
	cutoff := time.Now().Add(-time.Duration(maxIdleDays) * 24 * time.Hour).UnixMilli()
	deleted, err := j.repo.DeleteIdleBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("expired idle conversations", zap.Int64("deleted", deleted))
	}
	return nil
}
