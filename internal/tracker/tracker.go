// Package tracker 串联后端任务接口与当前任务缓存：
// 创建后记住任务，启动时恢复，轮询至终态，取消后清除。
package tracker

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/clipper-video/clipper/internal/api"
	"github.com/clipper-video/clipper/internal/jobcache"
	"github.com/clipper-video/clipper/pkg/errors"
	"github.com/clipper-video/clipper/pkg/logger"
	"github.com/clipper-video/clipper/pkg/tracing"
)

// JobsAPI 跟踪器依赖的任务接口，*api.JobsService 实现了它
type JobsAPI interface {
	Create(ctx context.Context, in api.JobCreateRequest) (*api.JobTicket, error)
	Upload(ctx context.Context, in api.LocalJobUpload, file io.Reader) (*api.JobTicket, error)
	Get(ctx context.Context, id string) (*api.JobDetail, error)
	Cancel(ctx context.Context, id, token string) (*api.JobDetail, error)
}

// Tracker 当前任务跟踪器
type Tracker struct {
	jobs        JobsAPI
	cache       *jobcache.Cache
	log         logger.Logger
	interval    time.Duration
	maxFailures int
	group       singleflight.Group
}

// New 创建跟踪器
func New(jobs JobsAPI, cache *jobcache.Cache, opts ...Option) *Tracker {
	t := &Tracker{
		jobs:        jobs,
		cache:       cache,
		log:         logger.NewNop(),
		interval:    DefaultPollInterval,
		maxFailures: DefaultMaxPollFailures,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With(zap.String("component", "tracker"))
	return t
}

// Start 校验并创建 YouTube 任务，成功后记住该任务
// 任务已创建但保存失败时同时返回 ticket 与错误
func (t *Tracker) Start(ctx context.Context, req api.JobCreateRequest) (*api.JobTicket, error) {
	ctx, span := tracing.StartSpan(ctx, "tracker.Start")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	ticket, err := t.jobs.Create(ctx, req)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return ticket, t.remember(ctx, span, ticket)
}

// StartUpload 校验并上传本地视频创建任务，成功后记住该任务
func (t *Tracker) StartUpload(ctx context.Context, in api.LocalJobUpload, file io.Reader) (*api.JobTicket, error) {
	ctx, span := tracing.StartSpan(ctx, "tracker.StartUpload")
	defer span.End()

	in.Normalize()
	if err := in.Validate(); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	ticket, err := t.jobs.Upload(ctx, in, file)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return ticket, t.remember(ctx, span, ticket)
}

func (t *Tracker) remember(ctx context.Context, span trace.Span, ticket *api.JobTicket) error {
	tracing.SetAttributes(span, map[string]any{"job.id": ticket.ID})
	if err := t.cache.Save(ctx, ticket); err != nil {
		tracing.RecordError(span, err)
		return err
	}
	t.log.InfoContext(ctx, "job started",
		zap.String("job_id", ticket.ID),
		zap.String("status", string(ticket.Status)),
	)
	return nil
}

// Resume 恢复仍然有效的当前任务并刷新其状态
// 没有可恢复的任务，或后端已不存在该任务时返回 (nil, nil)
func (t *Tracker) Resume(ctx context.Context) (*api.JobDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "tracker.Resume")
	defer span.End()

	rec, err := t.cache.Current(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if rec == nil {
		tracing.AddEvent(span, "nothing to resume", nil)
		return nil, nil
	}

	detail, err := t.Refresh(ctx, rec.ID.String())
	switch {
	case errors.Is(err, ErrJobGone):
		return nil, nil
	case err != nil:
		tracing.RecordError(span, err)
		return nil, err
	}
	return detail, nil
}

// Refresh 拉取任务最新状态并同步到缓存，同一任务的并发调用只请求一次
// 后端不存在该任务，或 id 不是后端能识别的格式时，清除缓存并返回 ErrJobGone
// 共享的请求不随单个调用方取消，每个调用方只等待到自己的 ctx 结束
func (t *Tracker) Refresh(ctx context.Context, id string) (*api.JobDetail, error) {
	ch := t.group.DoChan(id, func() (any, error) {
		return t.refresh(context.WithoutCancel(ctx), id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*api.JobDetail), nil
	}
}

// gone 后端不会再认识该任务
func gone(err error) bool {
	return api.IsNotFound(err) || errors.Is(err, api.ErrInvalidJobID)
}

func (t *Tracker) refresh(ctx context.Context, id string) (*api.JobDetail, error) {
	detail, err := t.jobs.Get(ctx, id)
	if err != nil {
		if !gone(err) {
			return nil, err
		}
		if err := t.forgetIfCurrent(ctx, id); err != nil {
			return nil, err
		}
		t.log.InfoContext(ctx, "job no longer exists", zap.String("job_id", id))
		return nil, ErrJobGone.WithError(err)
	}

	rec, err := t.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ID.String() != detail.ID {
		return detail, nil
	}

	rec.Status = string(detail.Status)
	rec.Progress = detail.Progress
	if rec.CreatedAt == "" {
		rec.CreatedAt = detail.CreatedAt
	}
	if err := t.cache.Save(ctx, rec); err != nil {
		return nil, err
	}
	return detail, nil
}

// forgetIfCurrent 仅当缓存中的任务就是 id 时清除
func (t *Tracker) forgetIfCurrent(ctx context.Context, id string) error {
	rec, err := t.cache.Get(ctx)
	if err != nil {
		return err
	}
	if rec == nil || rec.ID.String() != id {
		return nil
	}
	return t.cache.Clear(ctx)
}

// Wait 轮询任务直到终态，每次拉取后回调 onUpdate（可为 nil）
// interval <= 0 时使用默认间隔；连续失败达到上限返回 ErrPollFailed
func (t *Tracker) Wait(ctx context.Context, id string, interval time.Duration, onUpdate func(*api.JobDetail)) (*api.JobDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "tracker.Wait")
	defer span.End()
	tracing.SetAttributes(span, map[string]any{"job.id": id})

	if interval <= 0 {
		interval = t.interval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		detail, err := t.Refresh(ctx, id)
		switch {
		case err == nil:
			failures = 0
			tracing.AddEvent(span, "poll", map[string]any{
				"status":   string(detail.Status),
				"progress": detail.Progress,
			})
			if onUpdate != nil {
				onUpdate(detail)
			}
			if detail.Status.Terminal() {
				return detail, nil
			}
		case errors.Is(err, ErrJobGone), ctx.Err() != nil:
			tracing.RecordError(span, err)
			return nil, err
		default:
			failures++
			t.log.WarnContext(ctx, "poll job failed",
				zap.String("job_id", id),
				zap.Int("failures", failures),
				zap.Error(err),
			)
			if failures >= t.maxFailures {
				err = ErrPollFailed.WithError(err)
				tracing.RecordError(span, err)
				return nil, err
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cancel 用记住的令牌取消当前任务，成功后清除缓存
func (t *Tracker) Cancel(ctx context.Context) (*api.JobDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "tracker.Cancel")
	defer span.End()

	rec, err := t.cache.Get(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoCurrentJob
	}
	tracing.SetAttributes(span, map[string]any{"job.id": rec.ID.String()})

	detail, err := t.jobs.Cancel(ctx, rec.ID.String(), rec.AccessToken)
	if err != nil {
		if gone(err) {
			if cerr := t.cache.Clear(ctx); cerr != nil {
				return nil, cerr
			}
			err = ErrJobGone.WithError(err)
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	if err := t.cache.Clear(ctx); err != nil {
		return nil, fmt.Errorf("job canceled: %w", err)
	}
	t.log.InfoContext(ctx, "job canceled",
		zap.String("job_id", detail.ID),
		zap.String("status", string(detail.Status)),
	)
	return detail, nil
}

// Current 返回记住且仍有效的任务记录
func (t *Tracker) Current(ctx context.Context) (*jobcache.Record, error) {
	return t.cache.Current(ctx)
}

// Forget 清除当前任务
func (t *Tracker) Forget(ctx context.Context) error {
	return t.cache.Clear(ctx)
}
