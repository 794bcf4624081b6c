package syncer

import (
	"context"
	"errors"
	"time"

	"k8s.io/klog/v2"

	"github.com/openinvite/backend/internal/repository"
)

// withRetry 包装一次读取操作：最多 maxAttempts 次，指数退避（基数逐次翻倍）
// 重试对终端用户静默，只打 V(6) 日志；重试耗尽后返回原始错误
// 记录不存在属于终态，不参与重试
func (s *Syncer) withRetry(ctx context.Context, name string, fn func() error) error {
	var lastErr error
	delay := s.opts.BaseDelay

	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, repository.ErrNotFound) {
			return lastErr
		}
		if attempt == s.opts.MaxAttempts {
			break
		}
		klog.V(6).Infof("%s 第 %d 次失败将重试: %v", name, attempt, lastErr)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return lastErr
}

// chunkIDs 把 ID 集合切成有界批次，共 ceil(len/size) 批
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
