package wizard

import (
	"context"
	"sync"
)

// Tracker はセッションごとに実行中の送信処理を1つに制限し、
// それぞれにキャンセル可能なコンテキストを割り当てる。
// 同一プロセス内でのみ有効。
type Tracker struct {
	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	cancel    context.CancelFunc
	cancelled bool
}

// NewTracker はTrackerを生成する。
func NewTracker() *Tracker {
	return &Tracker{inflight: make(map[string]*flight)}
}

// Start はkeyに対する送信処理を開始する。
// 既に実行中の処理がある場合はErrInFlightを返す。
// 返されたfinishは処理完了時に必ず呼び出し、falseの場合は結果を破棄する。
func (t *Tracker) Start(parent context.Context, key string) (ctx context.Context, finish func() bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.inflight[key]; ok {
		return nil, nil, ErrInFlight
	}

	ctx, cancel := context.WithCancel(parent)
	f := &flight{cancel: cancel}
	t.inflight[key] = f

	finish = func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.inflight[key] == f {
			delete(t.inflight, key)
		}
		cancel()
		return !f.cancelled
	}
	return ctx, finish, nil
}

// Cancel はkeyに対する実行中の処理をキャンセルする。
// キャンセルされた処理は結果を破棄され、直ちに次の処理を開始できる。
func (t *Tracker) Cancel(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.inflight[key]
	if !ok {
		return false
	}
	f.cancelled = true
	f.cancel()
	delete(t.inflight, key)
	return true
}

// InFlight はkeyに対する処理が実行中かを返す。
func (t *Tracker) InFlight(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.inflight[key]
	return ok
}
