// Package feedback 把用户反馈转成交互事件并异步入库：
// 兴趣画像累积（interest.Tracker）+ 热度计数（有序集合 ZIncrBy）。
// 采集路径不在推荐请求的关键路径上，满了就丢，绝不阻塞调用方。
package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/interest"
)

// DefaultHotKey 是热度有序集合的默认 key，recall.Hot 从同一个 key 读取。
const DefaultHotKey = "hot:items"

// Feedback 是用户对一条推荐结果的显式反馈。
type Feedback struct {
	UserID   string    `json:"user_id"`
	ItemID   string    `json:"item_id"`
	Rating   int       `json:"rating"`             // 1~5 星，0 表示未评分
	Comments string    `json:"comments,omitempty"` // 文字评论
	At       time.Time `json:"at,omitempty"`
}

// Events 把一条反馈展开成交互事件：
// 评分 ≥4 记 like，带评论记 comment，其余记 view。
// like 与 comment 可以同时产生（高分长评是最强的正反馈）。
func (f *Feedback) Events(now time.Time) []core.InteractionEvent {
	at := f.At
	if at.IsZero() {
		at = now
	}
	var out []core.InteractionEvent
	if f.Rating >= 4 {
		out = append(out, f.event(core.EventLike, at))
	}
	if f.Comments != "" {
		out = append(out, f.event(core.EventComment, at))
	}
	if len(out) == 0 {
		out = append(out, f.event(core.EventView, at))
	}
	return out
}

func (f *Feedback) event(t core.EventType, at time.Time) core.InteractionEvent {
	return core.InteractionEvent{
		ID:        uuid.NewString(),
		UserID:    f.UserID,
		ItemID:    f.ItemID,
		Type:      t,
		Timestamp: at,
	}
}

// ItemLookup 按 ID 补全条目（画像累积需要 tags/categories）。
type ItemLookup func(ctx context.Context, itemID string) (*core.Item, error)

// CollectorConfig 采集器配置。
type CollectorConfig struct {
	// BufferSize 是事件缓冲大小，默认 1024；缓冲满时丢弃并记日志。
	BufferSize int

	// HotKey 是热度有序集合 key，默认 DefaultHotKey。
	HotKey string

	// EventWeights 是各事件类型对热度的增量；空则用默认表。
	EventWeights map[core.EventType]float64

	// FlushTimeout 是单条事件入库的超时时间，默认 3 秒。
	FlushTimeout time.Duration
}

// Collector 异步消费交互事件。
type Collector struct {
	tracker *interest.Tracker
	counter core.KeyValueStore // 热度计数，可为 nil
	lookup  ItemLookup
	logger  *zap.Logger
	cfg     CollectorConfig

	ch        chan core.InteractionEvent
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewCollector(
	tracker *interest.Tracker,
	counter core.KeyValueStore,
	lookup ItemLookup,
	logger *zap.Logger,
	cfg CollectorConfig,
) *Collector {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.HotKey == "" {
		cfg.HotKey = DefaultHotKey
	}
	if cfg.EventWeights == nil {
		cfg.EventWeights = core.DefaultEventWeights()
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Collector{
		tracker: tracker,
		counter: counter,
		lookup:  lookup,
		logger:  logger,
		cfg:     cfg,
		ch:      make(chan core.InteractionEvent, cfg.BufferSize),
		stopCh:  make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// Submit 提交一条反馈，展开为事件后异步入库。非阻塞：缓冲满时丢弃。
func (c *Collector) Submit(fb *Feedback) {
	if fb == nil || fb.UserID == "" || fb.ItemID == "" {
		return
	}
	for _, ev := range fb.Events(time.Now()) {
		c.Record(ev)
	}
}

// Record 提交单条交互事件（曝光/点击等隐式反馈走这里）。
func (c *Collector) Record(ev core.InteractionEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	select {
	case c.ch <- ev:
	default:
		c.logger.Warn("feedback buffer full, event dropped",
			zap.String("user_id", ev.UserID),
			zap.String("item_id", ev.ItemID),
			zap.String("type", string(ev.Type)))
	}
}

func (c *Collector) run() {
	defer c.wg.Done()
	for {
		select {
		case ev := <-c.ch:
			c.process(ev)
		case <-c.stopCh:
			// 收尾：把缓冲里剩余的事件处理完再退出
			for {
				select {
				case ev := <-c.ch:
					c.process(ev)
				default:
					return
				}
			}
		}
	}
}

func (c *Collector) process(ev core.InteractionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FlushTimeout)
	defer cancel()

	var item *core.Item
	if c.lookup != nil {
		it, err := c.lookup(ctx, ev.ItemID)
		if err != nil {
			c.logger.Warn("item lookup failed, interest update skipped",
				zap.String("item_id", ev.ItemID), zap.Error(err))
		} else {
			item = it
		}
	}

	if c.tracker != nil && item != nil {
		if err := c.tracker.Record(ctx, ev, item); err != nil {
			c.logger.Error("interest update failed",
				zap.String("user_id", ev.UserID),
				zap.String("event_id", ev.ID),
				zap.Error(err))
		}
	}

	if c.counter != nil {
		delta := c.cfg.EventWeights[ev.Type]
		if delta > 0 {
			if err := c.counter.ZIncrBy(ctx, c.cfg.HotKey, delta, ev.ItemID); err != nil {
				c.logger.Warn("hot counter update failed",
					zap.String("item_id", ev.ItemID), zap.Error(err))
			}
		}
	}
}

// Close 优雅关闭：停止接收并把缓冲里的事件处理完。
func (c *Collector) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
	return nil
}
