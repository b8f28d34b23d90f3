package interest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tcmlife/wellrec/core"
	"github.com/tcmlife/wellrec/similarity"
)

// profileKeyPrefix 是画像在 Store 中的 key 前缀。
const profileKeyPrefix = "interest:profile:"

// Tracker 是兴趣画像追踪器：消费交互事件更新画像，对外提供惰性衰减的权重视图。
//
// 衰减规则：decayed = stored × 2^(-Δt/halfLife)，Δt 为距该 key 上次更新的时长。
// 事件到达时先衰减旧值再叠加事件权重；更新后按当前衰减权重淘汰至 MaxInterests。
type Tracker struct {
	store core.Store
	cfg   core.InterestConfig
}

// NewTracker 创建画像追踪器。cfg 的零值字段落回默认配置。
func NewTracker(store core.Store, cfg core.InterestConfig) *Tracker {
	def := core.DefaultConfig().Interest
	if cfg.HalfLife <= 0 {
		cfg.HalfLife = def.HalfLife
	}
	if cfg.MinWeight <= 0 {
		cfg.MinWeight = def.MinWeight
	}
	if cfg.MaxInterests <= 0 {
		cfg.MaxInterests = def.MaxInterests
	}
	if len(cfg.EventWeights) == 0 {
		cfg.EventWeights = core.DefaultEventWeights()
	}
	return &Tracker{store: store, cfg: cfg}
}

// Record 消费一条交互事件：对条目的每个 tag/category 先衰减旧权重再叠加事件增量。
// item 提供事件所指条目的 tag/category；事件类型未配置权重时整条忽略。
func (t *Tracker) Record(ctx context.Context, ev core.InteractionEvent, item *core.Item) error {
	if ev.UserID == "" || item == nil {
		return nil
	}
	delta, ok := t.cfg.EventWeights[ev.Type]
	if !ok {
		return nil
	}
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	profile, err := t.Load(ctx, ev.UserID)
	if err != nil {
		return err
	}

	for _, tag := range item.Tags {
		profile.Tags[tag] = t.bump(profile.Tags[tag], delta, at)
	}
	for _, cate := range item.Categories {
		profile.Categories[cate] = t.bump(profile.Categories[cate], delta, at)
	}

	t.prune(profile, at)
	return t.Save(ctx, profile)
}

// bump 衰减旧权重并叠加事件增量。
func (t *Tracker) bump(e Entry, delta float64, at time.Time) Entry {
	w := delta
	if !e.UpdatedAt.IsZero() {
		w += e.Weight * similarity.ExponentialDecay(e.UpdatedAt, t.cfg.HalfLife, at, 0)
	}
	return Entry{Weight: w, UpdatedAt: at}
}

// prune 按当前衰减权重淘汰最低者，使 tag/category 各不超过 MaxInterests。
func (t *Tracker) prune(p *Profile, now time.Time) {
	t.pruneMap(p.Tags, now)
	t.pruneMap(p.Categories, now)
}

func (t *Tracker) pruneMap(entries map[string]Entry, now time.Time) {
	if len(entries) <= t.cfg.MaxInterests {
		return
	}
	keep := topKeys(entries, func(e Entry) float64 { return t.decayed(e, now) }, t.cfg.MaxInterests)
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	for k := range entries {
		if !kept[k] {
			delete(entries, k)
		}
	}
}

// decayed 返回 entry 在 now 时刻的惰性衰减权重。
func (t *Tracker) decayed(e Entry, now time.Time) float64 {
	return e.Weight * similarity.ExponentialDecay(e.UpdatedAt, t.cfg.HalfLife, now, t.cfg.MinWeight)
}

// Vector 返回 now 时刻的衰减权重视图（tag 与 category 合并，键冲突取较大值）。
// 每次读取重新计算，无隐藏缓存层，保证可测试性。
func (t *Tracker) Vector(ctx context.Context, userID string, now time.Time) (map[string]float64, error) {
	profile, err := t.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(profile.Tags)+len(profile.Categories))
	for k, e := range profile.Tags {
		out[k] = t.decayed(e, now)
	}
	for k, e := range profile.Categories {
		if w := t.decayed(e, now); w > out[k] {
			out[k] = w
		}
	}
	return out, nil
}

// TopTags 返回 now 时刻衰减权重最高的 n 个 tag，供 content-based 打分构造伪条目。
func (t *Tracker) TopTags(ctx context.Context, userID string, now time.Time, n int) ([]string, error) {
	profile, err := t.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return topKeys(profile.Tags, func(e Entry) float64 { return t.decayed(e, now) }, n), nil
}

// Load 读取画像；不存在时返回空画像（首次交互即创建）。
func (t *Tracker) Load(ctx context.Context, userID string) (*Profile, error) {
	data, err := t.store.Get(ctx, profileKeyPrefix+userID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return NewProfile(userID), nil
		}
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		// 画像损坏时从空画像重建，而不是让整条链路失败
		return NewProfile(userID), nil
	}
	if p.Tags == nil {
		p.Tags = make(map[string]Entry)
	}
	if p.Categories == nil {
		p.Categories = make(map[string]Entry)
	}
	return &p, nil
}

// Save 持久化画像。
func (t *Tracker) Save(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return t.store.Set(ctx, profileKeyPrefix+p.UserID, data)
}
