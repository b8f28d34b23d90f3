package core

import "time"

// EventType 是交互事件类型。
type EventType string

const (
	EventView    EventType = "view"
	EventLike    EventType = "like"
	EventShare   EventType = "share"
	EventSave    EventType = "save"
	EventComment EventType = "comment"
	EventClick   EventType = "click"
)

// InteractionEvent 是用户与内容的一次交互，append-only，
// 消费后用于更新兴趣画像。
type InteractionEvent struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultEventWeights 是各交互类型对兴趣权重的默认增量。
func DefaultEventWeights() map[EventType]float64 {
	return map[EventType]float64{
		EventView:    1.0,
		EventLike:    3.0,
		EventShare:   5.0,
		EventSave:    4.0,
		EventComment: 2.0,
		EventClick:   0.5,
	}
}
