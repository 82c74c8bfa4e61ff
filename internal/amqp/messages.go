package amqp

import (
	"encoding/json"
	"time"
)

// Message types carried in the AMQP message Type header; the worker
// dispatches on them.
const (
	TypeSpinRecorded       = "spin.recorded"
	TypeRedemptionRecorded = "redemption.recorded"
	TypeGoalCompleted      = "goal.completed"
)

// SpinRecordedMessage fans out one lottery spin for mirroring. It carries
// the full row so consumers never have to query the ledger back.
type SpinRecordedMessage struct {
	SpinID    string    `json:"spin_id"`
	PrizeID   string    `json:"prize_id"`
	Category  string    `json:"category"`
	FreeSpin  bool      `json:"free_spin"`
	PointsWon int64     `json:"points_won"`
	Balance   int64     `json:"balance"`
	At        time.Time `json:"at"`
}

func (m *SpinRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SpinRecordedMessageFromJSON(data []byte) (*SpinRecordedMessage, error) {
	var msg SpinRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RedemptionRecordedMessage fans out one shop redemption.
type RedemptionRecordedMessage struct {
	RedemptionID string    `json:"redemption_id"`
	ItemID       string    `json:"item_id"`
	PricePaid    int64     `json:"price_paid"`
	Balance      int64     `json:"balance"`
	At           time.Time `json:"at"`
}

func (m *RedemptionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RedemptionRecordedMessageFromJSON(data []byte) (*RedemptionRecordedMessage, error) {
	var msg RedemptionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GoalCompletedMessage fans out a goal's one-time completion.
type GoalCompletedMessage struct {
	GoalID       string    `json:"goal_id"`
	Title        string    `json:"title"`
	TargetCents  int64     `json:"target_cents"`
	PointsReward int64     `json:"points_reward"`
	Balance      int64     `json:"balance"`
	At           time.Time `json:"at"`
}

func (m *GoalCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func GoalCompletedMessageFromJSON(data []byte) (*GoalCompletedMessage, error) {
	var msg GoalCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
