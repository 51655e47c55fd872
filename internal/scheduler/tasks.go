package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskTrustScoreRefresh = "profiles.trustscore.refresh"

type TrustScoreRefreshPayload struct {
	OlderThan string `json:"olderThan"` // time.Duration string, e.g. "24h"
	Limit     int    `json:"limit"`
}

func NewTrustScoreRefreshTask(payload TrustScoreRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrustScoreRefresh, data), nil
}

func ParseTrustScoreRefreshPayload(task *asynq.Task) (TrustScoreRefreshPayload, error) {
	var payload TrustScoreRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TrustScoreRefreshPayload{}, err
	}
	return payload, nil
}
