package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAgingWarmup rebuilds cached aging reports for today.
	TaskAgingWarmup = "reports:aging_warmup"
)

// AgingWarmupPayload scopes an aging warmup run. Empty party types means all.
type AgingWarmupPayload struct {
	PartyTypes []string `json:"party_types,omitempty"`
	Company    string   `json:"company,omitempty"`
}

// NewAgingWarmupTask constructs an Asynq task.
func NewAgingWarmupTask(payload AgingWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAgingWarmup, data, asynq.MaxRetry(3)), nil
}

// partyTypes resolves the payload party types, rejecting unknown values.
func (p AgingWarmupPayload) partyTypes() ([]accounting.PartyType, error) {
	if len(p.PartyTypes) == 0 {
		return append([]accounting.PartyType(nil), accounting.PartyTypes...), nil
	}
	out := make([]accounting.PartyType, 0, len(p.PartyTypes))
	for _, raw := range p.PartyTypes {
		pt, err := accounting.ParsePartyType(raw)
		if err != nil {
			return nil, fmt.Errorf("aging warmup: %w", err)
		}
		out = append(out, pt)
	}
	return out, nil
}
