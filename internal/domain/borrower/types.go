package borrower

import (
	"context"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Entity struct {
	ID                  string    `json:"id"`
	FullName            string    `json:"full_name"`
	NICNumber           string    `json:"nic_number"`
	Phone               string    `json:"phone"`
	Address             string    `json:"address"`
	GuarantorName       string    `json:"guarantor_name"`
	GuarantorPhone      string    `json:"guarantor_phone"`
	GuarantorNIC        string    `json:"guarantor_nic"`
	Status              string    `json:"status"`
	AssignedCollectorID *string   `json:"assigned_collector_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type CreateInput struct {
	FullName       string
	NICNumber      string
	Phone          string
	Address        string
	GuarantorName  string
	GuarantorPhone string
	GuarantorNIC   string
}

type ListFilter struct {
	Status      string
	CollectorID string
	Search      string
	Limit       int32
	Offset      int32
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AssignCollector(ctx context.Context, id string, collectorID *string) error
}
