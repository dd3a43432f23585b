package types

import "time"

type ReceiptStatus string

const (
	ReceiptCommitted ReceiptStatus = "committed"
	ReceiptRejected  ReceiptStatus = "rejected"
)

// Receipt is the outcome of a sequenced operation.
type Receipt struct {
	Seq    uint64        `json:"seq"`
	OpHash string        `json:"op_hash"`
	Status ReceiptStatus `json:"status"`
	// Code is only meaningful when Status is ReceiptRejected.
	Code  uint8  `json:"code"`
	Error string `json:"error,omitempty"`
}

type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Uptime        string    `json:"uptime"`
	Wallets       int       `json:"wallets"`
	LastSeq       uint64    `json:"last_seq"`
	PendingOps    int       `json:"pending_ops"`
	Version       string    `json:"version"`
	StoreReadable bool      `json:"store_readable"`
}
