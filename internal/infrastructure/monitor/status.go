package monitor

import "time"

type Status struct {
	Store     bool      `json:"store"`
	Redis     bool      `json:"redis"`
	StoreSize int       `json:"store_size"`
	LastCheck time.Time `json:"last_check"`
}
