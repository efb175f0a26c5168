// AngelaMos | 2026
// dto.go

package admin

import (
	"time"

	"github.com/carterperez-dev/stackrec/internal/stack"
)

type StackSummary struct {
	ID             string     `json:"id"`
	ArchetypeID    string     `json:"archetype_id"`
	Status         string     `json:"status"`
	Entries        int        `json:"entries"`
	BrokenEntries  int        `json:"broken_entries"`
	TotalCostCents int64      `json:"total_cost_cents"`
	GeneratedAt    time.Time  `json:"generated_at"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	RepairedAt     *time.Time `json:"repaired_at,omitempty"`
}

func ToStackSummary(s *stack.Stack) StackSummary {
	return StackSummary{
		ID:             s.ID,
		ArchetypeID:    s.ArchetypeID,
		Status:         string(s.Status),
		Entries:        len(s.Entries),
		BrokenEntries:  s.BrokenCount(),
		TotalCostCents: s.TotalCostCents,
		GeneratedAt:    s.GeneratedAt,
		VerifiedAt:     s.VerifiedAt,
		RepairedAt:     s.RepairedAt,
	}
}

type SystemStatsResponse struct {
	Cache    CacheStats      `json:"cache"`
	Database *DatabaseStatus `json:"database,omitempty"`
	Redis    *RedisStatus    `json:"redis,omitempty"`
	Runtime  RuntimeStats    `json:"runtime"`
}

type CacheStats struct {
	Healthy  bool           `json:"healthy"`
	Stacks   int            `json:"stacks"`
	ByStatus map[string]int `json:"by_status"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
