package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/rentboard/internal/database"
	"github.com/aristath/rentboard/internal/modules/bookings"
	"github.com/aristath/rentboard/internal/scheduler"
)

// ImportHistory reports the booking batch currently in the store
type ImportHistory interface {
	LastImport(ctx context.Context) (*bookings.ImportResult, error)
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	CPUPercent    float64                `json:"cpu_percent"`
	MemoryPercent float64                `json:"memory_percent"`
	Goroutines    int                    `json:"goroutines"`
	GoVersion     string                 `json:"go_version"`
	Database      *database.Stats        `json:"database,omitempty"`
	LastImport    *bookings.ImportResult `json:"last_import"`
	Warnings      []string               `json:"warnings,omitempty"`
}

// SystemHandlers serves system monitoring and job trigger endpoints
type SystemHandlers struct {
	log        zerolog.Logger
	db         *database.DB
	imports    ImportHistory
	refreshJob scheduler.Job
	startedAt  time.Time
}

// NewSystemHandlers creates system handlers. Any dependency may be nil;
// the status then omits the corresponding section.
func NewSystemHandlers(log zerolog.Logger, db *database.DB, imports ImportHistory, refreshJob scheduler.Job) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("handler", "system").Logger(),
		db:         db,
		imports:    imports,
		refreshJob: refreshJob,
		startedAt:  time.Now(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
	}

	if h.db != nil {
		if err := h.db.QuickCheck(r.Context()); err != nil {
			h.log.Warn().Err(err).Msg("Database check failed")
			response.Status = "degraded"
			response.Warnings = append(response.Warnings, "database: "+err.Error())
		}
		stats, err := h.db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get database stats")
			response.Warnings = append(response.Warnings, "database stats: "+err.Error())
		}
		response.Database = stats
	}

	if h.imports != nil {
		last, err := h.imports.LastImport(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get last import")
			response.Warnings = append(response.Warnings, "last import: "+err.Error())
		}
		response.LastImport = last
	}

	writeJSON(w, http.StatusOK, response, h.log)
}

// HandleTriggerRefresh runs the booking refresh job immediately
// POST /api/jobs/refresh
func (h *SystemHandlers) HandleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refreshJob == nil {
		h.log.Warn().Msg("Refresh job not configured")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "Refresh job not configured",
		}, h.log)
		return
	}

	if err := h.refreshJob.Run(); err != nil {
		h.log.Error().Err(err).Str("job", h.refreshJob.Name()).Msg("Manual refresh failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		}, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Bookings refreshed",
	}, h.log)
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
