package system

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/logging"
	httptransport "transcribe-server-go/internal/transport/http"
)

// Service exposes runtime information about the process and the host it
// runs on, for dashboards and quick health checks.
type Service struct {
	config  *config.Config
	logger  *logging.Logger
	started time.Time
}

func NewService(cfg *config.Config, logger *logging.Logger) (*Service, error) {
	return &Service{
		config:  cfg,
		logger:  logger,
		started: time.Now(),
	}, nil
}

// Start registers the system routes on the api group.
func (s *Service) Start(ctx context.Context, engine *gin.Engine, apiGroup *gin.RouterGroup) error {
	apiGroup.GET("/system", s.handleGet)

	s.logger.InfoTag("HTTP", "system routes registered")
	return nil
}

type systemInfo struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
	HostUptimeSec uint64  `json:"host_uptime_sec"`
	ProcUptimeSec float64 `json:"proc_uptime_sec"`
	Goroutines    int     `json:"goroutines"`
	GoVersion     string  `json:"go_version"`

	SelectedASR       string `json:"selected_asr"`
	SelectedTranslate string `json:"selected_translate,omitempty"`
}

// handleGet reports host and process stats plus the active backends.
// @Summary System status
// @Description Host and process stats plus the active recognition and translation backends
// @Tags System
// @Produce json
// @Success 200 {object} httptransport.APIResponse
// @Router /api/system [get]
func (s *Service) handleGet(c *gin.Context) {
	info := systemInfo{
		ProcUptimeSec:     time.Since(s.started).Seconds(),
		Goroutines:        runtime.NumGoroutine(),
		GoVersion:         runtime.Version(),
		SelectedASR:       s.config.Selected.ASR,
		SelectedTranslate: s.config.Selected.Translate,
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		info.CPUPercent = percents[0]
	} else if err != nil {
		s.logger.WarnTag("SYSTEM", "cpu stats unavailable: %v", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryPercent = vm.UsedPercent
		info.MemoryUsedMB = vm.Used / 1024 / 1024
		info.MemoryTotalMB = vm.Total / 1024 / 1024
	} else {
		s.logger.WarnTag("SYSTEM", "memory stats unavailable: %v", err)
	}

	if uptime, err := host.Uptime(); err == nil {
		info.HostUptimeSec = uptime
	}

	httptransport.RespondSuccess(c, http.StatusOK, info, "system status retrieved")
}
