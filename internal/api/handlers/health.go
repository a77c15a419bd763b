package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/irfndi/polymarket-insight/internal/web"
)

var startTime = time.Now()

// memoryPressureThreshold marks the host as degraded above this used percentage
const memoryPressureThreshold = 95.0

type HealthHandler struct {
	insight     InsightProvider
	renderer    *web.Renderer
	version     string
	memoryStats func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	System    *SystemStats      `json:"system,omitempty"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}

// SystemStats reports host memory and runtime figures
type SystemStats struct {
	MemoryTotalMB     uint64  `json:"memory_total_mb"`
	MemoryAvailableMB uint64  `json:"memory_available_mb"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	Goroutines        int     `json:"goroutines"`
}

func NewHealthHandler(insight InsightProvider, renderer *web.Renderer, version string) *HealthHandler {
	return &HealthHandler{
		insight:     insight,
		renderer:    renderer,
		version:     version,
		memoryStats: mem.VirtualMemoryWithContext,
	}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	services := h.checkServices()

	overallStatus := "healthy"
	for _, status := range services {
		if status != "healthy" {
			overallStatus = "unhealthy"
			break
		}
	}

	var system *SystemStats
	if memInfo, err := h.memoryStats(r.Context()); err != nil {
		services["memory"] = "unknown: " + err.Error()
	} else {
		system = &SystemStats{
			MemoryTotalMB:     memInfo.Total / 1024 / 1024,
			MemoryAvailableMB: memInfo.Available / 1024 / 1024,
			MemoryUsedPercent: memInfo.UsedPercent,
			Goroutines:        runtime.NumGoroutine(),
		}
		if memInfo.UsedPercent > memoryPressureThreshold {
			services["memory"] = fmt.Sprintf("degraded: %.1f%% used", memInfo.UsedPercent)
			if overallStatus == "healthy" {
				overallStatus = "degraded"
			}
		} else {
			services["memory"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  services,
		System:    system,
		Version:   h.version,
		Uptime:    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Readiness check for Kubernetes-style deployments
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	services := h.checkServices()

	ready := true
	for name, status := range services {
		if status == "healthy" {
			services[name] = "ready"
		} else {
			services[name] = "not ready"
			ready = false
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":    ready,
		"services": services,
	}); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Liveness check for container restarts
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":    "alive",
		"timestamp": time.Now().Format(time.RFC3339),
	}); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *HealthHandler) checkServices() map[string]string {
	services := make(map[string]string)

	if h.insight != nil && len(h.insight.Markets()) > 0 {
		services["mock_data"] = "healthy"
	} else {
		services["mock_data"] = "unhealthy: market catalog unavailable"
	}

	if h.renderer != nil && h.renderer.Template().Lookup(web.DashboardTemplate) != nil {
		services["templates"] = "healthy"
	} else {
		services["templates"] = "unhealthy: dashboard template not loaded"
	}

	return services
}
