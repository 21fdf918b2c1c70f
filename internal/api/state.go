package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/agentgw/agentgw/internal/journal"
	"github.com/agentgw/agentgw/internal/serverstate"
)

// GetState serves a JSON snapshot of the relay's lifecycle state.
func (a *API) GetState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(serverstate.Snapshot())
}

// statusResponse couples the lifecycle snapshot with process resource
// usage for operators.
type statusResponse struct {
	serverstate.State
	Goroutines int     `json:"goroutines"`
	RSSBytes   uint64  `json:"rssBytes"`
	CPUPercent float64 `json:"cpuPercent"`
}

// GetStatus serves process-level status. Resource probes that fail are
// reported as zero rather than failing the endpoint.
func (a *API) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := statusResponse{State: serverstate.Snapshot(), Goroutines: runtime.NumGoroutine()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil && mi != nil {
			st.RSSBytes = mi.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			st.CPUPercent = pct
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

// GetResult serves the journaled terminal outcome for a request id, so a
// client that lost its stream can learn how the attempt ended.
func (a *API) GetResult(w http.ResponseWriter, r *http.Request) {
	reqID := chi.URLParam(r, "reqId")
	out, err := a.journal.Lookup(r.Context(), reqID)
	if errors.Is(err, journal.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
