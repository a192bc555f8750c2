package status

import (
	"context"
	"fmt"
)

// SelfAdapter reports the dashboard itself. If this code runs, the
// dashboard is online.
type SelfAdapter struct {
	port int
}

// NewSelfAdapter creates the self adapter for the listen port.
func NewSelfAdapter(port int) *SelfAdapter {
	return &SelfAdapter{port: port}
}

func (a *SelfAdapter) base() SystemStatus {
	return SystemStatus{
		ID:   "mission-control",
		Name: "Mission Control",
		Icon: "🛰️",
		Tags: []string{"dashboard"},
	}
}

func (a *SelfAdapter) Describe(_ context.Context) SystemStatus {
	s := a.base()
	s.State = StateOnline
	s.Port = a.port
	s.URL = fmt.Sprintf("http://localhost:%d", a.port)
	s.Detail = "This dashboard"
	return s
}

func (a *SelfAdapter) Fallback() SystemStatus {
	s := a.base()
	s.State = StateOnline
	s.Port = a.port
	s.URL = fmt.Sprintf("http://localhost:%d", a.port)
	s.Detail = "This dashboard"
	return s
}
