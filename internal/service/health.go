package service

import "sync/atomic"

// HealthService liveness 在進程起來後恆為真；readiness 由 App 在
// HTTP server 可收請求後才打開，關機時先關掉讓負載平衡器摘流量。
type HealthService struct {
	live  atomic.Bool
	ready atomic.Bool
}

func NewHealthService() *HealthService {
	healthService := &HealthService{}
	healthService.live.Store(true)
	return healthService
}

func (s *HealthService) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *HealthService) IsLive() bool {
	return s.live.Load()
}

func (s *HealthService) IsReady() bool {
	return s.ready.Load()
}
