package surgeprotector

import (
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

func (sp *SurgeProtector) SetMaxInFlight(n int64) {
	sp.configLock.Lock()
	defer sp.configLock.Unlock()
	if n <= 0 {
		sp.maxInFlight = 0
		sp.permits = nil
		return
	}
	sp.maxInFlight = n
	sp.permits = semaphore.NewWeighted(n)
}

func (sp *SurgeProtector) SetRateLimit(perSecond float64, burst int) {
	sp.configLock.Lock()
	defer sp.configLock.Unlock()
	if perSecond <= 0 {
		sp.limiter = nil
		return
	}
	if burst <= 0 {
		burst = 1
	}
	sp.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (sp *SurgeProtector) SetComponentMetadata(name string, id string) {
	sp.configLock.Lock()
	defer sp.configLock.Unlock()
	sp.componentMetadata.Name = name
	if id != "" {
		sp.componentMetadata.ID = id
	}
}

func (sp *SurgeProtector) ConnectLogger(loggers ...types.Logger) {
	sp.configLock.Lock()
	defer sp.configLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			sp.loggers = append(sp.loggers, l)
		}
	}
}

func (sp *SurgeProtector) MaxInFlight() int64 {
	sp.configLock.Lock()
	defer sp.configLock.Unlock()
	return sp.maxInFlight
}

func (sp *SurgeProtector) GetComponentMetadata() types.ComponentMetadata {
	return sp.snapshotMetadata()
}
