package server

import (
	"sync"
	"time"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	log "github.com/sirupsen/logrus"
)

var monitor *Monitor

// Monitor keeps EmployeeService stats.
type Monitor struct {
	sync.Mutex
	opsHandled    int
	opsFailed     int
	listHandled   int
	listReqDur    *movingaverage.MovingAverage
	writeReqDur   *movingaverage.MovingAverage
	stopCh        chan struct{}
	reportsLogger *log.Entry
}

// OpsHandled updates the mutation request metrics.
func (m *Monitor) OpsHandled(dur time.Duration, failed bool) {
	m.Lock()
	defer m.Unlock()

	m.writeReqDur.Add(float64(dur/time.Microsecond) / 1000.0)
	m.opsHandled++
	if failed {
		m.opsFailed++
	}
}

// ListRequestServed updates the list request handling duration metric.
func (m *Monitor) ListRequestServed(dur time.Duration) {
	m.Lock()
	defer m.Unlock()

	m.listReqDur.Add(float64(dur/time.Microsecond) / 1000.0)
	m.listHandled++
}

// Start starts the Monitor worker.
func (m *Monitor) Start() {
	if m.stopCh != nil {
		return
	}

	m.stopCh = make(chan struct{})
	go m.worker()
}

// Stop stops the Monitor worker.
func (m *Monitor) Stop() {
	if m.stopCh == nil {
		return
	}

	close(m.stopCh)
	m.stopCh = nil
}

// worker does the actual job.
func (m *Monitor) worker() {
	const period = 5 * time.Second

	stopCh := m.stopCh
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			// Stop the monitor
			return
		case <-ticker.C:
			// Print the report
			m.Lock()

			opsPerSec := float64(m.opsHandled) / (float64(period) / float64(time.Second))
			listPerSec := float64(m.listHandled) / (float64(period) / float64(time.Second))
			m.reportsLogger.Infof("Monitor:")
			m.reportsLogger.Infof("  - Mutations / s:           %.2f (%d failed)", opsPerSec, m.opsFailed)
			m.reportsLogger.Infof("  - List requests / s:       %.2f", listPerSec)
			m.reportsLogger.Infof("  - Mutation req dur [ms]:   %.2f", m.writeReqDur.Avg())
			m.reportsLogger.Infof("  - List req dur [ms]:       %.2f", m.listReqDur.Avg())
			m.opsHandled = 0
			m.opsFailed = 0
			m.listHandled = 0

			m.Unlock()
		}
	}
}

func init() {
	monitor = &Monitor{
		listReqDur:    movingaverage.New(5),
		writeReqDur:   movingaverage.New(5),
		reportsLogger: log.WithField("component", "server-monitor"),
	}
}
