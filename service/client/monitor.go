package client

import (
	"sync"
	"time"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	log "github.com/sirupsen/logrus"
)

var monitor *Monitor

// Monitor keeps remote collection client stats.
type Monitor struct {
	sync.Mutex
	reqDur        *movingaverage.MovingAverage
	reqSent       int
	reqFailed     int
	loadsDone     int
	stopCh        chan struct{}
	reportsLogger *log.Entry
}

// RequestSent updates the remote request metrics.
func (m *Monitor) RequestSent(dur time.Duration, failed bool) {
	m.Lock()
	defer m.Unlock()

	m.reqSent++
	if failed {
		m.reqFailed++
	}
	m.reqDur.Add(float64(dur/time.Microsecond) / 1000.0)
}

// ListReplaced increments the local list replacements metric.
func (m *Monitor) ListReplaced() {
	m.Lock()
	defer m.Unlock()

	m.loadsDone++
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

			if m.reqSent > 0 {
				reqPerSec := float64(m.reqSent) / (float64(period) / float64(time.Second))
				m.reportsLogger.Infof("Monitor:")
				m.reportsLogger.Infof("  - Requests / s:       %.2f (%d failed)", reqPerSec, m.reqFailed)
				m.reportsLogger.Infof("  - Request dur [ms]:   %.2f", m.reqDur.Avg())
				m.reportsLogger.Infof("  - List replacements:  %d", m.loadsDone)
			}
			m.reqSent = 0
			m.reqFailed = 0
			m.loadsDone = 0

			m.Unlock()
		}
	}
}

// StartMonitor starts the package Monitor reports.
func StartMonitor() {
	monitor.Start()
}

// StopMonitor stops the package Monitor reports.
func StopMonitor() {
	monitor.Stop()
}

func init() {
	monitor = &Monitor{
		reqDur:        movingaverage.New(3),
		reportsLogger: log.WithField("component", "client-monitor"),
	}
}
