package workers

import (
	"chat-relay/contract"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

type statsProvider interface {
	Stats() contract.RegistryStats
}

// Report is one snapshot logged by the ReporterWorker.
type Report struct {
	Connections int
	Rooms       int
	CPUPercent  float64
	RAMPercent  float32
	Uptime      time.Duration
}

// ReporterWorker periodically logs connection counts and the process footprint.
type ReporterWorker struct {
	log      *slog.Logger
	stats    statsProvider
	interval time.Duration
	pid      int32
	reports  chan<- Report
}

func NewReporterWorker(log *slog.Logger, stats statsProvider, interval time.Duration) *ReporterWorker {
	return &ReporterWorker{
		log:      log,
		stats:    stats,
		interval: interval,
		pid:      int32(os.Getpid()),
	}
}

// WithReports also publishes every snapshot on the channel, dropping it when nobody listens.
func (w *ReporterWorker) WithReports(reports chan<- Report) *ReporterWorker {
	w.reports = reports
	return w
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}
	startTime := time.Now()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Reporter stopped")
			return nil
		case <-ticker.C:
			w.publish(w.snapshot(proc, startTime))
		}
	}
}

func (w *ReporterWorker) snapshot(proc *process.Process, startTime time.Time) Report {
	stats := w.stats.Stats()
	report := Report{
		Connections: stats.Connections,
		Rooms:       stats.Rooms,
		Uptime:      time.Since(startTime).Round(time.Second),
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		report.CPUPercent = cpu
	} else {
		w.log.Debug("Error while finding process cpu usage", "error", err)
	}
	if ram, err := proc.MemoryPercent(); err == nil {
		report.RAMPercent = ram
	} else {
		w.log.Debug("Error while finding process ram usage", "error", err)
	}
	return report
}

func (w *ReporterWorker) publish(report Report) {
	w.log.Info("Relay stats",
		"uptime", report.Uptime.String(),
		"connections", report.Connections,
		"rooms", report.Rooms,
		"cpu_percent", report.CPUPercent,
		"ram_percent", report.RAMPercent)
	if w.reports == nil {
		return
	}
	select {
	case w.reports <- report:
	default:
	}
}
