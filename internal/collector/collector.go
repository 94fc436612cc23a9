// Package collector drives one collection cycle: probe every configured
// target, persist raw samples, recompute rolling summaries, then run one
// retention pass over the raw tables.
//
// Targets fail independently. A probe, persistence, or aggregation
// failure marks that target failed and moves on; the cycle as a whole
// succeeds when at least one target succeeded or nothing is configured.
package collector

import (
	"context"
	"os"
	"time"

	"resmon/internal/aggregate"
	"resmon/internal/config"
	"resmon/internal/probe"
	"resmon/internal/statstore"

	"go.uber.org/zap"
)

// CycleResult tallies per-target outcomes of one collection cycle.
type CycleResult struct {
	DiskOK     int
	DiskFailed int
	APIOK      int
	APIFailed  int
}

// Configured is the number of targets the cycle attempted.
func (r CycleResult) Configured() int {
	return r.DiskOK + r.DiskFailed + r.APIOK + r.APIFailed
}

// OK reports whether the cycle counts as successful: at least one target
// succeeded, or no targets were configured at all.
func (r CycleResult) OK() bool {
	return r.DiskOK+r.APIOK > 0 || r.Configured() == 0
}

// Orchestrator runs collection cycles over the configured targets.
type Orchestrator struct {
	cfg      *config.Config
	store    *statstore.Store
	bench    probe.Benchmark
	api      *probe.APIProbe
	agg      *aggregate.Aggregator
	hostname string
	log      *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New builds an orchestrator. store may be nil when the database could
// not be opened; the cycle then still probes, but every persistence step
// fails and each target is marked failed, matching the graceful
// degradation contract.
func New(cfg *config.Config, store *statstore.Store, log *zap.Logger) *Orchestrator {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	o := &Orchestrator{
		cfg:      cfg,
		store:    store,
		bench:    probe.NewBenchmark(),
		api:      probe.NewAPIProbe(cfg.RequestTimeout),
		hostname: hostname,
		log:      log,
		now:      time.Now,
	}
	if store != nil {
		o.agg = aggregate.New(store, hostname, log)
	}
	return o
}

// RunCycle performs one pass over all targets, sequentially, then a
// single retention pass. The shared timestamp is taken once at cycle
// start so all of the cycle's records land in the same minute bucket.
func (o *Orchestrator) RunCycle(ctx context.Context) CycleResult {
	started := o.now()
	var result CycleResult

	for _, target := range o.cfg.Disks {
		if o.collectDisk(target, started) {
			result.DiskOK++
		} else {
			result.DiskFailed++
		}
	}

	for _, target := range o.cfg.APIs {
		if o.collectAPI(ctx, target, started) {
			result.APIOK++
		} else {
			result.APIFailed++
		}
	}

	o.decimate()

	o.log.Debug("cycle complete",
		zap.Int("disk_ok", result.DiskOK),
		zap.Int("disk_failed", result.DiskFailed),
		zap.Int("api_ok", result.APIOK),
		zap.Int("api_failed", result.APIFailed),
	)
	return result
}

// collectDisk runs both benchmark modes against one filesystem and
// persists the sample plus a recomputed summary. Returns false on any
// per-target failure.
func (o *Orchestrator) collectDisk(target config.DiskTarget, at time.Time) bool {
	log := o.log.With(zap.String("label", target.Label), zap.String("path", target.Path))

	if err := probe.CheckDir(target.Path); err != nil {
		log.Warn("target not usable, skipping", zap.Error(err))
		return false
	}

	defer probe.Cleanup(target.Path)

	write, err := o.bench.Run(target.Path, probe.ModeWrite)
	if err != nil {
		log.Warn("write benchmark failed", zap.Error(err))
		return false
	}
	read, err := o.bench.Run(target.Path, probe.ModeRead)
	if err != nil {
		log.Warn("read benchmark failed", zap.Error(err))
		return false
	}

	log.Debug("benchmark complete",
		zap.Float64("write_mbps", write.MBps),
		zap.Float64("write_iops", write.IOPS),
		zap.Float64("read_mbps", read.MBps),
		zap.Float64("read_iops", read.IOPS),
	)

	if o.store == nil {
		log.Warn("no database connection, sample dropped")
		return false
	}

	sample := &statstore.DiskSample{
		Timestamp:   statstore.Timestamp(at),
		Hostname:    o.hostname,
		Label:       target.Label,
		WriteMBps:   write.MBps,
		WriteIOPS:   write.IOPS,
		WriteLatAvg: write.Latency.Avg,
		ReadMBps:    read.MBps,
		ReadIOPS:    read.IOPS,
		ReadLatAvg:  read.Latency.Avg,
	}
	if err := o.store.InsertDiskSample(sample); err != nil {
		log.Warn("sample insert failed", zap.Error(err))
		return false
	}

	// The raw sample above is already durable; summary failure still
	// fails the target but does not roll the sample back.
	if err := o.agg.RecomputeDisk(target.Label, at.Add(-aggregate.DefaultWindow), at); err != nil {
		log.Warn("summary computation failed", zap.Error(err))
		return false
	}
	return true
}

// collectAPI probes one endpoint and persists the result. The probe
// itself never fails: an unreachable endpoint is still a valid sample
// with success=false, so only persistence and aggregation can mark the
// target failed.
func (o *Orchestrator) collectAPI(ctx context.Context, target config.APITarget, at time.Time) bool {
	log := o.log.With(zap.String("api", target.Name), zap.String("url", target.URL))

	res := o.api.Run(ctx, target.URL)
	log.Debug("probe complete",
		zap.Float64("response_time_ms", res.ResponseTimeMs),
		zap.Int("status_code", res.StatusCode),
		zap.Bool("success", res.Success),
		zap.String("error", res.ErrorMessage),
	)

	if o.store == nil {
		log.Warn("no database connection, sample dropped")
		return false
	}

	sample := &statstore.APISample{
		Timestamp:      statstore.Timestamp(at),
		Hostname:       o.hostname,
		APIName:        target.Name,
		EndpointURL:    target.URL,
		ResponseTimeMs: res.ResponseTimeMs,
		StatusCode:     res.StatusCode,
		Success:        res.Success,
		ErrorMessage:   res.ErrorMessage,
	}
	if err := o.store.InsertAPISample(sample); err != nil {
		log.Warn("sample insert failed", zap.Error(err))
		return false
	}

	if err := o.agg.RecomputeAPI(target.Name, at.Add(-aggregate.DefaultWindow), at); err != nil {
		log.Warn("summary computation failed", zap.Error(err))
		return false
	}
	return true
}

// decimate runs the retention pass once per cycle, after all targets.
// Failures are logged and never affect the cycle outcome.
func (o *Orchestrator) decimate() {
	if o.store == nil {
		return
	}
	now := o.now()
	for _, table := range []string{statstore.TableDiskStats, statstore.TableAPIStats} {
		removed, err := o.store.Decimate(table, now)
		if err != nil {
			o.log.Warn("decimation failed", zap.String("table", table), zap.Error(err))
			continue
		}
		if removed > 0 {
			o.log.Debug("decimated old samples", zap.String("table", table), zap.Int64("removed", removed))
		}
	}
}
