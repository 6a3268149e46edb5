package services

import "sync/atomic"

// Counters 는 /metrics 에 노출하는 프로세스 단위 누적 카운터다.
type Counters struct {
	requests            atomic.Int64
	rateLimited         atomic.Int64
	backendErrors       atomic.Int64
	streamInterruptions atomic.Int64
}

func NewCounters() *Counters { return &Counters{} }

func (c *Counters) RecordRequest()            { c.requests.Add(1) }
func (c *Counters) RecordRateLimited()        { c.rateLimited.Add(1) }
func (c *Counters) RecordBackendError()       { c.backendErrors.Add(1) }
func (c *Counters) RecordStreamInterruption() { c.streamInterruptions.Add(1) }

func (c *Counters) Requests() int64            { return c.requests.Load() }
func (c *Counters) RateLimited() int64         { return c.rateLimited.Load() }
func (c *Counters) BackendErrors() int64       { return c.backendErrors.Load() }
func (c *Counters) StreamInterruptions() int64 { return c.streamInterruptions.Load() }
