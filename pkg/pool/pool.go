package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// job is a unit of work handed to an idle worker.
//
// A job either evaluates f once at index i, or, when search is set,
// keeps evaluating f until enough non-nil results have been collected.
type job struct {
	search  bool
	i       int
	f       func(int) interface{}
	results []interface{}
	// remaining counts the results that still need to be produced
	remaining *int64
	wg        *sync.WaitGroup
}

func (j job) run() {
	defer j.wg.Done()
	if !j.search {
		j.results[j.i] = j.f(j.i)
		return
	}
	for atomic.LoadInt64(j.remaining) > 0 {
		res := j.f(0)
		if res == nil {
			continue
		}
		slot := atomic.AddInt64(j.remaining, -1)
		if slot < 0 {
			return
		}
		j.results[slot] = res
	}
}

// Pool is a fixed set of goroutines used to parallelize expensive loops,
// such as generating one proof per peer or searching for safe primes.
//
// A nil *Pool is valid and runs everything on the calling goroutine.
type Pool struct {
	jobs        chan job
	workerCount int
	once        sync.Once
}

// NewPool creates a pool with count workers.
//
// If count <= 0, the number of available CPUs is used instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		jobs:        make(chan job),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go func() {
			for j := range p.jobs {
				j.run()
			}
		}()
	}
	return p
}

// TearDown stops the workers. The pool must not be used afterwards.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.jobs) })
}

// Search calls f until count non-nil results are found, and returns them.
//
// f tries a single candidate and returns nil if it was not successful.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			for results[i] == nil {
				results[i] = f()
			}
		}
		return results
	}

	remaining := int64(count)
	var wg sync.WaitGroup
	wg.Add(p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.jobs <- job{
			search:    true,
			f:         func(int) interface{} { return f() },
			results:   results,
			remaining: &remaining,
			wg:        &wg,
		}
	}
	wg.Wait()
	return results
}

// Parallelize returns [f(0), f(1), …, f(count-1)], evaluated concurrently.
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		p.jobs <- job{i: i, f: f, results: results, wg: &wg}
	}
	wg.Wait()
	return results
}

// LockedReader wraps an io.Reader so that it can be shared between workers.
type LockedReader struct {
	reader io.Reader
	mtx    sync.Mutex
}

// NewLockedReader wraps r.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.reader.Read(p)
}
