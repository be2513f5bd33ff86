package sim

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/flowfield/systems"
)

// parallelThreshold is the minimum particle count to use the worker pool.
// Below this, single-threaded is faster due to channel overhead.
const parallelThreshold = 2048

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Neighbors []systems.Neighbor
}

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
	fs         *frameState
}

// workerPool runs the particle kernel on persistent goroutines. Every
// particle reads only the front buffer and writes only its own slot of the
// back buffer, so chunks need no further synchronization.
type workerPool struct {
	scratches  []workerScratch
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]workerScratch, workers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, systems.MaxQueryResults)
	}
	return &workerPool{
		numWorkers: workers,
		scratches:  scratches,
	}
}

// start launches persistent worker goroutines.
func (p *workerPool) start(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s, i)
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *workerPool) worker(s *Simulation, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end, scratch, chunk.fs)
			p.doneChan <- struct{}{}
		}
	}
}

// run executes the kernel for every particle, inline for small stores and
// on the pool otherwise.
func (p *workerPool) run(s *Simulation, fs *frameState) {
	n := s.store.N

	if n < parallelThreshold || !p.running {
		s.computeChunk(0, n, &p.scratches[0], fs)
		return
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, fs: fs}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}
