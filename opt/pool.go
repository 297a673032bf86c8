package opt

import (
	"sync"

	"github.com/pthm-cable/atmosim/bomb"
)

// job is one parameter vector queued for evaluation.
type job struct {
	idx    int
	params []float64
}

// outcome pairs an evaluation result with its batch index.
type outcome struct {
	idx int
	res bomb.Result
	err error
}

// pool runs persistent evaluation workers. Workers share nothing but the
// channels; every evaluation builds its own mixture and tank.
type pool struct {
	args       *bomb.Args
	numWorkers int

	workChan   chan job
	resultChan chan outcome
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    bool
}

func newPool(args *bomb.Args, numWorkers int) *pool {
	return &pool{args: args, numWorkers: numWorkers}
}

// start launches the persistent worker goroutines.
func (p *pool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan job, p.numWorkers)
	p.resultChan = make(chan outcome, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *pool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.resultChan)
	p.running = false
}

func (p *pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case j, ok := <-p.workChan:
			if !ok {
				return
			}
			res, err := bomb.Evaluate(p.args, j.params)
			select {
			case p.resultChan <- outcome{idx: j.idx, res: res, err: err}:
			case <-p.stopChan:
				return
			}
		}
	}
}

// evalBatch evaluates every vector and returns results in input order.
// Dispatch runs on a side goroutine so batches larger than the channel
// buffer do not deadlock against collection.
func (p *pool) evalBatch(batch [][]float64) ([]bomb.Result, error) {
	if !p.running {
		p.start()
	}

	go func() {
		for i, params := range batch {
			select {
			case p.workChan <- job{idx: i, params: params}:
			case <-p.stopChan:
				return
			}
		}
	}()

	results := make([]bomb.Result, len(batch))
	var firstErr error
	for n := 0; n < len(batch); n++ {
		out := <-p.resultChan
		if out.err != nil && firstErr == nil {
			firstErr = out.err
		}
		results[out.idx] = out.res
	}
	return results, firstErr
}
