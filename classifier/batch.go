package classifier

import (
	"context"
	"runtime"
	"sync"
)

// ClassifyAll classifies texts across a pool of workers and returns the
// labels strings in input order. workers <= 0 uses GOMAXPROCS. If ctx is
// done before every record is classified, ctx.Err() is returned.
func (c *Compiled) ClassifyAll(ctx context.Context, texts []interface{}, workers int) ([]string, error) {
	if c == nil {
		panic("classifier: nil compiled dictionary")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(texts) {
		workers = len(texts)
	}

	results := make([]string, len(texts))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.Classify(texts[i])
			}
		}()
	}

	var err error
feed:
	for i := range texts {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return results, nil
}
