package services

import "sync"

// CostTracker accumulates token usage across the four stage calls of a run.
type CostTracker struct {
	mu        sync.Mutex
	tokensIn  int
	tokensOut int
	calls     int
}

func NewCostTracker() *CostTracker {
	return &CostTracker{}
}

func (c *CostTracker) AddTokens(in, out int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokensIn += in
	c.tokensOut += out
	c.calls++
}

func (c *CostTracker) Usage() (tokensIn, tokensOut, calls int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokensIn, c.tokensOut, c.calls
}
