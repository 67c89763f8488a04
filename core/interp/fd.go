package interp

import (
	"fmt"
	"os"
)

// pipePair owns the two ends of one pipe held by the parent. Each end is
// released at most once, so error paths cannot double-close.
type pipePair struct {
	r, w *os.File
}

func newPipePair() (*pipePair, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	return &pipePair{r: r, w: w}, nil
}

func (p *pipePair) closeRead() {
	if p.r != nil {
		p.r.Close()
		p.r = nil
	}
}

func (p *pipePair) closeWrite() {
	if p.w != nil {
		p.w.Close()
		p.w = nil
	}
}

func (p *pipePair) closeBoth() {
	p.closeRead()
	p.closeWrite()
}
