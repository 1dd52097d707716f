package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshuapare/smmkit/arena"
	"github.com/joshuapare/smmkit/region"
	"github.com/joshuapare/smmkit/region/dirty"
)

// session is an arena attached to a mapped region file.
type session struct {
	r  *region.Region
	dt *dirty.Tracker
	a  *arena.Arena
}

// openSession maps path and attaches the arena in it.
func openSession(path string) (*session, error) {
	printVerbose("Opening region: %s\n", path)
	r, err := region.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open region: %w", err)
	}
	dt := dirty.NewTracker(r)
	a, err := arena.Attach(r.Bytes(), &arena.Options{Tracker: dt})
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &session{r: r, dt: dt, a: a}, nil
}

// close flushes pages written through the arena, then unmaps the region.
func (s *session) close(ctx context.Context) error {
	var flushErr error
	if s.dt.Len() > 0 {
		printVerbose("Flushing %d dirty range(s)\n", s.dt.Len())
		flushErr = s.dt.Flush(ctx, dirty.FlushAuto)
	}
	return errors.Join(flushErr, s.r.Close())
}
