package main

import (
	"context"
	"sync"
	"time"

	"github.com/int80/midibridge/internal/bridges/midi"
	"github.com/int80/midibridge/internal/infrastructure/config"
	"github.com/int80/midibridge/internal/infrastructure/logging"
)

// noteStepInterval is how many sweep steps pass between simulated notes.
const noteStepInterval = 64

// simNote is the note number the simulation plays when notes are enabled.
const simNote = 60 // middle C

// simulation is a built-in producer that sweeps one controller up and down
// through its full value range. It exercises the whole delivery pipeline
// without MQTT producers or a physical sensor, which makes it useful for
// bench-testing a new endpoint daemon.
type simulation struct {
	device   *midi.Device
	log      *logging.Logger
	index    uint8
	interval time.Duration
	notes    bool

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newSimulation(device *midi.Device, cfg *config.Config, log *logging.Logger) *simulation {
	return &simulation{
		device:   device,
		log:      log,
		index:    uint8(cfg.MIDI.Simulation.ControlIndex),
		interval: cfg.GetSimulationInterval(),
		notes:    cfg.MIDI.Simulation.Notes,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep in a background goroutine.
func (s *simulation) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.sweep(ctx)
}

// Stop halts the sweep and waits for the goroutine to exit.
// Safe to call multiple times.
func (s *simulation) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

// sweep ramps the control value 0→127→0 repeatedly, one step per tick.
func (s *simulation) sweep(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	value := 0
	direction := 1
	step := 0
	noteOn := false

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := s.device.EnqueueUpdate(s.index, uint8(value)); err != nil {
			s.log.Warn("simulation enqueue failed", "error", err)
			continue
		}

		value += direction
		if value >= int(midi.MaxControlValue)-1 {
			value = int(midi.MaxControlValue) - 1
			direction = -1
		} else if value <= 0 {
			value = 0
			direction = 1
		}

		if s.notes {
			step++
			if step%noteStepInterval == 0 {
				noteOn = !noteOn
				if err := s.device.SendNote(simNote, 100, noteOn); err != nil {
					s.log.Warn("simulation note failed", "error", err)
				}
			}
		}
	}
}
