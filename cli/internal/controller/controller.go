package controller

import "sync"

// Config controls a Controller instance.
type Config struct {
	// QueueSize bounds the input queue. If zero, a default is used.
	QueueSize int
}

// Controller serializes lifecycle inputs and produces effects.
//
// Inputs arrive from both the UI (submit, cancel) and the transport
// goroutine (stream events); the loop applies them one at a time so the
// reducer never sees concurrent updates.
type Controller struct {
	mu sync.Mutex

	state State

	inputs  chan Input
	effects chan Effect
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new Controller instance.
func New(cfg Config) *Controller {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	return &Controller{
		state:   State{Phase: PhaseIdle},
		inputs:  make(chan Input, queueSize),
		effects: make(chan Effect, queueSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins the controller loop in a new goroutine.
func (c *Controller) Start() {
	go c.loop()
}

// Stop requests stopping the controller loop and waits for it to exit.
func (c *Controller) Stop() {
	select {
	case <-c.stopCh:
		<-c.doneCh
		return
	default:
		close(c.stopCh)
	}
	<-c.doneCh
}

// Effects returns a channel of effects to be executed by the caller.
func (c *Controller) Effects() <-chan Effect {
	return c.effects
}

// Post enqueues an input for the controller loop.
// It returns false if the controller is stopped or the queue is full.
func (c *Controller) Post(input Input) bool {
	if input == nil {
		return false
	}
	select {
	case <-c.stopCh:
		return false
	default:
	}

	select {
	case c.inputs <- input:
		return true
	default:
		return false
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) loop() {
	defer close(c.doneCh)
	defer close(c.effects)

	for {
		select {
		case <-c.stopCh:
			return
		case input := <-c.inputs:
			if input == nil {
				continue
			}
			effects := c.apply(input)
			for _, eff := range effects {
				if eff == nil {
					continue
				}
				select {
				case c.effects <- eff:
				case <-c.stopCh:
					return
				}
			}
		}
	}
}

func (c *Controller) apply(input Input) []Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	var effects []Effect
	c.state, effects = Reduce(c.state, input)
	return effects
}
