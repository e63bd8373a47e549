package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"ezlockin/internal/core/model"
)

// DurationSource picks the length of the next focus phase.
type DurationSource interface {
	NextFocusDuration(min, max time.Duration) time.Duration
}

// SessionRecorder appends completed focus sessions to a durable log.
type SessionRecorder interface {
	Append(record model.SessionRecord) error
}

// StatsSaver persists focus totals.
type StatsSaver interface {
	Save(totals model.Totals) error
}

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Config contains runtime collaborators and options for Machine.
type Config struct {
	TickInterval time.Duration
	Now          func() time.Time

	Durations DurationSource
	Recorder  SessionRecorder
	Stats     StatsSaver

	// Totals restores counters loaded from the stats store.
	Totals model.Totals
}

// Machine is the focus/break cycle state machine. All commands and ticks
// are serialized through mu; persistence runs outside of it.
type Machine struct {
	mu      sync.Mutex
	config  model.CycleConfig
	options Config

	phase         Phase
	suspended     Phase
	remaining     time.Duration
	phaseLength   time.Duration
	focusDuration time.Duration
	focusStart    time.Time
	round         int

	accumulated time.Duration
	lifetime    time.Duration
	// inFlight counts focus seconds of the phase that has not completed yet.
	inFlight time.Duration

	// anchor is the wall-clock instant up to which elapsed seconds have been applied.
	anchor      time.Time
	pausedCarry time.Duration

	idleChecker   IdleChecker
	idleDisabled  bool
	lastIdleCheck time.Time

	events   []chan Event
	stopCh   chan struct{}
	stopped  bool
	statsSeq uint64

	persistMu sync.Mutex
	savedSeq  uint64
}

type effects struct {
	records    []model.SessionRecord
	saveTotals bool
	totals     model.Totals
	seq        uint64
}

// New creates an Idle Machine with the provided configuration.
func New(config model.CycleConfig, options Config) *Machine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if config.Focus.Min < time.Second {
		config.Focus.Min = time.Second
	}
	if config.Focus.Max < time.Second {
		config.Focus.Max = time.Second
	}
	if config.ShortBreak < time.Second {
		config.ShortBreak = time.Second
	}
	if config.LongBreak < time.Second {
		config.LongBreak = time.Second
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}

	return &Machine{
		config:      config,
		options:     options,
		phase:       PhaseIdle,
		accumulated: options.Totals.Accumulated.Truncate(time.Second),
		lifetime:    options.Totals.Lifetime.Truncate(time.Second),
		stopCh:      make(chan struct{}),
	}
}

// SetIdleChecker injects an idle checker used for idle auto-pause.
func (machine *Machine) SetIdleChecker(checker IdleChecker) {
	machine.mu.Lock()
	defer machine.mu.Unlock()
	machine.idleChecker = checker
	machine.idleDisabled = false
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than block the machine.
func (machine *Machine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	machine.mu.Lock()
	if machine.stopped {
		machine.mu.Unlock()
		close(ch)
		return ch
	}
	machine.events = append(machine.events, ch)
	machine.mu.Unlock()
	return ch
}

// Done is closed once Quit has been called.
func (machine *Machine) Done() <-chan struct{} {
	return machine.stopCh
}

// Status returns a consistent snapshot of the current state.
func (machine *Machine) Status() Status {
	machine.mu.Lock()
	defer machine.mu.Unlock()
	return machine.statusLocked()
}

// Run drives the machine with periodic ticks until ctx is cancelled or Quit is called.
func (machine *Machine) Run(ctx context.Context) {
	ticker := time.NewTicker(machine.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-machine.stopCh:
			return
		case <-ticker.C:
			machine.tick(machine.options.Now())
		}
	}
}

// Start begins a focus phase from Idle. Starting a running machine is a
// no-op and starting a paused one resumes it.
func (machine *Machine) Start() error {
	machine.mu.Lock()
	if machine.stopped {
		return machine.rejectLocked("start", ErrStopped)
	}
	if machine.phase == PhasePaused {
		machine.resumeLocked(machine.options.Now())
		machine.mu.Unlock()
		return nil
	}
	if machine.phase.Running() {
		machine.mu.Unlock()
		return nil
	}

	now := machine.options.Now()
	machine.anchor = now
	machine.lastIdleCheck = now
	machine.startFocusLocked(now, PhaseIdle)
	machine.mu.Unlock()
	return nil
}

// Pause freezes the running phase.
func (machine *Machine) Pause() error {
	machine.mu.Lock()
	if machine.stopped {
		return machine.rejectLocked("pause", ErrStopped)
	}
	if !machine.phase.Running() {
		return machine.rejectLocked("pause", ErrNotRunning)
	}
	now := machine.options.Now()
	fx := machine.advanceLocked(now)
	machine.pauseLocked(now, EventPhaseChange, "")
	machine.mu.Unlock()

	_ = machine.persist(fx)
	return nil
}

// Resume continues the paused phase from its exact snapshot.
func (machine *Machine) Resume() error {
	machine.mu.Lock()
	if machine.stopped {
		return machine.rejectLocked("resume", ErrStopped)
	}
	if machine.phase != PhasePaused {
		return machine.rejectLocked("resume", ErrNotPaused)
	}
	machine.resumeLocked(machine.options.Now())
	machine.mu.Unlock()
	return nil
}

// ResetCurrentCycle discards the in-flight phase without logging it and
// returns to Idle. Focus totals are left as they are.
func (machine *Machine) ResetCurrentCycle() error {
	machine.mu.Lock()
	if machine.stopped {
		return machine.rejectLocked("reset_current_cycle", ErrStopped)
	}
	previous := machine.phase
	machine.inFlight = 0
	machine.clearCycleLocked()
	fx := effects{saveTotals: true, totals: machine.committedTotalsLocked(), seq: machine.nextSeqLocked()}
	machine.emitLocked(Event{
		Type:     EventPhaseChange,
		Previous: previous,
		At:       machine.options.Now(),
	})
	machine.mu.Unlock()

	return machine.persist(fx)
}

// ResetAllStatistics zeroes accumulated and lifetime focus time and returns
// to Idle. The session log is not touched. Without confirmation the command
// is rejected.
func (machine *Machine) ResetAllStatistics(confirmed bool) error {
	machine.mu.Lock()
	if machine.stopped {
		return machine.rejectLocked("reset_all_statistics", ErrStopped)
	}
	if !confirmed {
		return machine.rejectLocked("reset_all_statistics", ErrConfirmationRequired)
	}
	previous := machine.phase
	machine.inFlight = 0
	machine.accumulated = 0
	machine.lifetime = 0
	machine.clearCycleLocked()
	fx := effects{saveTotals: true, totals: model.Totals{}, seq: machine.nextSeqLocked()}
	now := machine.options.Now()
	machine.emitLocked(Event{Type: EventStatsReset, Previous: previous, At: now})
	machine.emitLocked(Event{Type: EventPhaseChange, Previous: previous, At: now})
	machine.mu.Unlock()

	return machine.persist(fx)
}

// Quit stops the machine for good. The in-flight focus phase is dropped
// without a session record and totals of completed phases are saved before
// Quit returns. Observer channels are closed afterwards.
func (machine *Machine) Quit() error {
	machine.mu.Lock()
	if machine.stopped {
		machine.mu.Unlock()
		return nil
	}
	machine.stopped = true
	close(machine.stopCh)

	machine.accumulated -= machine.inFlight
	machine.lifetime -= machine.inFlight
	machine.inFlight = 0
	machine.clearCycleLocked()
	fx := effects{saveTotals: true, totals: machine.committedTotalsLocked(), seq: machine.nextSeqLocked()}
	machine.mu.Unlock()

	err := machine.persist(fx)

	machine.mu.Lock()
	events := machine.events
	machine.events = nil
	machine.mu.Unlock()
	for _, ch := range events {
		close(ch)
	}
	return err
}

func (machine *Machine) tick(now time.Time) {
	if machine.idleCheckDue(now) {
		_ = machine.persist(machine.checkIdle(now))
	}

	machine.mu.Lock()
	if machine.stopped || !machine.phase.Running() {
		machine.mu.Unlock()
		return
	}
	fx := machine.advanceLocked(now)
	machine.emitLocked(Event{Type: EventProgress, At: now})
	machine.mu.Unlock()

	_ = machine.persist(fx)
}

// advanceLocked applies every whole second elapsed since the anchor, one at
// a time, so a phase boundary inside a long gap is resolved in order.
func (machine *Machine) advanceLocked(now time.Time) effects {
	var fx effects
	elapsed := now.Sub(machine.anchor)
	if elapsed < 0 {
		machine.anchor = now
		return fx
	}
	for elapsed >= time.Second && machine.phase.Running() {
		machine.anchor = machine.anchor.Add(time.Second)
		elapsed -= time.Second
		machine.stepLocked(machine.anchor, &fx)
	}
	return fx
}

func (machine *Machine) stepLocked(at time.Time, fx *effects) {
	switch machine.phase {
	case PhaseFocus:
		machine.remaining -= time.Second
		machine.accumulated += time.Second
		machine.lifetime += time.Second
		machine.inFlight += time.Second
		if machine.remaining > 0 {
			return
		}
		machine.completeFocusLocked(at, fx)
	case PhaseShortBreak, PhaseLongBreak:
		machine.remaining -= time.Second
		if machine.remaining > 0 {
			return
		}
		machine.startFocusLocked(at, machine.phase)
	}
}

func (machine *Machine) completeFocusLocked(at time.Time, fx *effects) {
	fx.records = append(fx.records, model.SessionRecord{
		Start:    machine.focusStart,
		End:      at,
		Duration: machine.focusDuration,
	})
	machine.inFlight = 0

	next := PhaseShortBreak
	machine.remaining = machine.config.ShortBreak
	if machine.accumulated >= machine.config.LongBreakThreshold {
		next = PhaseLongBreak
		machine.remaining = machine.config.LongBreak
		machine.accumulated = 0
	}
	machine.phase = next
	machine.phaseLength = machine.remaining

	fx.saveTotals = true
	fx.totals = machine.committedTotalsLocked()
	fx.seq = machine.nextSeqLocked()

	machine.emitLocked(Event{Type: EventPhaseChange, Previous: PhaseFocus, At: at})
}

func (machine *Machine) startFocusLocked(at time.Time, previous Phase) {
	focus := machine.config.Focus
	length := focus.Min
	if machine.options.Durations != nil {
		length = machine.options.Durations.NextFocusDuration(focus.Min, focus.Max)
	}
	length = length.Truncate(time.Second)
	if length < time.Second {
		length = time.Second
	}

	machine.round++
	machine.phase = PhaseFocus
	machine.focusDuration = length
	machine.remaining = length
	machine.phaseLength = length
	machine.focusStart = at
	machine.inFlight = 0

	machine.emitLocked(Event{Type: EventPhaseChange, Previous: previous, At: at})
}

func (machine *Machine) pauseLocked(now time.Time, eventType EventType, message string) {
	machine.pausedCarry = now.Sub(machine.anchor)
	if machine.pausedCarry < 0 {
		machine.pausedCarry = 0
	}
	previous := machine.phase
	machine.suspended = machine.phase
	machine.phase = PhasePaused
	machine.emitLocked(Event{Type: eventType, Previous: previous, Message: message, At: now})
}

func (machine *Machine) resumeLocked(now time.Time) {
	machine.phase = machine.suspended
	machine.suspended = ""
	machine.anchor = now.Add(-machine.pausedCarry)
	machine.pausedCarry = 0
	machine.lastIdleCheck = now
	machine.emitLocked(Event{Type: EventPhaseChange, Previous: PhasePaused, At: now})
}

func (machine *Machine) clearCycleLocked() {
	machine.phase = PhaseIdle
	machine.suspended = ""
	machine.remaining = 0
	machine.phaseLength = 0
	machine.focusDuration = 0
	machine.focusStart = time.Time{}
	machine.pausedCarry = 0
	machine.round = 0
}

func (machine *Machine) idleCheckDue(now time.Time) bool {
	machine.mu.Lock()
	defer machine.mu.Unlock()
	if machine.config.IdlePauseAfter <= 0 || machine.idleChecker == nil || machine.idleDisabled {
		return false
	}
	if machine.phase != PhaseFocus {
		return false
	}
	if !machine.lastIdleCheck.IsZero() && now.Sub(machine.lastIdleCheck) < machine.config.IdleCheckInterval {
		return false
	}
	machine.lastIdleCheck = now
	return true
}

// checkIdle queries the idle checker outside of the state lock since
// platform idle checks may shell out.
func (machine *Machine) checkIdle(now time.Time) effects {
	machine.mu.Lock()
	checker := machine.idleChecker
	machine.mu.Unlock()
	if checker == nil {
		return effects{}
	}

	idleDuration, err := checker.IdleDuration()

	machine.mu.Lock()
	defer machine.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			machine.idleDisabled = true
		}
		machine.emitLocked(Event{Type: EventIdleError, Err: err, Message: err.Error(), At: now})
		return effects{}
	}
	if machine.stopped || machine.phase != PhaseFocus || idleDuration < machine.config.IdlePauseAfter {
		return effects{}
	}
	fx := machine.advanceLocked(now)
	if machine.phase == PhaseFocus {
		machine.rollbackIdleLocked(idleDuration)
	}
	if machine.phase.Running() {
		machine.pauseLocked(now, EventIdlePause, fmt.Sprintf("idle for %s", idleDuration.Round(time.Second)))
	}
	return fx
}

// rollbackIdleLocked takes the idle stretch back out of the running focus
// phase. Only seconds of the current phase can be returned, so completed
// phases and their records are never affected.
func (machine *Machine) rollbackIdleLocked(idleDuration time.Duration) {
	rollback := min(idleDuration.Truncate(time.Second), machine.inFlight)
	if rollback <= 0 {
		return
	}
	machine.inFlight -= rollback
	machine.accumulated -= rollback
	machine.lifetime -= rollback
	machine.remaining += rollback
}

func (machine *Machine) rejectLocked(command string, reason error) error {
	err := &CommandError{Command: command, Phase: machine.phase, Err: reason}
	machine.emitLocked(Event{
		Type:    EventCommandRejected,
		Err:     err,
		Message: err.Error(),
		At:      machine.options.Now(),
	})
	machine.mu.Unlock()
	log.Debug().Str("command", command).Str("phase", string(err.Phase)).Msg(reason.Error())
	return err
}

func (machine *Machine) committedTotalsLocked() model.Totals {
	return model.Totals{
		Accumulated: machine.accumulated - machine.inFlight,
		Lifetime:    machine.lifetime - machine.inFlight,
	}
}

func (machine *Machine) nextSeqLocked() uint64 {
	machine.statsSeq++
	return machine.statsSeq
}

func (machine *Machine) statusLocked() Status {
	untilLong := machine.config.LongBreakThreshold - machine.accumulated
	if untilLong < 0 {
		untilLong = 0
	}
	return Status{
		Phase:          machine.phase,
		Suspended:      machine.suspended,
		Remaining:      machine.remaining,
		PhaseLength:    machine.phaseLength,
		FocusDuration:  machine.focusDuration,
		Accumulated:    machine.accumulated,
		Lifetime:       machine.lifetime,
		UntilLongBreak: untilLong,
		Round:          machine.round,
	}
}

// persist writes session records and the totals snapshot. Writes are
// serialized by persistMu and a snapshot older than the last saved one is
// dropped, so the stats file only moves forward.
func (machine *Machine) persist(fx effects) error {
	if len(fx.records) == 0 && !fx.saveTotals {
		return nil
	}
	machine.persistMu.Lock()
	defer machine.persistMu.Unlock()

	var errs []error
	for _, record := range fx.records {
		if machine.options.Recorder == nil {
			continue
		}
		if err := machine.options.Recorder.Append(record); err != nil {
			err = fmt.Errorf("append session record: %w", err)
			log.Warn().Err(err).Time("start", record.Start).Msg("session log append failed, timer continues")
			errs = append(errs, err)
			machine.emit(Event{Type: EventPersistenceError, Err: err, Message: err.Error(), At: record.End})
			continue
		}
		logged := record
		machine.emit(Event{Type: EventSessionLogged, Record: &logged, At: record.End})
	}

	if fx.saveTotals && fx.seq > machine.savedSeq && machine.options.Stats != nil {
		if err := machine.options.Stats.Save(fx.totals); err != nil {
			err = fmt.Errorf("save stats: %w", err)
			log.Warn().Err(err).Msg("stats save failed")
			errs = append(errs, err)
			machine.emit(Event{Type: EventPersistenceError, Err: err, Message: err.Error(), At: machine.options.Now()})
		} else {
			machine.savedSeq = fx.seq
		}
	}
	return errors.Join(errs...)
}

func (machine *Machine) emit(event Event) {
	machine.mu.Lock()
	defer machine.mu.Unlock()
	machine.emitLocked(event)
}

func (machine *Machine) emitLocked(event Event) {
	event.Status = machine.statusLocked()
	events := append([]chan Event(nil), machine.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
