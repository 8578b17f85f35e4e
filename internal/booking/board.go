package booking

import (
	"context"
	"sync"
	"time"

	bookingerrors "clinicportal/internal/booking/errors"
	"clinicportal/pkg/model"
)

// SlotFetcher loads labelled slots; Service.ListAvailableSlots satisfies it.
type SlotFetcher func(ctx context.Context, doctorID, date string) ([]model.LabelledSlot, error)

// SlotBoard is one viewer's slot listing. Each Load supersedes the previous
// one: the older fetch is cancelled and its result, if it still arrives, is
// reported as ErrStaleResponse instead of replacing newer state.
type SlotBoard struct {
	mu         sync.Mutex
	fetch      SlotFetcher
	generation uint64
	cancel     context.CancelFunc
	doctorID   string
	date       string
	slots      []model.LabelledSlot
	lastUsed   time.Time
}

func NewSlotBoard(fetch SlotFetcher) *SlotBoard {
	return &SlotBoard{fetch: fetch, lastUsed: time.Now()}
}

func (b *SlotBoard) Load(ctx context.Context, doctorID, date string) ([]model.LabelledSlot, error) {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	if b.cancel != nil {
		b.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.lastUsed = time.Now()
	b.mu.Unlock()

	slots, err := b.fetch(fetchCtx, doctorID, date)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		cancel()
		return nil, bookingerrors.ErrStaleResponse
	}
	b.cancel = nil
	cancel()

	if err != nil {
		return nil, err
	}
	b.doctorID = doctorID
	b.date = date
	b.slots = slots
	return slots, nil
}

// Current returns the last accepted listing.
func (b *SlotBoard) Current() (doctorID, date string, slots []model.LabelledSlot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doctorID, b.date, b.slots
}

func (b *SlotBoard) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

func (b *SlotBoard) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return time.Now()
	}
	return b.lastUsed
}

// Boards keeps one SlotBoard per viewer and drops idle ones.
type Boards struct {
	mu      sync.Mutex
	boards  map[string]*SlotBoard
	fetch   SlotFetcher
	idleTTL time.Duration
	stopCh  chan struct{}
	once    sync.Once
}

const defaultBoardIdleTTL = 10 * time.Minute

func NewBoards(fetch SlotFetcher, idleTTL time.Duration) *Boards {
	if idleTTL <= 0 {
		idleTTL = defaultBoardIdleTTL
	}
	b := &Boards{
		boards:  make(map[string]*SlotBoard),
		fetch:   fetch,
		idleTTL: idleTTL,
		stopCh:  make(chan struct{}),
	}
	go b.cleanup()
	return b
}

func (b *Boards) For(viewer string) *SlotBoard {
	b.mu.Lock()
	defer b.mu.Unlock()

	board, ok := b.boards[viewer]
	if !ok {
		board = NewSlotBoard(b.fetch)
		b.boards[viewer] = board
	}
	return board
}

func (b *Boards) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.boards)
}

func (b *Boards) sweep(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for viewer, board := range b.boards {
		if now.Sub(board.idleSince()) > b.idleTTL {
			delete(b.boards, viewer)
		}
	}
}

func (b *Boards) cleanup() {
	ticker := time.NewTicker(b.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			b.sweep(now)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Boards) Stop() {
	b.once.Do(func() {
		close(b.stopCh)
	})
}
