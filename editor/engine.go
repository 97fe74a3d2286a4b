// Package editor implements the block editing engine: the operations the
// host surface triggers, the invariants they keep, and the debounced flush
// to storage.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"owlistic-notes/blocknotes/autoformat"
	"owlistic-notes/blocknotes/document"
	"owlistic-notes/blocknotes/logging"
	"owlistic-notes/blocknotes/models"
	"owlistic-notes/blocknotes/richtext"
	"owlistic-notes/blocknotes/serializer"
)

// Focus is the block holding the caret and the caret's offset into that
// block's plain text.
type Focus struct {
	BlockID uuid.UUID `json:"block_id"`
	Caret   int       `json:"caret"`
}

// Snapshot is a deep copy of the engine's document for the host surface.
type Snapshot struct {
	Note     models.Note       `json:"note"`
	Blocks   []models.Block    `json:"blocks"`
	Ordinals map[uuid.UUID]int `json:"ordinals"`
	Focus    Focus             `json:"focus"`
	Status   *FlushStatus      `json:"status,omitempty"`
}

type Option func(*Engine)

func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(e *Engine) { e.newID = gen }
}

// Engine owns one document at a time. Operations are meant to be driven by
// one host event loop; the lock only guards against the flush timer.
type Engine struct {
	// writeMu orders flushes: a batch is prepared and written under it so an
	// older snapshot can never overwrite a newer one. Lock order: writeMu, mu.
	writeMu sync.Mutex
	mu      sync.Mutex

	store    Storage
	detector *autoformat.Detector
	reporter Reporter
	logger   *zap.Logger
	now      func() time.Time
	newID    func() uuid.UUID
	debounce time.Duration
	flusher  *Debouncer

	note       *models.Note
	seq        *document.Sequence
	focus      Focus
	deleted    map[uuid.UUID]struct{}
	dirty      bool
	titleDirty bool
	status     *FlushStatus
}

func New(store Storage, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		detector: autoformat.New(),
		reporter: nopReporter{},
		logger:   logging.Get(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
		debounce: DefaultDebounce,
		deleted:  make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.flusher = NewDebouncer(e.debounce, e.flushOnce)
	return e
}

// errUnchanged lets an operation succeed without scheduling a flush.
var errUnchanged = errors.New("unchanged")

// mutate runs fn under the lock. fn validates before it changes anything, so
// an error always means the document is untouched.
func (e *Engine) mutate(op string, fn func() (Focus, error)) (Focus, error) {
	e.mu.Lock()
	if e.note == nil {
		e.mu.Unlock()
		return Focus{}, ErrNoDocument
	}
	focus, err := fn()
	if err != nil {
		current, noteID := e.focus, e.note.ID
		e.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return current, nil
		}
		e.logger.Debug("operation not applied",
			zap.String("op", op),
			zap.String("note_id", noteID.String()),
			zap.Error(err))
		return current, err
	}
	e.seq.Renumber()
	e.focus = focus
	e.dirty = true
	e.note.UpdatedAt = e.now()
	e.mu.Unlock()

	e.flusher.Schedule()
	return focus, nil
}

func (e *Engine) blockLocked(id uuid.UUID) (*models.Block, error) {
	b, ok := e.seq.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	return b, nil
}

func (e *Engine) newBlockLocked(t models.BlockType, content string) *models.Block {
	return models.NewBlock(e.newID(), e.note.ID, t, richtext.Sanitize(content), e.now())
}

func (e *Engine) removeLocked(id uuid.UUID) {
	if _, ok := e.seq.Remove(id); ok {
		e.deleted[id] = struct{}{}
	}
}

func (e *Engine) touch(b *models.Block) {
	b.UpdatedAt = e.now()
}

// autoformatLocked promotes a text block whose content starts with a
// markdown shortcut and reports how many plain-text runes were stripped.
func (e *Engine) autoformatLocked(b *models.Block) (int, bool) {
	m, ok := e.detector.Evaluate(b)
	if !ok {
		return 0, false
	}
	rest := richtext.TrimPrefix(b.Content, m.Strip)
	if err := b.Convert(m.Type); err != nil {
		return 0, false
	}
	if models.MustSpec(m.Type).HoldsText {
		b.Content = rest
	}
	e.touch(b)
	e.logger.Debug("autoformat applied",
		zap.String("block_id", b.ID.String()),
		zap.String("type", string(m.Type)))
	return m.Strip, true
}

// Load makes note the engine's document. Unwritten changes of the previous
// document are flushed against that document before it is replaced. When
// that flush fails the previous document stays loaded with its changes
// pending and Load returns the error.
func (e *Engine) Load(ctx context.Context, note models.Note) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.releaseLocked(ctx); err != nil {
		e.logger.Warn("outgoing document kept open",
			zap.String("requested_note_id", note.ID.String()),
			zap.Error(err))
		return err
	}

	records, err := e.store.GetBlocksByNote(ctx, note.ID)
	if err != nil {
		return fmt.Errorf("%w: load blocks of note %s: %v", ErrPersistence, note.ID, err)
	}
	blocks, mismatches := serializer.Deserialize(records)
	for _, m := range mismatches {
		e.logger.Warn("block record mismatch",
			zap.String("note_id", note.ID.String()),
			zap.Error(m))
	}

	e.mu.Lock()
	dirty := e.installLocked(note, blocks)
	e.mu.Unlock()

	e.logger.Info("document loaded",
		zap.String("note_id", note.ID.String()),
		zap.Int("blocks", len(blocks)))
	if dirty {
		e.flusher.Schedule()
	}
	return nil
}

func (e *Engine) installLocked(note models.Note, blocks []*models.Block) bool {
	for _, b := range blocks {
		b.NoteID = note.ID
	}
	seq := document.New(blocks)
	dirty := seq.Len() != len(blocks)
	if seq.Len() == 0 {
		seq.Append(models.NewBlock(e.newID(), note.ID, models.TextBlock, "", e.now()))
		dirty = true
	}
	for i, b := range seq.Blocks() {
		if b.Order != i {
			dirty = true
		}
	}
	seq.Renumber()

	e.note = &note
	e.seq = seq
	e.focus = Focus{BlockID: seq.First().ID}
	e.deleted = make(map[uuid.UUID]struct{})
	e.dirty = dirty
	e.titleDirty = false
	e.status = nil
	return dirty
}

func (e *Engine) detachLocked() {
	e.note = nil
	e.seq = nil
	e.focus = Focus{}
	e.deleted = make(map[uuid.UUID]struct{})
	e.dirty = false
	e.titleDirty = false
	e.status = nil
}

// Flush writes pending changes now instead of waiting for the debounce.
func (e *Engine) Flush(ctx context.Context) error {
	return e.flusher.FlushNow(ctx)
}

// Close flushes pending changes and releases the document. Operations
// issued while the final flush runs fail with ErrNoDocument. When the flush
// fails the document stays loaded with its changes pending.
func (e *Engine) Close(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.releaseLocked(ctx)
}

type attachment struct {
	note   *models.Note
	seq    *document.Sequence
	focus  Focus
	status *FlushStatus
}

// releaseLocked detaches the document and writes what was pending. On a
// failed write the document is attached again. Callers hold writeMu.
func (e *Engine) releaseLocked(ctx context.Context) error {
	e.flusher.Cancel()

	e.mu.Lock()
	batch := e.prepareLocked()
	held := attachment{note: e.note, seq: e.seq, focus: e.focus, status: e.status}
	e.detachLocked()
	e.mu.Unlock()

	if batch == nil {
		return nil
	}
	out := e.write(ctx, batch)
	if out.err == nil {
		return nil
	}

	e.mu.Lock()
	e.note, e.seq, e.focus, e.status = held.note, held.seq, held.focus, held.status
	e.settleLocked(batch, out)
	e.mu.Unlock()
	return out.err
}

// DiscardAfter runs fn with flushes held off and releases the document
// without writing only when fn succeeds. Deleting a note goes through it so
// a failed delete keeps the open document and its pending changes.
func (e *Engine) DiscardAfter(fn func() error) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	e.flusher.Cancel()

	e.mu.Lock()
	e.detachLocked()
	e.mu.Unlock()
	return nil
}

// Pending reports whether a debounced flush is scheduled.
func (e *Engine) Pending() bool {
	return e.flusher.Pending()
}

func (e *Engine) NoteID() (uuid.UUID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note == nil {
		return uuid.Nil, false
	}
	return e.note.ID, true
}

func (e *Engine) Focus() Focus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focus
}

// LastStatus returns the outcome of the latest flush of the current document.
func (e *Engine) LastStatus() (FlushStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == nil {
		return FlushStatus{}, false
	}
	return *e.status, true
}

func (e *Engine) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note == nil {
		return Snapshot{}, ErrNoDocument
	}
	blocks := make([]models.Block, 0, e.seq.Len())
	for _, b := range e.seq.Blocks() {
		blocks = append(blocks, *b.Clone())
	}
	snap := Snapshot{
		Note:     *e.note,
		Blocks:   blocks,
		Ordinals: e.seq.Ordinals(),
		Focus:    e.focus,
	}
	if e.status != nil {
		status := *e.status
		snap.Status = &status
	}
	return snap, nil
}

// PlainText projects the whole document, one block per line, skipping
// blocks without text. This is what AI collaborators receive.
func (e *Engine) PlainText() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note == nil {
		return "", ErrNoDocument
	}
	var lines []string
	for _, b := range e.seq.Blocks() {
		if text := b.PlainText(); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// SetTitle renames the note. It is the only way results from AI
// collaborators re-enter the document.
func (e *Engine) SetTitle(name string) error {
	e.mu.Lock()
	if e.note == nil {
		e.mu.Unlock()
		return ErrNoDocument
	}
	e.note.Name = strings.TrimSpace(name)
	e.note.UpdatedAt = e.now()
	e.titleDirty = true
	e.mu.Unlock()

	e.flusher.Schedule()
	return nil
}

type flushBatch struct {
	noteID    uuid.UUID
	records   []models.BlockRecord
	deletions []uuid.UUID
	title     *string
}

func (e *Engine) flushOnce(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.mu.Lock()
	batch := e.prepareLocked()
	e.mu.Unlock()
	if batch == nil {
		return nil
	}
	out := e.write(ctx, batch)
	e.mu.Lock()
	e.settleLocked(batch, out)
	e.mu.Unlock()
	return out.err
}

// prepareLocked captures everything a flush writes, including the note id,
// and clears the pending state. It returns nil when nothing is pending.
func (e *Engine) prepareLocked() *flushBatch {
	if e.note == nil || (!e.dirty && !e.titleDirty && len(e.deleted) == 0) {
		return nil
	}
	e.seq.Renumber()
	batch := &flushBatch{noteID: e.note.ID}
	if e.dirty {
		batch.records = serializer.Serialize(e.seq.Blocks())
	}
	for id := range e.deleted {
		batch.deletions = append(batch.deletions, id)
	}
	if e.titleDirty {
		name := e.note.Name
		batch.title = &name
	}
	e.dirty = false
	e.titleDirty = false
	e.deleted = make(map[uuid.UUID]struct{})
	return batch
}

type flushOutcome struct {
	status        FlushStatus
	failedDeletes []uuid.UUID
	saveFailed    bool
	titleFailed   bool
	err           error
}

// write performs the storage calls of a batch and reports the outcome. It
// does not touch the in-memory document; see settleLocked.
func (e *Engine) write(ctx context.Context, batch *flushBatch) flushOutcome {
	out := flushOutcome{status: FlushStatus{NoteID: batch.noteID, State: FlushSaved}}
	var errs error

	for _, id := range batch.deletions {
		if err := e.store.DeleteBlock(ctx, id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete block %s: %w", id, err))
			out.failedDeletes = append(out.failedDeletes, id)
			continue
		}
		out.status.Deleted++
	}
	for _, record := range batch.records {
		if err := e.store.SaveBlock(ctx, record); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("save block %s: %w", record.ID, err))
			out.saveFailed = true
			continue
		}
		out.status.Saved++
	}
	if batch.title != nil {
		if titles, ok := e.store.(TitleStorage); ok {
			if err := titles.RenameNote(ctx, batch.noteID, *batch.title); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("rename note: %w", err))
				out.titleFailed = true
			}
		}
	}
	out.status.At = e.now()

	if errs != nil {
		out.status.State = FlushFailed
		out.status.Error = errs.Error()
		out.err = fmt.Errorf("%w: note %s: %v", ErrPersistence, batch.noteID, errs)
	}

	e.reporter.ReportFlush(out.status)

	if errs != nil {
		e.logger.Error("flush failed",
			zap.String("note_id", batch.noteID.String()),
			zap.Error(errs))
		return out
	}
	e.logger.Debug("flush completed",
		zap.String("note_id", batch.noteID.String()),
		zap.Int("saved", out.status.Saved),
		zap.Int("deleted", out.status.Deleted))
	return out
}

// settleLocked records the outcome on the document the batch was taken
// from. In-memory state is never rolled back: what failed to reach storage
// stays pending for the next flush.
func (e *Engine) settleLocked(batch *flushBatch, out flushOutcome) {
	if e.note == nil || e.note.ID != batch.noteID {
		return
	}
	for _, id := range out.failedDeletes {
		if _, live := e.seq.Get(id); !live {
			e.deleted[id] = struct{}{}
		}
	}
	e.dirty = e.dirty || out.saveFailed
	e.titleDirty = e.titleDirty || out.titleFailed
	status := out.status
	e.status = &status
}
