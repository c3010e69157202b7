// Package session owns the in-memory session state model of §3: hash
// registries, the tool-parameter cache, the prune plan, cursors, todos,
// stats, and discard history, plus the invariants that every public
// mutation must preserve.
package session

import (
	"time"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
)

// DefaultMaxToolCacheSize is §5's MAX_TOOL_CACHE_SIZE default.
const DefaultMaxToolCacheSize = 1000

// ToolRecord is the metadata cached for a single tool call (§3
// toolParameters entries).
type ToolRecord struct {
	Tool       string
	Parameters any
	Status     string
	Error      string
	Turn       int
	insertSeq  int64 // monotonic insertion order; FIFO eviction itself walks toolOrder
}

// TodoStatus is the lifecycle state of a todo item.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
	TodoCancelled  TodoStatus = "cancelled"
)

// Todo is a single tracked todo-list item.
type Todo struct {
	ID              string
	Content         string
	Status          TodoStatus
	Priority        string
	InProgressSince *int // turn number, nil when not in_progress
}

// PrunePlan is the session-local set of lists/replacements that define what
// the view assembler hides, replaces, or edits (§3 "prune").
type PrunePlan struct {
	ToolIDs        []string
	MessagePartIDs []string
	ReasoningPartIDs []string
	SegmentIDs     []string
	Replacements   []ReplacementEntry

	toolSet      map[string]bool // transient runtime cache, never persisted
	msgSet       map[string]bool
	reasoningSet map[string]bool
	stale        bool
}

// ReplacementEntry is one applied pattern-replacement match (§4.G).
type ReplacementEntry struct {
	MessageID      string
	PartIndex      int
	StartIndex     int
	EndIndex       int
	Replacement    string
	OriginalLength int
}

// HashRegistry holds the three bidirectional hash<->id maps of §3.
type HashRegistry struct {
	CallsToHash map[string]string // callId -> hash
	HashToCalls map[string]string // hash -> callId

	MessageHashToPartID map[string]string // hash -> "msgId:index"
	PartIDToMessageHash map[string]string

	ReasoningHashToPartID map[string]string
	PartIDToReasoningHash map[string]string
}

func newHashRegistry() *HashRegistry {
	return &HashRegistry{
		CallsToHash:           make(map[string]string),
		HashToCalls:           make(map[string]string),
		MessageHashToPartID:   make(map[string]string),
		PartIDToMessageHash:   make(map[string]string),
		ReasoningHashToPartID: make(map[string]string),
		PartIDToReasoningHash: make(map[string]string),
	}
}

func (r *HashRegistry) HasToolHash(hash string) bool      { _, ok := r.HashToCalls[hash]; return ok }
func (r *HashRegistry) HasMessageHash(hash string) bool   { _, ok := r.MessageHashToPartID[hash]; return ok }
func (r *HashRegistry) HasReasoningHash(hash string) bool { _, ok := r.ReasoningHashToPartID[hash]; return ok }

var _ hashing.Lookup = (*HashRegistry)(nil)

// Cursors tracks the positional bookkeeping used by auto-supersede rules
// and todo tracking (§3 "cursors").
type Cursors struct {
	// TodoLastWriteCallID is the most recent completed todowrite/todoread
	// call id seen by the auto-supersede cascade's Todo rule (§4.D), used to
	// decide what the next such call supersedes.
	TodoLastWriteCallID string
	// TodoLastParsedCallID is the todowrite call id whose output was last
	// parsed into state.Todos (§4.D step 2's "differs from
	// cursors.todo.lastWriteCallId" gate), tracked separately from
	// TodoLastWriteCallID since a todoread can advance the latter without
	// there being new todowrite output to reparse.
	TodoLastParsedCallID  string
	TodoLastReminderTurn  int
	Files                 map[string]map[string]bool // filePath -> set<callId>
	URLs                  map[string]map[string]bool
	StateQueries          map[string]map[string]bool
	SnapshotAllCallIDs    map[string]bool
	SnapshotLatestCallID  string
	// RetryPending maps "tool|hash" to the ordered list of failed call ids
	// awaiting a successful outcome of the same (tool, hash).
	RetryPending map[string][]string
}

func newCursors() *Cursors {
	return &Cursors{
		Files:              make(map[string]map[string]bool),
		URLs:               make(map[string]map[string]bool),
		StateQueries:       make(map[string]map[string]bool),
		SnapshotAllCallIDs: make(map[string]bool),
		RetryPending:       make(map[string][]string),
	}
}

// Stats tracks running counts and token totals per strategy (§3 "stats").
type Stats struct {
	AutoSupersede struct {
		Hash, File, Todo, URL, StateQuery, Snapshot, Retry CounterStat
	}
	Deduplication  CounterStat
	PurgeErrors    CounterStat
	Truncation     CounterStat
	ManualDiscard  struct {
		Tool, Message, Thinking CounterStat
	}
	Distillation CounterStat
}

// CounterStat is a count plus an estimated token-savings total.
type CounterStat struct {
	Count        int
	TokensSaved  int
}

// Add accumulates n occurrences saving tokens tokens.
func (c *CounterStat) Add(n, tokens int) {
	c.Count += n
	c.TokensSaved += tokens
}

// DiscardEntry is one append-only audit-log record (§3 "discardHistory").
type DiscardEntry struct {
	Timestamp   time.Time
	Hashes      []string
	TokensSaved int
	Reason      string
}

// State is the full per-session model of §3.
type State struct {
	SessionID   string
	CurrentTurn int

	Hashes *HashRegistry

	ToolParameters map[string]*ToolRecord // callId -> record
	toolOrder      []string                // FIFO insertion order for eviction
	insertSeq      int64

	Prune *PrunePlan

	Cursors *Cursors

	Todos []Todo

	Stats Stats

	DiscardHistory []DiscardEntry

	LastCompaction time.Time

	MaxToolCacheSize int

	// Forgotten marks call ids pruned with fullyForget=true. Restore on a
	// forgotten call id errors rather than no-ops (Open Question iii).
	Forgotten map[string]bool

	// Distilled marks call/part ids whose prune entry carries a distill
	// summary rather than a plain discard (§4.F "Distill").
	Distilled map[string]string // id -> summary

	// InputStripped marks tool call ids pruned by the Purge-errors strategy
	// (§4.E): still in prune.ToolIDs, but the view assembler renders them
	// with their error message intact and only the input elided, rather
	// than a full discard placeholder.
	InputStripped map[string]bool
}

// New constructs an empty State for sessionID.
func New(sessionID string) *State {
	return &State{
		SessionID:        sessionID,
		Hashes:           newHashRegistry(),
		ToolParameters:   make(map[string]*ToolRecord),
		Prune:            &PrunePlan{stale: true},
		Cursors:          newCursors(),
		MaxToolCacheSize: DefaultMaxToolCacheSize,
		Forgotten:        make(map[string]bool),
		Distilled:        make(map[string]string),
		InputStripped:    make(map[string]bool),
	}
}
