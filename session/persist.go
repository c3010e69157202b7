package session

import (
	"encoding/json"
	"sort"
)

// taggedMap renders a map[string]V as
// {"__type":"Map","entries":[{"k":k,"v":v},...]}
// so that readers can restore it losslessly (§6 "Persisted state layout"),
// and so two serializations of the same map are byte-identical (entries are
// emitted in sorted key order).
type taggedMap[V any] map[string]V

func (m taggedMap[V]) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	type entry struct {
		K string `json:"k"`
		V V      `json:"v"`
	}
	out := struct {
		Type    string  `json:"__type"`
		Entries []entry `json:"entries"`
	}{Type: "Map", Entries: make([]entry, 0, len(keys))}
	for _, k := range keys {
		out.Entries = append(out.Entries, entry{K: k, V: m[k]})
	}
	return json.Marshal(out)
}

func (m *taggedMap[V]) UnmarshalJSON(data []byte) error {
	var in struct {
		Entries []struct {
			K string `json:"k"`
			V V      `json:"v"`
		} `json:"entries"`
	}
	// Readers must tolerate unknown fields (§6), so we only decode what we
	// need rather than validating __type strictly.
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(taggedMap[V], len(in.Entries))
	for _, e := range in.Entries {
		out[e.K] = e.V
	}
	*m = out
	return nil
}

// taggedSet renders a set (map[string]bool where true means present) as
// {"__type":"Set","values":[...]}, sorted for deterministic output.
type taggedSet map[string]bool

func (s taggedSet) MarshalJSON() ([]byte, error) {
	values := make([]string, 0, len(s))
	for k, present := range s {
		if present {
			values = append(values, k)
		}
	}
	sort.Strings(values)
	out := struct {
		Type   string   `json:"__type"`
		Values []string `json:"values"`
	}{Type: "Set", Values: values}
	return json.Marshal(out)
}

func (s *taggedSet) UnmarshalJSON(data []byte) error {
	var in struct {
		Values []string `json:"values"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(taggedSet, len(in.Values))
	for _, v := range in.Values {
		out[v] = true
	}
	*s = out
	return nil
}

// doc is the full persisted shape of a State, matching §6's layout: one
// JSON document per session with Map/Set-tagged fields.
type doc struct {
	SessionID   string `json:"sessionId"`
	CurrentTurn int    `json:"currentTurn"`

	CallsToHash taggedMap[string] `json:"callsToHash"`
	HashToCalls taggedMap[string] `json:"hashToCalls"`

	MessageHashToPartID taggedMap[string] `json:"messageHashToPartId"`
	PartIDToMessageHash taggedMap[string] `json:"partIdToMessageHash"`

	ReasoningHashToPartID taggedMap[string] `json:"reasoningHashToPartId"`
	PartIDToReasoningHash taggedMap[string] `json:"partIdToReasoningHash"`

	ToolParameters taggedMap[toolRecordDoc] `json:"toolParameters"`
	ToolOrder      []string                 `json:"toolOrder"`

	PruneToolIDs        []string           `json:"pruneToolIds"`
	PruneMessagePartIDs []string           `json:"pruneMessagePartIds"`
	PruneReasoningPartIDs []string         `json:"pruneReasoningPartIds"`
	PruneReplacements   []ReplacementEntry `json:"pruneReplacements"`

	TodoLastWriteCallID  string                       `json:"todoLastWriteCallId"`
	TodoLastParsedCallID string                       `json:"todoLastParsedCallId"`
	TodoLastReminderTurn int                          `json:"todoLastReminderTurn"`
	Files                taggedMap[taggedSet]         `json:"files"`
	URLs                 taggedMap[taggedSet]         `json:"urls"`
	StateQueries         taggedMap[taggedSet]         `json:"stateQueries"`
	SnapshotAllCallIDs   taggedSet                    `json:"snapshotAllCallIds"`
	SnapshotLatestCallID string                       `json:"snapshotLatestCallId"`
	RetryPending         taggedMap[[]string]          `json:"retryPending"`

	Todos []Todo `json:"todos"`

	Stats Stats `json:"stats"`

	DiscardHistory []DiscardEntry `json:"discardHistory"`

	LastCompactionUnixMilli int64 `json:"lastCompactionUnixMilli"`

	MaxToolCacheSize int `json:"maxToolCacheSize"`

	Forgotten     taggedSet         `json:"forgotten"`
	Distilled     taggedMap[string] `json:"distilled"`
	InputStripped taggedSet         `json:"inputStripped"`
}

type toolRecordDoc struct {
	Tool       string `json:"tool"`
	Parameters any    `json:"parameters"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Turn       int    `json:"turn"`
}

// Marshal serializes the full state to the §6 persisted layout.
func (s *State) Marshal() ([]byte, error) {
	return json.Marshal(s.toDoc())
}

// Unmarshal restores a State from the §6 persisted layout, tolerating
// unknown fields for forward compatibility.
func Unmarshal(data []byte) (*State, error) {
	var d doc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return fromDoc(d), nil
}

func (s *State) toDoc() doc {
	toolParams := make(taggedMap[toolRecordDoc], len(s.ToolParameters))
	for id, rec := range s.ToolParameters {
		toolParams[id] = toolRecordDoc{
			Tool: rec.Tool, Parameters: rec.Parameters,
			Status: rec.Status, Error: rec.Error, Turn: rec.Turn,
		}
	}
	files := make(taggedMap[taggedSet], len(s.Cursors.Files))
	for k, v := range s.Cursors.Files {
		files[k] = taggedSet(v)
	}
	urls := make(taggedMap[taggedSet], len(s.Cursors.URLs))
	for k, v := range s.Cursors.URLs {
		urls[k] = taggedSet(v)
	}
	sq := make(taggedMap[taggedSet], len(s.Cursors.StateQueries))
	for k, v := range s.Cursors.StateQueries {
		sq[k] = taggedSet(v)
	}
	retry := make(taggedMap[[]string], len(s.Cursors.RetryPending))
	for k, v := range s.Cursors.RetryPending {
		retry[k] = v
	}

	return doc{
		SessionID:             s.SessionID,
		CurrentTurn:           s.CurrentTurn,
		CallsToHash:           taggedMap[string](s.Hashes.CallsToHash),
		HashToCalls:           taggedMap[string](s.Hashes.HashToCalls),
		MessageHashToPartID:   taggedMap[string](s.Hashes.MessageHashToPartID),
		PartIDToMessageHash:   taggedMap[string](s.Hashes.PartIDToMessageHash),
		ReasoningHashToPartID: taggedMap[string](s.Hashes.ReasoningHashToPartID),
		PartIDToReasoningHash: taggedMap[string](s.Hashes.PartIDToReasoningHash),
		ToolParameters:        toolParams,
		ToolOrder:             append([]string(nil), s.toolOrder...),
		PruneToolIDs:          append([]string(nil), s.Prune.ToolIDs...),
		PruneMessagePartIDs:   append([]string(nil), s.Prune.MessagePartIDs...),
		PruneReasoningPartIDs: append([]string(nil), s.Prune.ReasoningPartIDs...),
		PruneReplacements:     append([]ReplacementEntry(nil), s.Prune.Replacements...),
		TodoLastWriteCallID:   s.Cursors.TodoLastWriteCallID,
		TodoLastParsedCallID:  s.Cursors.TodoLastParsedCallID,
		TodoLastReminderTurn:  s.Cursors.TodoLastReminderTurn,
		Files:                 files,
		URLs:                  urls,
		StateQueries:          sq,
		SnapshotAllCallIDs:    taggedSet(s.Cursors.SnapshotAllCallIDs),
		SnapshotLatestCallID:  s.Cursors.SnapshotLatestCallID,
		RetryPending:          retry,
		Todos:                 append([]Todo(nil), s.Todos...),
		Stats:                 s.Stats,
		DiscardHistory:        append([]DiscardEntry(nil), s.DiscardHistory...),
		LastCompactionUnixMilli: s.LastCompaction.UnixMilli(),
		MaxToolCacheSize:      s.MaxToolCacheSize,
		Forgotten:             taggedSet(s.Forgotten),
		Distilled:             taggedMap[string](s.Distilled),
		InputStripped:         taggedSet(s.InputStripped),
	}
}

func fromDoc(d doc) *State {
	s := New(d.SessionID)
	s.CurrentTurn = d.CurrentTurn
	s.Hashes.CallsToHash = map[string]string(d.CallsToHash)
	s.Hashes.HashToCalls = map[string]string(d.HashToCalls)
	s.Hashes.MessageHashToPartID = map[string]string(d.MessageHashToPartID)
	s.Hashes.PartIDToMessageHash = map[string]string(d.PartIDToMessageHash)
	s.Hashes.ReasoningHashToPartID = map[string]string(d.ReasoningHashToPartID)
	s.Hashes.PartIDToReasoningHash = map[string]string(d.PartIDToReasoningHash)

	for id, rec := range d.ToolParameters {
		s.ToolParameters[id] = &ToolRecord{
			Tool: rec.Tool, Parameters: rec.Parameters,
			Status: rec.Status, Error: rec.Error, Turn: rec.Turn,
		}
	}
	s.toolOrder = append([]string(nil), d.ToolOrder...)

	s.Prune.ToolIDs = append([]string(nil), d.PruneToolIDs...)
	s.Prune.MessagePartIDs = append([]string(nil), d.PruneMessagePartIDs...)
	s.Prune.ReasoningPartIDs = append([]string(nil), d.PruneReasoningPartIDs...)
	s.Prune.Replacements = append([]ReplacementEntry(nil), d.PruneReplacements...)
	s.Prune.markStale()

	s.Cursors.TodoLastWriteCallID = d.TodoLastWriteCallID
	s.Cursors.TodoLastParsedCallID = d.TodoLastParsedCallID
	s.Cursors.TodoLastReminderTurn = d.TodoLastReminderTurn
	for k, v := range d.Files {
		s.Cursors.Files[k] = map[string]bool(v)
	}
	for k, v := range d.URLs {
		s.Cursors.URLs[k] = map[string]bool(v)
	}
	for k, v := range d.StateQueries {
		s.Cursors.StateQueries[k] = map[string]bool(v)
	}
	s.Cursors.SnapshotAllCallIDs = map[string]bool(d.SnapshotAllCallIDs)
	s.Cursors.SnapshotLatestCallID = d.SnapshotLatestCallID
	for k, v := range d.RetryPending {
		s.Cursors.RetryPending[k] = v
	}

	s.Todos = append([]Todo(nil), d.Todos...)
	s.Stats = d.Stats
	s.DiscardHistory = append([]DiscardEntry(nil), d.DiscardHistory...)
	if d.LastCompactionUnixMilli > 0 {
		s.LastCompaction = unixMilliToTime(d.LastCompactionUnixMilli)
	}
	if d.MaxToolCacheSize > 0 {
		s.MaxToolCacheSize = d.MaxToolCacheSize
	}
	s.Forgotten = map[string]bool(d.Forgotten)
	s.Distilled = map[string]string(d.Distilled)
	s.InputStripped = map[string]bool(d.InputStripped)
	return s
}
