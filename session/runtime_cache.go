package session

// rebuild materializes the transient Set caches from the prune arrays for
// O(1) membership checks. It is never persisted (§4.C) and is rebuilt
// lazily whenever a prune array was mutated since the last read.
func (p *PrunePlan) rebuild() {
	if !p.stale && p.toolSet != nil {
		return
	}
	p.toolSet = make(map[string]bool, len(p.ToolIDs))
	for _, id := range p.ToolIDs {
		p.toolSet[id] = true
	}
	p.msgSet = make(map[string]bool, len(p.MessagePartIDs))
	for _, id := range p.MessagePartIDs {
		p.msgSet[id] = true
	}
	p.reasoningSet = make(map[string]bool, len(p.ReasoningPartIDs))
	for _, id := range p.ReasoningPartIDs {
		p.reasoningSet[id] = true
	}
	p.stale = false
}

// markStale invalidates the transient caches; the next membership check
// rebuilds them.
func (p *PrunePlan) markStale() { p.stale = true }

// IsToolPruned reports whether callID is in the tool prune list.
func (p *PrunePlan) IsToolPruned(callID string) bool {
	p.rebuild()
	return p.toolSet[callID]
}

// IsMessagePruned reports whether a message part id is in the prune list.
func (p *PrunePlan) IsMessagePruned(partID string) bool {
	p.rebuild()
	return p.msgSet[partID]
}

// IsReasoningPruned reports whether a reasoning part id is in the prune list.
func (p *PrunePlan) IsReasoningPruned(partID string) bool {
	p.rebuild()
	return p.reasoningSet[partID]
}

// AddTool appends callID to the tool prune list if not already present.
// Returns false if it was already pruned (idempotent).
func (p *PrunePlan) AddTool(callID string) bool {
	if p.IsToolPruned(callID) {
		return false
	}
	p.ToolIDs = append(p.ToolIDs, callID)
	p.markStale()
	return true
}

// RemoveTool removes callID from the tool prune list (restore). Returns
// false if it was not present.
func (p *PrunePlan) RemoveTool(callID string) bool {
	for i, id := range p.ToolIDs {
		if id == callID {
			p.ToolIDs = append(p.ToolIDs[:i], p.ToolIDs[i+1:]...)
			p.markStale()
			return true
		}
	}
	return false
}

// AddMessage appends a message part id to the prune list if not present.
func (p *PrunePlan) AddMessage(partID string) bool {
	if p.IsMessagePruned(partID) {
		return false
	}
	p.MessagePartIDs = append(p.MessagePartIDs, partID)
	p.markStale()
	return true
}

// RemoveMessage removes a message part id from the prune list.
func (p *PrunePlan) RemoveMessage(partID string) bool {
	for i, id := range p.MessagePartIDs {
		if id == partID {
			p.MessagePartIDs = append(p.MessagePartIDs[:i], p.MessagePartIDs[i+1:]...)
			p.markStale()
			return true
		}
	}
	return false
}

// AddReasoning appends a reasoning part id to the prune list if not present.
func (p *PrunePlan) AddReasoning(partID string) bool {
	if p.IsReasoningPruned(partID) {
		return false
	}
	p.ReasoningPartIDs = append(p.ReasoningPartIDs, partID)
	p.markStale()
	return true
}

// RemoveReasoning removes a reasoning part id from the prune list.
func (p *PrunePlan) RemoveReasoning(partID string) bool {
	for i, id := range p.ReasoningPartIDs {
		if id == partID {
			p.ReasoningPartIDs = append(p.ReasoningPartIDs[:i], p.ReasoningPartIDs[i+1:]...)
			p.markStale()
			return true
		}
	}
	return false
}
