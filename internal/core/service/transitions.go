package service

import "github.com/rl1809/inventory-bot/internal/core/domain"

// flows lists the ordered states each action walks through. The state after
// the last entry is StateDone, reached by the single store mutation of the
// flow. The start flow ends in StateIdle instead.
var flows = map[domain.Action][]domain.State{
	domain.ActionStart:  {domain.StateAwaitingPassword, domain.StateIdle},
	domain.ActionAdd:    {domain.StateSelectingItem, domain.StateEnteringQuantity},
	domain.ActionAddNew: {domain.StateEnteringName, domain.StateEnteringQuantity, domain.StateEnteringAlarmLimit},
	domain.ActionSell:   {domain.StateSelectingItem, domain.StateEnteringQuantity},
	domain.ActionLimit:  {domain.StateSelectingItem, domain.StateEnteringAlarmLimit},
	domain.ActionRemove: {domain.StateSelectingItem},
}

func entryState(action domain.Action) domain.State {
	steps, ok := flows[action]
	if !ok || len(steps) == 0 {
		return domain.StateIdle
	}
	return steps[0]
}

func nextState(action domain.Action, current domain.State) domain.State {
	steps := flows[action]
	for i, st := range steps {
		if st == current && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return domain.StateDone
}
