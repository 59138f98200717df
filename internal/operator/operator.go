package operator

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
)

// Operator is the worker that processes items from the queue. The
// atomic unit (begin, retry-on-conflict, commit or discard) lives in
// the store drivers; the operator just performs actions in order.
type Operator struct {
	ledger *ledger.Ledger
	queue  chan ActionItem
}

func NewOperator(l *ledger.Ledger, queue chan ActionItem) *Operator {
	return &Operator{
		ledger: l,
		queue:  queue,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

func (o *Operator) processItem(item ActionItem) {
	err := item.action.Perform(item.ctx, o.ledger)
	item.response <- ActionItemResponse{err: err}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
