package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/stellar/go/support/log"

	"github.com/stellar/anchor-platform-backend/internal/data"
	"github.com/stellar/anchor-platform-backend/internal/monitor"
	"github.com/stellar/anchor-platform-backend/internal/services"
	"github.com/stellar/anchor-platform-backend/internal/stellar"
)

// ActionHandler implements the semantics of one action method. The dispatcher
// owns the invocation pipeline; handlers only contribute the per-action
// pieces: which transactions they accept, how to validate the request against
// the transaction, which status comes next, and how to mutate the row.
type ActionHandler interface {
	ActionType() ActionMethod
	SupportedProtocols() []data.Protocol
	SupportedStatuses(txn *data.Transaction) []data.SepTransactionStatus
	NewRequest() ActionRequest
	Validate(ctx context.Context, txn *data.Transaction, req ActionRequest) error
	NextStatus(ctx context.Context, txn *data.Transaction, req ActionRequest) (data.SepTransactionStatus, error)
	Mutate(ctx context.Context, txn *data.Transaction, req ActionRequest) error
}

// Dispatcher routes action invocations to their handlers and runs the shared
// pipeline around them: structural validation, protocol and status gating,
// state-machine enforcement, persistence and projection.
type Dispatcher struct {
	resolver       *data.TransactionResolver
	monitorService monitor.MonitorServiceInterface
	handlers       map[ActionMethod]ActionHandler
}

func NewDispatcher(
	resolver *data.TransactionResolver,
	assetService services.AssetService,
	horizonService stellar.HorizonService,
	monitorService monitor.MonitorServiceInterface,
) (*Dispatcher, error) {
	validator := &amountValidator{assetService: assetService}

	handlers := []ActionHandler{
		&notifyInteractiveFlowCompletedHandler{validator: validator},
		&notifyOnchainFundsReceivedHandler{validator: validator, horizonService: horizonService},
		&notifyRefundInitiatedHandler{validator: validator},
		&notifyRefundSentHandler{validator: validator},
		&notifyTransactionExpiredHandler{},
		&notifyTransactionErrorHandler{},
	}

	handlerMap := make(map[ActionMethod]ActionHandler, len(handlers))
	for _, h := range handlers {
		if err := h.ActionType().Validate(); err != nil {
			return nil, fmt.Errorf("registering handler: %w", err)
		}
		if _, exists := handlerMap[h.ActionType()]; exists {
			return nil, fmt.Errorf("duplicate handler for action %q", h.ActionType())
		}
		handlerMap[h.ActionType()] = h
	}

	return &Dispatcher{
		resolver:       resolver,
		monitorService: monitorService,
		handlers:       handlerMap,
	}, nil
}

// Handle runs one action invocation end to end and returns the public
// projection of the transaction after the mutation, or the dispatcher error
// describing why the invocation was rejected. Errors never leave the
// transaction partially mutated: the row is only saved after the whole
// pipeline succeeded.
func (d *Dispatcher) Handle(ctx context.Context, method string, params json.RawMessage) (*GetTransactionResponse, *Error) {
	started := time.Now()
	resp, rpcErr := d.handle(ctx, method, params)
	d.recordMetrics(ctx, method, started, rpcErr)
	return resp, rpcErr
}

func (d *Dispatcher) handle(ctx context.Context, method string, params json.RawMessage) (*GetTransactionResponse, *Error) {
	handler, ok := d.handlers[ActionMethod(method)]
	if !ok {
		return nil, InvalidRequest(fmt.Sprintf("Action[%s] is not supported", method))
	}

	req := handler.NewRequest()
	if len(params) > 0 {
		decoder := json.NewDecoder(bytes.NewReader(params))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(req); err != nil {
			return nil, InvalidParams(fmt.Sprintf("invalid params: %s", err))
		}
	}

	// The lookup comes first: a request naming a transaction that does not
	// exist is answered with not-found even when it is otherwise malformed.
	txn, err := d.resolver.Lookup(ctx, req.GetTransactionID())
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			return nil, TransactionNotFound(req.GetTransactionID())
		}
		return nil, InternalError(ctx, "", fmt.Errorf("looking up transaction %s: %w", req.GetTransactionID(), err))
	}

	if err = req.Validate(); err != nil {
		return nil, AsError(ctx, err)
	}

	if !slices.Contains(handler.SupportedProtocols(), txn.Protocol) ||
		!slices.Contains(handler.SupportedStatuses(txn), txn.Status) {
		return nil, InvalidRequest(unsupportedActionMessage(handler.ActionType(), txn))
	}

	if err = handler.Validate(ctx, txn, req); err != nil {
		return nil, AsError(ctx, err)
	}

	nextStatus, err := handler.NextStatus(ctx, txn, req)
	if err != nil {
		return nil, AsError(ctx, err)
	}

	// The state machine is the last line of defense: a handler returning a
	// target the table does not allow is a programming error, not an operator
	// mistake.
	if err = txn.Status.TransitionTo(nextStatus); err != nil {
		return nil, InternalError(ctx, "", fmt.Errorf("transitioning transaction %s: %w", txn.ID, err))
	}

	if err = handler.Mutate(ctx, txn, req); err != nil {
		return nil, AsError(ctx, err)
	}

	if msg := req.GetMessage(); msg != "" {
		txn.Message = &msg
	}
	txn.Status = nextStatus
	if nextStatus == data.StatusCompleted || nextStatus == data.StatusRefunded {
		completedAt := time.Now().UTC()
		txn.CompletedAt = &completedAt
	}

	if err = d.resolver.Save(ctx, txn); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			return nil, TransactionNotFound(txn.ID)
		}
		return nil, InternalError(ctx, "", fmt.Errorf("saving transaction %s: %w", txn.ID, err))
	}

	log.Ctx(ctx).Infof("action %s moved transaction %s to status %s", method, txn.ID, txn.Status)
	return NewGetTransactionResponse(txn), nil
}

// unsupportedActionMessage is the single gate error template so rejected
// invocations are distinguishable only by the transaction coordinates, not by
// which gate fired.
func unsupportedActionMessage(action ActionMethod, txn *data.Transaction) string {
	return fmt.Sprintf("Action[%s] is not supported for status[%s], kind[%s] and protocol[%s]",
		action, txn.Status, txn.Kind, txn.Protocol)
}

func (d *Dispatcher) recordMetrics(ctx context.Context, method string, started time.Time, rpcErr *Error) {
	if d.monitorService == nil {
		return
	}

	outcome := "ok"
	if rpcErr != nil {
		outcome = fmt.Sprintf("error_%d", rpcErr.Code)
	}
	labels := monitor.RPCRequestLabels{Method: method, Outcome: outcome}
	if err := d.monitorService.MonitorRPCRequest(time.Since(started), labels); err != nil {
		log.Ctx(ctx).Errorf("recording rpc metrics: %v", err)
	}
}
