package aqua

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/aquaprotocol/aqua-go/pkg/account"
	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/events"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// OrderStatus is one step of the consumer's ordering flow.
type OrderStatus int

const (
	// OrderPrepared: agreement ID derived, hash signed, nothing sent yet.
	OrderPrepared OrderStatus = iota + 1
	// OrderAgreementSent: the proposal was accepted by the access controller.
	OrderAgreementSent
	// OrderAgreementInitialized: the agreement exists on chain.
	OrderAgreementInitialized
	// OrderLockedPayment: the consumer's payment sits in escrow.
	OrderLockedPayment
	// OrderAccessGranted: the publisher fulfilled the access condition.
	OrderAccessGranted
	// OrderFailed: the flow stopped; the returned error carries the cause.
	OrderFailed
)

var orderStatusNames = map[OrderStatus]string{
	OrderPrepared:             "Prepared",
	OrderAgreementSent:        "AgreementSent",
	OrderAgreementInitialized: "AgreementInitialized",
	OrderLockedPayment:        "LockedPayment",
	OrderAccessGranted:        "AccessGranted",
	OrderFailed:               "Failed",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// ProgressFunc observes order steps as they complete. May be nil.
type ProgressFunc func(status OrderStatus)

// OrderError is the rejection of an Order run. Stage names the step the flow
// was working toward when it stopped; the underlying cause stays reachable
// through Unwrap for the code predicates.
type OrderError struct {
	Stage OrderStatus
	Err   error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order failed at %s: %v", e.Stage, e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }

// Order runs the consumer side of one purchase end to end: propose, wait for
// the on-chain agreement, lock the payment, wait for the access grant. The
// returned agreement ID is the handle for consumption and status queries.
//
// All event waits are registered before the proposal leaves the client; an
// effect that fired before its registration would otherwise never resolve.
// An abort of the access condition while the flow waits for the grant rejects
// the order with an aborted error. The publisher's escrow release is not part
// of this flow; payment release happens publisher-side once the grant lands.
func (a *Assets) Order(ctx context.Context, did ids.DID, serviceIndex int, consumer *account.Account, progress ProgressFunc) (common.Hash, error) {
	if progress == nil {
		progress = func(OrderStatus) {}
	}
	log := a.client.log

	var agreementID common.Hash
	fail := func(stage OrderStatus, err error) (common.Hash, error) {
		progress(OrderFailed)
		log.ComponentError(logging.ComponentAgreement, "order failed",
			zap.String("agreementId", agreementID.Hex()),
			zap.String("stage", stage.String()),
			zap.Error(err),
		)
		return common.Hash{}, &OrderError{Stage: stage, Err: err}
	}

	terms, err := a.client.Agreements.terms(ctx, did, serviceIndex)
	if err != nil {
		return fail(OrderPrepared, err)
	}

	id, signature, err := a.client.Agreements.Prepare(ctx, did, serviceIndex, consumer)
	if err != nil {
		return fail(OrderPrepared, err)
	}
	agreementID = id
	progress(OrderPrepared)

	created := a.client.Events.Once(
		a.client.Template.Address(),
		"AgreementCreated",
		events.Filter{"agreementId": agreementID},
	)
	defer created.Cancel()
	accessGranted := a.client.Events.Once(
		a.client.Conditions.AccessSecretStore.Address(),
		"Fulfilled",
		events.Filter{"agreementId": agreementID},
	)
	defer accessGranted.Cancel()
	accessAborted := a.client.Events.Once(
		a.client.Conditions.AccessSecretStore.Address(),
		"Aborted",
		events.Filter{"agreementId": agreementID},
	)
	defer accessAborted.Cancel()

	if err := a.client.Agreements.Send(ctx, did, agreementID, serviceIndex, signature, consumer.Address()); err != nil {
		return fail(OrderAgreementSent, err)
	}
	progress(OrderAgreementSent)

	if _, err := created.Wait(ctx); err != nil {
		return fail(OrderAgreementInitialized, err)
	}
	progress(OrderAgreementInitialized)

	locked, err := a.client.AgreementsConditions.LockReward(ctx, agreementID, terms.amount, consumer.Address())
	if err != nil {
		return fail(OrderLockedPayment, err)
	}
	if !locked {
		return fail(OrderLockedPayment, errors.New("lock condition did not reach fulfilled state"))
	}
	progress(OrderLockedPayment)

	select {
	case <-accessGranted.C():
	case <-accessAborted.C():
		return fail(OrderAccessGranted, errors.NewAbortedError(agreementID.Hex(), a.client.Conditions.AccessSecretStore.Name()))
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return fail(OrderAccessGranted, errors.NewTimeoutError("access grant wait", ""))
		}
		return fail(OrderAccessGranted, errors.Wrap(ctx.Err(), "access grant wait cancelled"))
	}
	progress(OrderAccessGranted)

	log.ComponentInfo(logging.ComponentAgreement, "order completed",
		zap.String("agreementId", agreementID.Hex()),
		zap.String("did", did.String()),
	)
	return agreementID, nil
}
