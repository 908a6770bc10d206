package aqua

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// AgreementsConditions wraps the condition fulfillment flows with their
// supporting steps: the allowance before a lock, the ID recomputation before
// a release.
type AgreementsConditions struct {
	client *Client
}

// LockReward escrows the payment for one agreement: it approves the lock
// condition to pull the amount and fulfills it. Reports whether the lock
// reached its fulfilled state.
func (c *AgreementsConditions) LockReward(ctx context.Context, agreementID common.Hash, amount *big.Int, consumer common.Address) (bool, error) {
	lock := c.client.Conditions.LockReward
	escrow := c.client.Conditions.EscrowReward

	if _, err := c.client.Token.Approve(ctx, lock.Address(), amount, consumer); err != nil {
		return false, err
	}
	fulfilled, err := lock.Fulfill(ctx, agreementID, escrow.Address(), amount, consumer)
	if err != nil {
		return false, err
	}
	c.client.log.ComponentInfo(logging.ComponentAgreement, "payment locked",
		zap.String("agreementId", agreementID.Hex()),
		zap.String("amount", amount.String()),
	)
	return fulfilled, nil
}

// GrantAccess fulfills the access condition for one agreement. Only the
// document owner's account succeeds.
func (c *AgreementsConditions) GrantAccess(ctx context.Context, agreementID common.Hash, did ids.DID, grantee, from common.Address) (bool, error) {
	return c.client.Conditions.AccessSecretStore.Fulfill(ctx, agreementID, did.Hash(), grantee, from)
}

// ReleaseReward releases the escrowed payment. The lock and release
// condition IDs are recomputed from the agreement parameters; any party with
// the parameters can trigger the release once the dependencies are terminal.
func (c *AgreementsConditions) ReleaseReward(ctx context.Context, agreementID common.Hash, amount *big.Int, did ids.DID, consumer, publisher, from common.Address) (bool, error) {
	accessID, err := c.client.Conditions.AccessSecretStore.GenerateIDHash(agreementID, did.Hash(), consumer)
	if err != nil {
		return false, err
	}
	lockID, err := c.client.Conditions.LockReward.GenerateIDHash(agreementID, c.client.Conditions.EscrowReward.Address(), amount)
	if err != nil {
		return false, err
	}
	return c.client.Conditions.EscrowReward.Fulfill(ctx, agreementID, amount, publisher, consumer, lockID, accessID, from)
}

// AbortAccessByTimeout aborts an expired access condition, opening the
// refund path for the consumer.
func (c *AgreementsConditions) AbortAccessByTimeout(ctx context.Context, agreementID common.Hash, did ids.DID, consumer, from common.Address) error {
	accessID, err := c.client.Conditions.AccessSecretStore.GenerateIDHash(agreementID, did.Hash(), consumer)
	if err != nil {
		return err
	}
	_, err = c.client.Conditions.AccessSecretStore.AbortByTimeout(ctx, accessID, from)
	return err
}
