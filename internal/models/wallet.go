package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Вид операции кошелька.
const (
	TxKindCredit = "credit"
	TxKindDebit  = "debit"
)

// Способ проведения операции.
const (
	TxMethodWallet = "wallet"
	TxMethodBkash  = "bkash"
	TxMethodDev    = "dev"
)

// Состояние операции кошелька. Допустимые переходы:
// initiated -> gateway_pending -> credited|failed; initiated -> failed;
// credited терминально и идемпотентно при повторной доставке callback.
// completed используется для операций, применяемых сразу (debit из кошелька, dev-пополнение).
const (
	TxStateInitiated      = "initiated"
	TxStateGatewayPending = "gateway_pending"
	TxStateCredited       = "credited"
	TxStateFailed         = "failed"
	TxStateCompleted      = "completed"
)

// WalletTransaction запись журнала операций кошелька. Журнал только пополняется,
// записи никогда не удаляются; Amount всегда положительный, знак задаётся полем Kind.
type WalletTransaction struct {
	TxID       int64           `json:"tx_id"`
	UserID     int64           `json:"user_id"`
	Kind       string          `json:"kind"`   // credit или debit
	Method     string          `json:"method"` // wallet, bkash или dev
	Amount     decimal.Decimal `json:"amount"`
	State      string          `json:"state"`
	GatewayRef *string         `json:"gateway_ref"` // paymentID шлюза, уникален; ключ идемпотентности
	Note       *string         `json:"note"`        // справочная пометка, в инвариантах не участвует
	CreatedAt  time.Time       `json:"created_at"`
}

// TopupRequest тело запроса на инициацию пополнения кошелька.
type TopupRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
