package event

type Type string

const (
	OrderCreated          Type = "ORDER_CREATED"
	OrderSettled          Type = "ORDER_SETTLED"
	OrderSettlementFailed Type = "ORDER_SETTLEMENT_FAILED"
	OrderCompleted        Type = "ORDER_COMPLETED"
	OrderFailed           Type = "ORDER_FAILED"
)

type Event struct {
	Type    Type
	Payload any
}
