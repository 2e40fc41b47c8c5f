package eventpubsub

const (
	OrderFilledEvent    = "OrderFilledEvent"
	OrderCancelledEvent = "OrderCancelledEvent"
	EquitySnapshotEvent = "EquitySnapshotEvent"
)
