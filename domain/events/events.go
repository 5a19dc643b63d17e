package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePlayerSignedUp   EventType = "player_signed_up"
	EventTypeBetPlaced        EventType = "bet_placed"
	EventTypeRoundSettled     EventType = "round_settled"
	EventTypeGiftCodeRedeemed EventType = "gift_code_redeemed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PlayerSignedUpEvent represents a new player registration
type PlayerSignedUpEvent struct {
	PlayerID int64
	Username string
	Bonus    int64
}

func (e PlayerSignedUpEvent) Type() EventType {
	return EventTypePlayerSignedUp
}

// BetPlacedEvent represents an accepted bet
type BetPlacedEvent struct {
	BetID    int64
	PlayerID int64
	RoundID  int64
	Amount   int64
	Choice   string
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// RoundSettledEvent represents a completed settlement
type RoundSettledEvent struct {
	RoundID   int64
	Main      []int
	Chance    int
	Pot       int64
	AdminTake int64
	CarryOut  int64
	Winners   int
}

func (e RoundSettledEvent) Type() EventType {
	return EventTypeRoundSettled
}

// GiftCodeRedeemedEvent represents a successful code redemption
type GiftCodeRedeemedEvent struct {
	PlayerID int64
	CodeID   string
	Value    int64
}

func (e GiftCodeRedeemedEvent) Type() EventType {
	return EventTypeGiftCodeRedeemed
}
