package market

import "math/big"

// MsgList carries the payload of a listing call. The same shape backs
// UpdateSale since an update is an atomic cancel+relist.
type MsgList struct {
	Collection [20]byte
	ItemID     string
	Price      *big.Int
	Denom      string
	Expiration int64
}

// MsgBuy identifies the sale being purchased. The payment accompanies the
// call as a fund attachment.
type MsgBuy struct {
	Collection [20]byte
	ItemID     string
}

// MsgCancel identifies the sale being cancelled.
type MsgCancel struct {
	Collection [20]byte
	ItemID     string
}

// MsgOffer carries the payload of an off-list offer. The escrowed value
// accompanies the call as a fund attachment matching Amount and Denom.
type MsgOffer struct {
	Collection [20]byte
	ItemID     string
	Amount     *big.Int
	Denom      string
	Expiration int64
}

// MsgCancelOffer identifies the offer being withdrawn by its full store key.
// Offerer must match the caller: only the address that recorded an offer may
// withdraw its escrow.
type MsgCancelOffer struct {
	Collection [20]byte
	ItemID     string
	Offerer    [20]byte
}

// MsgAnswerOffer carries the owner's answer to an offer. Accept on an
// already-expired offer degrades to a rejection, not an error.
type MsgAnswerOffer struct {
	Collection [20]byte
	ItemID     string
	Offerer    [20]byte
	Accept     bool
	Note       string
}
