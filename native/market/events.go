package market

import (
	"encoding/hex"
	"strconv"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/core/events"
)

const (
	EventTypeSaleListed        = "market.sale.listed"
	EventTypeSaleUpdated       = "market.sale.updated"
	EventTypeSaleCancelled     = "market.sale.cancelled"
	EventTypeSaleExpired       = "market.sale.expired"
	EventTypeSaleExpiredRefund = "market.sale.expired_refund"
	EventTypeSaleSold          = "market.sale.sold"

	EventTypeOfferCreated   = "market.offer.created"
	EventTypeOfferCancelled = "market.offer.cancelled"
	EventTypeOfferRejected  = "market.offer.rejected"
	EventTypeOfferAccepted  = "market.offer.accepted"

	EventTypeFeesClaimed            = "market.fees.claimed"
	EventTypeMarketEnabled          = "market.admin.enabled"
	EventTypeMarketDisabled         = "market.admin.disabled"
	EventTypeCollectionRegistered   = "market.admin.collection_registered"
	EventTypeCollectionDeregistered = "market.admin.collection_deregistered"
	EventTypeRewardSystemUpdated    = "market.admin.reward_system_updated"

	EventTypeProfileCreated = "market.profile.created"
	EventTypeProfileUpdated = "market.profile.updated"
	EventTypeProfileLevelUp = "market.profile.level_up"
)

func addrHex(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

// newSaleEvent builds the canonical payload for sale lifecycle events.
func newSaleEvent(eventType string, sale *Sale) *events.Event {
	attrs := make(map[string]string)
	if sale != nil {
		attrs["collection"] = addrHex(sale.Collection)
		attrs["itemId"] = sale.ItemID
		attrs["seller"] = addrHex(sale.Seller)
		attrs["price"] = cloneBigInt(sale.Price).String()
		attrs["denom"] = sale.Denom
		attrs["expiration"] = strconv.FormatInt(sale.Expiration, 10)
	}
	return &events.Event{Type: eventType, Attributes: attrs}
}

// newOfferEvent builds the canonical payload for offer lifecycle events.
func newOfferEvent(eventType string, offer *Offer) *events.Event {
	attrs := make(map[string]string)
	if offer != nil {
		attrs["collection"] = addrHex(offer.Collection)
		attrs["itemId"] = offer.ItemID
		attrs["offerer"] = addrHex(offer.Offerer)
		attrs["amount"] = cloneBigInt(offer.Amount).String()
		attrs["denom"] = offer.Denom
		attrs["expiration"] = strconv.FormatInt(offer.Expiration, 10)
	}
	return &events.Event{Type: eventType, Attributes: attrs}
}

// newTradeEvent builds the payload for a realized purchase, including the
// full fee and royalty breakdown.
func newTradeEvent(eventType string, trade *TradeRecord) *events.Event {
	attrs := make(map[string]string)
	if trade != nil {
		attrs["tradeId"] = trade.ID
		attrs["collection"] = addrHex(trade.Collection)
		attrs["itemId"] = trade.ItemID
		attrs["seller"] = addrHex(trade.Seller)
		attrs["buyer"] = addrHex(trade.Buyer)
		attrs["price"] = cloneBigInt(trade.Price).String()
		attrs["denom"] = trade.Denom
		attrs["fee"] = cloneBigInt(trade.Fee).String()
		attrs["sellerPayout"] = cloneBigInt(trade.SellerPayout).String()
		attrs["royaltyTotal"] = trade.RoyaltyTotal().String()
		for i, royalty := range trade.Royalties {
			idx := strconv.Itoa(i)
			attrs["royaltyRecipient"+idx] = addrHex(royalty.Recipient)
			attrs["royaltyAmount"+idx] = cloneBigInt(royalty.Amount).String()
		}
	}
	return &events.Event{Type: eventType, Attributes: attrs}
}

func newFeesClaimedEvent(treasury [20]byte, claimed []Coin) *events.Event {
	attrs := map[string]string{"treasury": addrHex(treasury)}
	for _, coin := range claimed {
		attrs["claimed."+coin.Denom] = cloneBigInt(coin.Amount).String()
	}
	return &events.Event{Type: EventTypeFeesClaimed, Attributes: attrs}
}

func newEnabledEvent(enabled bool) *events.Event {
	eventType := EventTypeMarketEnabled
	if !enabled {
		eventType = EventTypeMarketDisabled
	}
	return &events.Event{Type: eventType, Attributes: map[string]string{}}
}

func newCollectionEvent(eventType string, collection [20]byte) *events.Event {
	return &events.Event{Type: eventType, Attributes: map[string]string{
		"collection": addrHex(collection),
	}}
}

func newRewardSystemEvent(system *RewardSystem) *events.Event {
	attrs := make(map[string]string)
	if system != nil {
		attrs["token"] = system.TokenDenom
		attrs["rate"] = cloneBigInt(system.Rate).String()
		attrs["tiers"] = strconv.Itoa(len(system.Tiers))
	}
	return &events.Event{Type: EventTypeRewardSystemUpdated, Attributes: attrs}
}

func newProfileEvent(eventType string, profile *Profile) *events.Event {
	attrs := make(map[string]string)
	if profile != nil {
		attrs["address"] = addrHex(profile.Address)
		attrs["level"] = strconv.FormatUint(uint64(profile.Level), 10)
	}
	return &events.Event{Type: eventType, Attributes: attrs}
}

func newLevelUpEvent(profile *Profile, paid Coin) *events.Event {
	evt := newProfileEvent(EventTypeProfileLevelUp, profile)
	evt.Attributes["paidAmount"] = cloneBigInt(paid.Amount).String()
	evt.Attributes["paidDenom"] = paid.Denom
	return evt
}
