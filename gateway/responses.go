package gateway

import (
	"encoding/hex"
	"math/big"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

// Monetary amounts serialize as decimal strings so values beyond float64
// precision survive the JSON round trip. Addresses serialize as 0x-prefixed
// hex.

type saleResponse struct {
	Collection string `json:"collection"`
	ItemID     string `json:"itemId"`
	Seller     string `json:"seller"`
	Price      string `json:"price"`
	Denom      string `json:"denom"`
	Expiration int64  `json:"expiration"`
	CreatedAt  int64  `json:"createdAt"`
}

type offerResponse struct {
	Collection string `json:"collection"`
	ItemID     string `json:"itemId"`
	Offerer    string `json:"offerer"`
	Amount     string `json:"amount"`
	Denom      string `json:"denom"`
	Expiration int64  `json:"expiration"`
	CreatedAt  int64  `json:"createdAt"`
}

type collectionStatsResponse struct {
	Collection string `json:"collection"`
	Denom      string `json:"denom"`
	ForSale    uint64 `json:"forSale"`
	Trades     uint64 `json:"trades"`
	Volume     string `json:"volume"`
	Floor      string `json:"floor,omitempty"`
}

type marketStatsResponse struct {
	Denom         string `json:"denom"`
	ForSale       uint64 `json:"forSale"`
	Sales         uint64 `json:"sales"`
	Volume        string `json:"volume"`
	FeesTotal     string `json:"feesTotal"`
	FeesUnclaimed string `json:"feesUnclaimed"`
}

type royaltyResponse struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type tradeResponse struct {
	ID           string            `json:"id"`
	Collection   string            `json:"collection"`
	ItemID       string            `json:"itemId"`
	Seller       string            `json:"seller"`
	Buyer        string            `json:"buyer"`
	Price        string            `json:"price"`
	Denom        string            `json:"denom"`
	Fee          string            `json:"fee"`
	SellerPayout string            `json:"sellerPayout"`
	Royalties    []royaltyResponse `json:"royalties,omitempty"`
	Timestamp    int64             `json:"timestamp"`
	Seq          uint64            `json:"seq"`
}

type denomTotalResponse struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type profileLinkResponse struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type profileResponse struct {
	Address   string                `json:"address"`
	Level     uint32                `json:"level"`
	Buys      []denomTotalResponse  `json:"buys,omitempty"`
	Sells     []denomTotalResponse  `json:"sells,omitempty"`
	Nickname  string                `json:"nickname,omitempty"`
	Bio       string                `json:"bio,omitempty"`
	Avatar    string                `json:"avatar,omitempty"`
	Links     []profileLinkResponse `json:"links,omitempty"`
	CreatedAt int64                 `json:"createdAt"`
}

type collectionVolumeResponse struct {
	Collection string `json:"collection"`
	Volume     string `json:"volume"`
}

type rewardTierResponse struct {
	Level       uint32 `json:"level"`
	Price       string `json:"price"`
	DiscountBps uint32 `json:"discountBps"`
}

type rewardSystemResponse struct {
	TokenDenom  string               `json:"tokenDenom"`
	Rate        string               `json:"rate"`
	Distributed string               `json:"distributed"`
	Tiers       []rewardTierResponse `json:"tiers,omitempty"`
}

type pageResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func bigString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

func newSaleResponse(sale *market.Sale) saleResponse {
	return saleResponse{
		Collection: hexAddr(sale.Collection),
		ItemID:     sale.ItemID,
		Seller:     hexAddr(sale.Seller),
		Price:      bigString(sale.Price),
		Denom:      sale.Denom,
		Expiration: sale.Expiration,
		CreatedAt:  sale.CreatedAt,
	}
}

func newSalePage(sales []*market.Sale, next string) pageResponse[saleResponse] {
	page := pageResponse[saleResponse]{Items: make([]saleResponse, 0, len(sales)), NextCursor: next}
	for _, sale := range sales {
		page.Items = append(page.Items, newSaleResponse(sale))
	}
	return page
}

func newOfferResponse(offer *market.Offer) offerResponse {
	return offerResponse{
		Collection: hexAddr(offer.Collection),
		ItemID:     offer.ItemID,
		Offerer:    hexAddr(offer.Offerer),
		Amount:     bigString(offer.Amount),
		Denom:      offer.Denom,
		Expiration: offer.Expiration,
		CreatedAt:  offer.CreatedAt,
	}
}

func newOfferPage(offers []*market.Offer, next string) pageResponse[offerResponse] {
	page := pageResponse[offerResponse]{Items: make([]offerResponse, 0, len(offers)), NextCursor: next}
	for _, offer := range offers {
		page.Items = append(page.Items, newOfferResponse(offer))
	}
	return page
}

func newCollectionStatsResponse(stats *market.CollectionStats) collectionStatsResponse {
	resp := collectionStatsResponse{
		Collection: hexAddr(stats.Collection),
		Denom:      stats.Denom,
		ForSale:    stats.ForSale,
		Trades:     stats.Trades,
		Volume:     bigString(stats.Volume),
	}
	if stats.HasFloor() {
		resp.Floor = bigString(stats.Floor)
	}
	return resp
}

func newMarketStatsResponse(stats *market.MarketStats) marketStatsResponse {
	return marketStatsResponse{
		Denom:         stats.Denom,
		ForSale:       stats.ForSale,
		Sales:         stats.Sales,
		Volume:        bigString(stats.Volume),
		FeesTotal:     bigString(stats.FeesTotal),
		FeesUnclaimed: bigString(stats.FeesUnclaimed),
	}
}

func newTradeResponse(trade *market.TradeRecord) tradeResponse {
	resp := tradeResponse{
		ID:           trade.ID,
		Collection:   hexAddr(trade.Collection),
		ItemID:       trade.ItemID,
		Seller:       hexAddr(trade.Seller),
		Buyer:        hexAddr(trade.Buyer),
		Price:        bigString(trade.Price),
		Denom:        trade.Denom,
		Fee:          bigString(trade.Fee),
		SellerPayout: bigString(trade.SellerPayout),
		Timestamp:    trade.Timestamp,
		Seq:          trade.Seq,
	}
	for _, royalty := range trade.Royalties {
		resp.Royalties = append(resp.Royalties, royaltyResponse{
			Recipient: hexAddr(royalty.Recipient),
			Amount:    bigString(royalty.Amount),
		})
	}
	return resp
}

func newTradePage(trades []*market.TradeRecord, next string) pageResponse[tradeResponse] {
	page := pageResponse[tradeResponse]{Items: make([]tradeResponse, 0, len(trades)), NextCursor: next}
	for _, trade := range trades {
		page.Items = append(page.Items, newTradeResponse(trade))
	}
	return page
}

func newProfileResponse(profile *market.Profile) profileResponse {
	resp := profileResponse{
		Address:   hexAddr(profile.Address),
		Level:     profile.Level,
		Nickname:  profile.Nickname,
		Bio:       profile.Bio,
		Avatar:    profile.Avatar,
		CreatedAt: profile.CreatedAt,
	}
	for _, total := range profile.Buys {
		resp.Buys = append(resp.Buys, denomTotalResponse{Denom: total.Denom, Amount: bigString(total.Amount)})
	}
	for _, total := range profile.Sells {
		resp.Sells = append(resp.Sells, denomTotalResponse{Denom: total.Denom, Amount: bigString(total.Amount)})
	}
	for _, link := range profile.Links {
		resp.Links = append(resp.Links, profileLinkResponse{Label: link.Label, URL: link.URL})
	}
	return resp
}

func newRewardSystemResponse(system *market.RewardSystem) rewardSystemResponse {
	resp := rewardSystemResponse{
		TokenDenom:  system.TokenDenom,
		Rate:        bigString(system.Rate),
		Distributed: bigString(system.Distributed),
	}
	for _, tier := range system.Tiers {
		resp.Tiers = append(resp.Tiers, rewardTierResponse{
			Level:       tier.Level,
			Price:       bigString(tier.Price),
			DiscountBps: tier.DiscountBps,
		})
	}
	return resp
}
