package state

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

// Stored record shapes. RLP has no signed integers, so timestamps are stored
// as uint64 and converted at the boundary; they are never negative in
// practice.

type saleRecord struct {
	Collection [20]byte
	ItemID     string
	Seller     [20]byte
	Price      *big.Int
	Denom      string
	Expiration uint64
	CreatedAt  uint64
}

func encodeSale(sale *market.Sale) ([]byte, error) {
	return rlp.EncodeToBytes(&saleRecord{
		Collection: sale.Collection,
		ItemID:     sale.ItemID,
		Seller:     sale.Seller,
		Price:      sale.Price,
		Denom:      sale.Denom,
		Expiration: uint64(sale.Expiration),
		CreatedAt:  uint64(sale.CreatedAt),
	})
}

func decodeSale(data []byte) (*market.Sale, error) {
	rec := new(saleRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, err
	}
	return &market.Sale{
		Collection: rec.Collection,
		ItemID:     rec.ItemID,
		Seller:     rec.Seller,
		Price:      rec.Price,
		Denom:      rec.Denom,
		Expiration: int64(rec.Expiration),
		CreatedAt:  int64(rec.CreatedAt),
	}, nil
}

type offerRecord struct {
	Collection [20]byte
	ItemID     string
	Offerer    [20]byte
	Amount     *big.Int
	Denom      string
	Expiration uint64
	CreatedAt  uint64
}

func encodeOffer(offer *market.Offer) ([]byte, error) {
	return rlp.EncodeToBytes(&offerRecord{
		Collection: offer.Collection,
		ItemID:     offer.ItemID,
		Offerer:    offer.Offerer,
		Amount:     offer.Amount,
		Denom:      offer.Denom,
		Expiration: uint64(offer.Expiration),
		CreatedAt:  uint64(offer.CreatedAt),
	})
}

func decodeOffer(data []byte) (*market.Offer, error) {
	rec := new(offerRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, err
	}
	return &market.Offer{
		Collection: rec.Collection,
		ItemID:     rec.ItemID,
		Offerer:    rec.Offerer,
		Amount:     rec.Amount,
		Denom:      rec.Denom,
		Expiration: int64(rec.Expiration),
		CreatedAt:  int64(rec.CreatedAt),
	}, nil
}

type collStatsRecord struct {
	Collection [20]byte
	Denom      string
	ForSale    uint64
	Trades     uint64
	Volume     *big.Int
	Floor      *big.Int
}

func encodeCollStats(stats *market.CollectionStats) ([]byte, error) {
	stats = stats.Clone().Normalize()
	return rlp.EncodeToBytes(&collStatsRecord{
		Collection: stats.Collection,
		Denom:      stats.Denom,
		ForSale:    stats.ForSale,
		Trades:     stats.Trades,
		Volume:     stats.Volume,
		Floor:      stats.Floor,
	})
}

func decodeCollStats(data []byte) (*market.CollectionStats, error) {
	rec := new(collStatsRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, err
	}
	stats := &market.CollectionStats{
		Collection: rec.Collection,
		Denom:      rec.Denom,
		ForSale:    rec.ForSale,
		Trades:     rec.Trades,
		Volume:     rec.Volume,
		Floor:      rec.Floor,
	}
	return stats.Normalize(), nil
}

type marketStatsRecord struct {
	Denom         string
	ForSale       uint64
	Sales         uint64
	Volume        *big.Int
	FeesTotal     *big.Int
	FeesUnclaimed *big.Int
}

func encodeMarketStats(stats *market.MarketStats) ([]byte, error) {
	stats = stats.Clone().Normalize()
	return rlp.EncodeToBytes(&marketStatsRecord{
		Denom:         stats.Denom,
		ForSale:       stats.ForSale,
		Sales:         stats.Sales,
		Volume:        stats.Volume,
		FeesTotal:     stats.FeesTotal,
		FeesUnclaimed: stats.FeesUnclaimed,
	})
}

func decodeMarketStats(data []byte) (*market.MarketStats, error) {
	rec := new(marketStatsRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, err
	}
	stats := &market.MarketStats{
		Denom:         rec.Denom,
		ForSale:       rec.ForSale,
		Sales:         rec.Sales,
		Volume:        rec.Volume,
		FeesTotal:     rec.FeesTotal,
		FeesUnclaimed: rec.FeesUnclaimed,
	}
	return stats.Normalize(), nil
}

type denomTotalRecord struct {
	Denom  string
	Amount *big.Int
}

type profileLinkRecord struct {
	Label string
	URL   string
}

type profileRecord struct {
	Address   [20]byte
	Level     uint32
	Buys      []denomTotalRecord
	Sells     []denomTotalRecord
	Nickname  string
	Bio       string
	Avatar    string
	Links     []profileLinkRecord
	CreatedAt uint64
}

func encodeProfile(profile *market.Profile) ([]byte, error) {
	rec := &profileRecord{
		Address:   profile.Address,
		Level:     profile.Level,
		Nickname:  profile.Nickname,
		Bio:       profile.Bio,
		Avatar:    profile.Avatar,
		CreatedAt: uint64(profile.CreatedAt),
	}
	for _, t := range profile.Buys {
		rec.Buys = append(rec.Buys, denomTotalRecord{Denom: t.Denom, Amount: t.Amount})
	}
	for _, t := range profile.Sells {
		rec.Sells = append(rec.Sells, denomTotalRecord{Denom: t.Denom, Amount: t.Amount})
	}
	for _, l := range profile.Links {
		rec.Links = append(rec.Links, profileLinkRecord{Label: l.Label, URL: l.URL})
	}
	return rlp.EncodeToBytes(rec)
}

func decodeProfile(data []byte) (*market.Profile, error) {
	rec := new(profileRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, err
	}
	profile := &market.Profile{
		Address:   rec.Address,
		Level:     rec.Level,
		Nickname:  rec.Nickname,
		Bio:       rec.Bio,
		Avatar:    rec.Avatar,
		CreatedAt: int64(rec.CreatedAt),
	}
	for _, t := range rec.Buys {
		profile.Buys = append(profile.Buys, market.DenomTotal{Denom: t.Denom, Amount: t.Amount})
	}
	for _, t := range rec.Sells {
		profile.Sells = append(profile.Sells, market.DenomTotal{Denom: t.Denom, Amount: t.Amount})
	}
	for _, l := range rec.Links {
		profile.Links = append(profile.Links, market.ProfileLink{Label: l.Label, URL: l.URL})
	}
	return profile, nil
}

type rewardTierRecord struct {
	Level       uint32
	Price       *big.Int
	DiscountBps uint32
}

type rewardSystemRecord struct {
	TokenDenom  string
	Rate        *big.Int
	Distributed *big.Int
	Tiers       []rewardTierRecord
}

func encodeRewardSystem(system *market.RewardSystem) ([]byte, error) {
	system = system.Clone().Normalize()
	rec := &rewardSystemRecord{
		TokenDenom:  system.TokenDenom,
		Rate:        system.Rate,
		Distributed: system.Distributed,
	}
	for _, t := range system.Tiers {
		rec.Tiers = append(rec.Tiers, rewardTierRecord{Level: t.Level, Price: t.Price, DiscountBps: t.DiscountBps})
	}
	return rlp.EncodeToBytes(rec)
}

func decodeRewardSystem(data []byte) (*market.RewardSystem, error) {
	rec := new(rewardSystemRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, err
	}
	system := &market.RewardSystem{
		TokenDenom:  rec.TokenDenom,
		Rate:        rec.Rate,
		Distributed: rec.Distributed,
	}
	for _, t := range rec.Tiers {
		system.Tiers = append(system.Tiers, market.RewardTier{Level: t.Level, Price: t.Price, DiscountBps: t.DiscountBps})
	}
	return system.Normalize(), nil
}

type collVolumeRecord struct {
	Collection [20]byte
	Volume     *big.Int
}

func encodeRanking(ranking []market.CollectionVolume) ([]byte, error) {
	recs := make([]collVolumeRecord, 0, len(ranking))
	for _, entry := range ranking {
		recs = append(recs, collVolumeRecord{Collection: entry.Collection, Volume: entry.Volume})
	}
	return rlp.EncodeToBytes(recs)
}

func decodeRanking(data []byte) ([]market.CollectionVolume, error) {
	var recs []collVolumeRecord
	if err := rlp.DecodeBytes(data, &recs); err != nil {
		return nil, err
	}
	ranking := make([]market.CollectionVolume, 0, len(recs))
	for _, rec := range recs {
		ranking = append(ranking, market.CollectionVolume{Collection: rec.Collection, Volume: rec.Volume})
	}
	return ranking, nil
}

type royaltyRecord struct {
	Recipient [20]byte
	Amount    *big.Int
}

type tradeRecord struct {
	ID           string
	Collection   [20]byte
	ItemID       string
	Seller       [20]byte
	Buyer        [20]byte
	Price        *big.Int
	Denom        string
	Fee          *big.Int
	SellerPayout *big.Int
	Royalties    []royaltyRecord
	Timestamp    uint64
	Seq          uint64
}

func encodeTrade(trade *market.TradeRecord) ([]byte, error) {
	rec := &tradeRecord{
		ID:           trade.ID,
		Collection:   trade.Collection,
		ItemID:       trade.ItemID,
		Seller:       trade.Seller,
		Buyer:        trade.Buyer,
		Price:        trade.Price,
		Denom:        trade.Denom,
		Fee:          trade.Fee,
		SellerPayout: trade.SellerPayout,
		Timestamp:    uint64(trade.Timestamp),
		Seq:          trade.Seq,
	}
	for _, r := range trade.Royalties {
		rec.Royalties = append(rec.Royalties, royaltyRecord{Recipient: r.Recipient, Amount: r.Amount})
	}
	return rlp.EncodeToBytes(rec)
}

func decodeTrade(data []byte) (*market.TradeRecord, error) {
	rec := new(tradeRecord)
	if err := rlp.DecodeBytes(data, rec); err != nil {
		return nil, err
	}
	trade := &market.TradeRecord{
		ID:           rec.ID,
		Collection:   rec.Collection,
		ItemID:       rec.ItemID,
		Seller:       rec.Seller,
		Buyer:        rec.Buyer,
		Price:        rec.Price,
		Denom:        rec.Denom,
		Fee:          rec.Fee,
		SellerPayout: rec.SellerPayout,
		Timestamp:    int64(rec.Timestamp),
		Seq:          rec.Seq,
	}
	for _, r := range rec.Royalties {
		trade.Royalties = append(trade.Royalties, market.RoyaltyPayment{Recipient: r.Recipient, Amount: r.Amount})
	}
	return trade, nil
}

func encodeBigInt(v *big.Int) ([]byte, error) {
	if v == nil {
		v = new(big.Int)
	}
	return rlp.EncodeToBytes(v)
}

func decodeBigInt(data []byte) (*big.Int, error) {
	v := new(big.Int)
	if err := rlp.DecodeBytes(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func encodeSeq(seq uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return buf[:]
}

func decodeSeq(data []byte) uint64 {
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}
