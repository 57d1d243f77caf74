package market

import "math/big"

// CreateProfile explicitly creates an empty profile for the caller. Most
// profiles appear lazily when an address first trades; the explicit call
// exists so users can fill in display metadata before their first trade.
func (e *Engine) CreateProfile(caller [20]byte, funds []Coin) (*Profile, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
	if err := requireNoFunds(funds); err != nil {
		return nil, err
	}
	if _, ok, err := txn.ProfileGet(caller); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrProfileExists
	}
	profile := NewProfile(caller, e.now())
	if err := txn.ProfilePut(profile); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newProfileEvent(EventTypeProfileCreated, profile))
	return profile.Clone(), nil
}

// UpdateProfile sets the caller's display metadata, lazily creating the
// profile when absent.
func (e *Engine) UpdateProfile(caller [20]byte, metadata ProfileMetadata, funds []Coin) (*Profile, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
	if err := requireNoFunds(funds); err != nil {
		return nil, err
	}
	profile, err := e.loadOrCreateProfile(txn, caller)
	if err != nil {
		return nil, err
	}
	if err := metadata.Apply(profile); err != nil {
		return nil, err
	}
	if err := txn.ProfilePut(profile); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newProfileEvent(EventTypeProfileUpdated, profile))
	return profile.Clone(), nil
}

// LevelUp advances the caller's loyalty tier by exactly one step. The caller
// must attach reward tokens exactly matching the next tier's price; the
// attachment is retained by the reward pool. Tiers cannot be skipped.
func (e *Engine) LevelUp(caller [20]byte, funds []Coin) (*Profile, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
	rewardSys, ok, err := txn.RewardSystemGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoRewardSystem
	}
	profile, err := e.loadOrCreateProfile(txn, caller)
	if err != nil {
		return nil, err
	}
	next, ok := rewardSys.NextTier(profile.Level)
	if !ok {
		return nil, ErrMaxTier
	}
	required := NewCoin(rewardSys.TokenDenom, next.Price)
	if len(funds) != 1 || !funds[0].Equal(required) {
		return nil, wrapf(ErrTierPriceMismatch, "tier %d costs %s %s", next.Level, required.Amount, required.Denom)
	}
	profile.Level = next.Level
	if err := txn.ProfilePut(profile); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newLevelUpEvent(profile, NewCoin(required.Denom, new(big.Int).Set(required.Amount))))
	return profile.Clone(), nil
}
