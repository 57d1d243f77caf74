package state

import "github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"

// ProfileGet loads the profile for an address.
func (t *Txn) ProfileGet(address [20]byte) (*market.Profile, bool, error) {
	data, ok, err := t.get(profileKey(address))
	if err != nil || !ok {
		return nil, false, err
	}
	profile, err := decodeProfile(data)
	if err != nil {
		return nil, false, err
	}
	return profile, true, nil
}

// ProfilePut stores the profile.
func (t *Txn) ProfilePut(profile *market.Profile) error {
	if profile == nil {
		return market.ErrProfileNotFound
	}
	encoded, err := encodeProfile(profile)
	if err != nil {
		return err
	}
	return t.put(profileKey(profile.Address), encoded)
}

// RewardSystemGet loads the reward-system singleton.
func (t *Txn) RewardSystemGet() (*market.RewardSystem, bool, error) {
	data, ok, err := t.get(rewardSystemKey)
	if err != nil || !ok {
		return nil, false, err
	}
	system, err := decodeRewardSystem(data)
	if err != nil {
		return nil, false, err
	}
	return system, true, nil
}

// RewardSystemPut stores the reward-system singleton.
func (t *Txn) RewardSystemPut(system *market.RewardSystem) error {
	encoded, err := encodeRewardSystem(system)
	if err != nil {
		return err
	}
	return t.put(rewardSystemKey, encoded)
}

// CollectionRegistered reports whether the collection is in the trusted set.
func (t *Txn) CollectionRegistered(collection [20]byte) (bool, error) {
	return t.has(collectionSetKey(collection))
}

// CollectionRegister adds the collection to the trusted set.
func (t *Txn) CollectionRegister(collection [20]byte) error {
	return t.put(collectionSetKey(collection), []byte{1})
}

// CollectionDeregister removes the collection from the trusted set.
func (t *Txn) CollectionDeregister(collection [20]byte) error {
	return t.del(collectionSetKey(collection))
}

// MarketEnabled reports the global switch. An absent flag means enabled: the
// marketplace is live unless explicitly disabled.
func (t *Txn) MarketEnabled() (bool, error) {
	data, ok, err := t.get(enabledKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return len(data) == 1 && data[0] == 1, nil
}

// SetMarketEnabled stores the global switch.
func (t *Txn) SetMarketEnabled(enabled bool) error {
	value := []byte{0}
	if enabled {
		value = []byte{1}
	}
	return t.put(enabledKey, value)
}
